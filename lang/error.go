package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// Predefined errors (sentinel values).
var (
	ErrEmptyInput      = NewError("empty input")
	ErrReadInput       = NewError("failed to read input")
	ErrUnknownFunction = NewError("no such function")
	ErrArity           = NewError("argument count mismatch")
	ErrHistoryIndex    = NewError("history entry does not exist")
	ErrMemoryIndex     = NewError("memory entry does not exist")
	ErrFactorial       = NewError("cannot apply factorial operator")
	ErrOverflow        = NewError("integer overflow")
	ErrRandomRange     = NewError("empty random range")
	ErrUnsupported     = NewError("unsupported expression")
)

// errNoMatch is the recoverable parse failure. A production returning it has
// restored the lookahead index, so the caller may try another alternative.
var errNoMatch = NewError("no match")

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
// The message and wrapped error are joined by ": " when both are set.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an [Error] with the same message, so that
// errors derived from a sentinel with [Error.Wrap] or [Error.With] still match
// it under [errors.Is].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// Wrapf creates a new Error wrapping a formatted error.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseError is an unrecoverable parse failure. Once a production commits
// past a required token, any later mismatch aborts the whole parse with a
// ParseError describing the partially matched construct.
type ParseError struct {
	Source string // The trimmed source input
	Msg    string
	Pos    int // Lookahead index, in grapheme clusters
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "column " + strconv.Itoa(e.Column()) + ": " + e.Msg
}

// Column returns the 1-based display column of the lookahead index.
// Wide grapheme clusters preceding the index count for their cell width.
func (e *ParseError) Column() int {
	col, idx := 1, 0

	g := uniseg.NewGraphemes(e.Source)
	for idx < e.Pos && g.Next() {
		col += g.Width()
		idx++
	}

	return col
}

// Snippet returns the source followed by a line with a caret marking the
// lookahead index.
func (e *ParseError) Snippet() string {
	var sb strings.Builder

	sb.WriteString("  | ")
	sb.WriteString(e.Source)
	sb.WriteRune('\n')
	sb.WriteString("  | ")
	sb.WriteString(strings.Repeat(" ", e.Column()-1))
	sb.WriteString("^\n")

	return sb.String()
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Msg),
		slog.Int("position", e.Pos),
		slog.String("source", e.Source),
	)
}

// Stage identifies the step of [Calculator] evaluation that failed.
type Stage int

const (
	StageParse Stage = iota
	StageEvaluate
)

// String returns the name of the stage.
func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageEvaluate:
		return "evaluate"
	default:
		return "stage(" + strconv.Itoa(int(s)) + ")"
	}
}

// CalcError restates a parse or evaluation failure with the input that
// caused it. It unwraps to the underlying [*ParseError] or [*Error].
type CalcError struct {
	Input string
	Err   error
	Stage Stage
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	return e.Stage.String() + " " + strconv.Quote(e.Input) + ": " + e.Err.Error()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CalcError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *CalcError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("stage", e.Stage.String()),
		slog.String("input", e.Input),
	}

	if lv, ok := e.Err.(slog.LogValuer); ok {
		attrs = append(attrs, slog.Attr{Key: "cause", Value: lv.LogValue()})
	} else {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}
