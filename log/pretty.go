package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to render each kind of value. Styles render
// plain text when the output does not support color.
type palette struct {
	key      lipgloss.Style
	message  lipgloss.Style
	text     lipgloss.Style
	number   lipgloss.Style
	truth    lipgloss.Style
	falsity  lipgloss.Style
	duration lipgloss.Style
	instant  lipgloss.Style
	null     lipgloss.Style
	trace    lipgloss.Style
	debug    lipgloss.Style
	info     lipgloss.Style
	warn     lipgloss.Style
	error    lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		key:      fg("8"),
		message:  r.NewStyle().Bold(true),
		text:     fg("6"),
		number:   fg("3"),
		truth:    fg("2"),
		falsity:  fg("1"),
		duration: fg("5"),
		instant:  fg("4"),
		null:     fg("8"),
		trace:    fg("8"),
		debug:    fg("4"),
		info:     fg("2"),
		warn:     fg("3").Bold(true),
		error:    fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records, either as space-separated
// key=value pairs or as an indented object with one field per line.
type prettyHandler struct {
	opts    slog.HandlerOptions
	mu      *sync.Mutex
	w       io.Writer
	style   palette
	attrs   []field
	prefix  string
	objects bool
}

// field is an attribute flattened to a dotted key.
type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	format Format,
) *prettyHandler {
	return &prettyHandler{
		opts:    *opts,
		mu:      &sync.Mutex{},
		w:       w,
		style:   makePalette(w),
		objects: format == FormatJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	least := slog.LevelInfo
	if h.opts.Level != nil {
		least = h.opts.Level.Level()
	}

	return level >= least
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []field

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, field{a.Key, a.Value.Resolve()})
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)
	if h.objects {
		h.writeObject(buf, r.Level, fields)
	} else {
		h.writeText(buf, r.Level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = c.flatten(c.attrs, c.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// flatten appends a to fields, expanding groups into dotted keys.
func (h *prettyHandler) flatten(fields []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return fields
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range group {
			fields = h.flatten(fields, prefix, g)
		}

		return fields
	}

	if a.Equal(slog.Attr{}) {
		return fields
	}

	return append(fields, field{prefix + a.Key, v})
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, level slog.Level, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(h.render(level, f))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, level slog.Level, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteString(": ")
		buf.WriteString(h.render(level, f))

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func (h *prettyHandler) render(level slog.Level, f field) string {
	switch f.key {
	case slog.LevelKey:
		return h.style.level(level).Render(f.value.String())
	case slog.MessageKey:
		return h.style.message.Render(f.value.String())
	}

	v := f.value

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\t\n\"") {
			s = strconv.Quote(s)
		}

		return h.style.text.Render(s)

	case slog.KindInt64:
		return h.style.number.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.number.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.style.truth.Render("true")
		}

		return h.style.falsity.Render("false")

	case slog.KindDuration:
		return h.style.duration.Render(v.Duration().String())

	case slog.KindTime:
		return h.style.instant.Render(v.Time().String())

	default:
		if v.Any() == nil {
			return h.style.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return h.style.error.Render(strconv.Quote(err.Error()))
		}

		return h.style.text.Render(fmt.Sprint(v.Any()))
	}
}
