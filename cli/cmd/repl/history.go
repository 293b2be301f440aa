package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind classifies a history entry.
type Kind int

const (
	KindExpr    Kind = iota // An expression to evaluate
	KindCommand             // A console command
)

// prefix returns the marker stored before an entry of kind k.
func (k Kind) prefix() string {
	if k == KindCommand {
		return "C:"
	}

	return "E:"
}

// HistoryEntry is a single line of input with its kind.
type HistoryEntry struct {
	Line string
	Kind Kind
}

// History is the input-line history shared by every session, persisted to
// a file with one prefixed entry per line. It records what was typed, not
// the calculator's results.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a History backed by the file at path. An empty path
// keeps the history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those read from the history file. A
// missing file is not an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry, ok := parseEntry(scanner.Text()); ok {
			h.entries = append(h.entries, entry)
		}
	}

	return scanner.Err()
}

// parseEntry decodes one line of the history file. Lines without a prefix
// are expressions.
func parseEntry(line string) (HistoryEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return HistoryEntry{}, false
	}

	for _, k := range []Kind{KindExpr, KindCommand} {
		if s, ok := strings.CutPrefix(line, k.prefix()); ok {
			return HistoryEntry{Line: s, Kind: k}, s != ""
		}
	}

	return HistoryEntry{Line: line, Kind: KindExpr}, true
}

// Write appends line to the history and the history file. Blank lines and
// a line equal to the previous entry are not recorded.
func (h *History) Write(line string, kind Kind) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == (HistoryEntry{line, kind}) {
		return nil
	}

	h.entries = append(h.entries, HistoryEntry{Line: line, Kind: kind})

	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	_, err = file.WriteString(kind.prefix() + line + "\n")

	return errors.Join(err, file.Close())
}

// GetEntry retrieves a historic entry by index. Index 0 is the oldest entry.
func (h *History) GetEntry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]HistoryEntry, len(h.entries))
	copy(result, h.entries)

	return result
}

// Lines returns the text of all entries, oldest first, one per line.
func (h *History) Lines() string {
	var sb strings.Builder

	for _, e := range h.Entries() {
		sb.WriteString(e.Line)
		sb.WriteByte('\n')
	}

	return sb.String()
}
