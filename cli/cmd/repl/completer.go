package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/calc/lang"
)

// isWordRune reports whether r may appear in a function or command name.
// Command names also contain hyphens.
func isWordRune(r rune, command bool) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		command && r == '-'
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. The word is empty when the cursor is not
// adjacent to a name.
func wordBounds(input string, cursor int, command bool) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r, command) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r, command) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// completion is the set of fuzzy matches for the word at the cursor.
type completion struct {
	matches   fuzzy.Matches
	wordStart int
	wordEnd   int
}

// complete returns the candidates for the word at cursor: console command
// names when input is a command, otherwise function names. Words that begin
// with a digit or follow '$' are references, not names, and have none.
func complete(r *lang.Registry, input string, cursor int) completion {
	command := strings.HasPrefix(strings.TrimSpace(input), commandPrefix)

	word, start, end := wordBounds(input, cursor, command)
	c := completion{wordStart: start, wordEnd: end}

	if word == "" || word[0] >= '0' && word[0] <= '9' {
		return c
	}

	if start > 0 && input[start-1] == '$' {
		return c
	}

	candidates := r.Names()
	if command {
		candidates = commandNames()
	}

	c.matches = fuzzy.Find(word, candidates)

	return c
}

// replace returns input with the completed word replaced by s, and the
// cursor position after it.
func (c completion) replace(input, s string) (string, int) {
	return input[:c.wordStart] + s + input[c.wordEnd:], c.wordStart + len(s)
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1
		if i > 0 && used+entryWidth+ellipsisWidth > width && !(last && used+entryWidth <= width) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
