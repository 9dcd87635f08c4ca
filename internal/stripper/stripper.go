// Package stripper removes comments from source text.
package stripper

import (
	"strings"
	"unicode"

	"github.com/seanhalberthal/uncomment/internal/logger"
	"github.com/seanhalberthal/uncomment/internal/rules"
)

// Strip removes comments from code using the default rule table.
// Unknown languages are logged and the input is returned unchanged.
func Strip(code, language string) string {
	return StripWith(rules.Default, code, language)
}

// StripWith removes comments from code using the given rule table.
func StripWith(table rules.Table, code, language string) string {
	resolved, err := table.Resolve(language)
	if err != nil {
		logger.Slog().Warn("returning input unchanged", "language", language, "error", err)
		return code
	}

	cleaned := code
	for _, rule := range blocksFirst(resolved) {
		out, err := rule.Pattern.Replace(cleaned, "", -1, -1)
		if err != nil {
			logger.Slog().Warn("skipping comment rule", "language", language, "kind", rule.Kind, "error", err)
			continue
		}
		cleaned = out
	}

	return CollapseBlankLines(cleaned)
}

// blocksFirst moves block rules ahead of line rules, keeping the declared
// order within each kind.
func blocksFirst(rs []rules.Rule) []rules.Rule {
	ordered := make([]rules.Rule, 0, len(rs))
	for _, r := range rs {
		if r.Kind == rules.Block {
			ordered = append(ordered, r)
		}
	}
	for _, r := range rs {
		if r.Kind != rules.Block {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

// CollapseBlankLines deletes every line made up only of whitespace,
// terminator included. Line terminators may be \r\n, \n or \r.
func CollapseBlankLines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for len(s) > 0 {
		end, next := lineEnd(s)
		if !IsBlank(s[:end]) {
			b.WriteString(s[:next])
		}
		s = s[next:]
	}

	return b.String()
}

// lineEnd returns the end of the first line's content and the start of the
// following line.
func lineEnd(s string) (end, next int) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return len(s), len(s)
	}
	if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
		return i, i + 2
	}
	return i, i + 1
}

// IsBlank reports whether a line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimFunc(line, isSpace) == ""
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// SplitLines splits text on \r\n, \n and \r.
func SplitLines(s string) []string {
	lines := make([]string, 0, strings.Count(s, "\n")+1)
	for {
		end, next := lineEnd(s)
		lines = append(lines, s[:end])
		if next == end {
			return lines
		}
		s = s[next:]
	}
}

// CountNonBlankLines counts the lines that hold more than whitespace.
func CountNonBlankLines(s string) int {
	if IsBlank(s) {
		return 0
	}
	n := 0
	for _, l := range SplitLines(s) {
		if !IsBlank(l) {
			n++
		}
	}
	return n
}
