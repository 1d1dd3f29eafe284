package extract

import (
	"fmt"
	"strings"
)

// scanLists returns every bracketed fragment in text, innermost-first is not
// needed because the expected output never nests: a fragment runs from '[' to
// the next ']'.
func scanLists(text string) []string {
	var fragments []string
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		end := strings.IndexByte(text[i+1:], ']')
		if end < 0 {
			break
		}
		fragments = append(fragments, text[i:i+end+2])
		i += end + 1
	}
	return fragments
}

// parseList parses one bracketed fragment as a list of quoted strings. The
// grammar is deliberately strict: items are single- or double-quoted, commas
// separate them, a trailing comma is tolerated, anything else is an error.
func parseList(fragment string) ([]string, error) {
	inner := strings.TrimSpace(fragment)
	if len(inner) < 2 || inner[0] != '[' || inner[len(inner)-1] != ']' {
		return nil, fmt.Errorf("not a bracketed list: %q", fragment)
	}
	inner = inner[1 : len(inner)-1]

	items := []string{}
	i := 0
	for {
		// skip whitespace
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t' || inner[i] == '\n') {
			i++
		}
		if i >= len(inner) {
			return items, nil
		}

		quote := inner[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("expected quoted item at offset %d in %q", i, fragment)
		}
		i++
		var sb strings.Builder
		closed := false
		for i < len(inner) {
			ch := inner[i]
			if ch == '\\' && i+1 < len(inner) {
				sb.WriteByte(inner[i+1])
				i += 2
				continue
			}
			if ch == quote {
				closed = true
				i++
				break
			}
			sb.WriteByte(ch)
			i++
		}
		if !closed {
			return nil, fmt.Errorf("unterminated string in %q", fragment)
		}
		items = append(items, sb.String())

		// skip whitespace, then expect ',' or end
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t' || inner[i] == '\n') {
			i++
		}
		if i >= len(inner) {
			return items, nil
		}
		if inner[i] != ',' {
			return nil, fmt.Errorf("expected ',' at offset %d in %q", i, fragment)
		}
		i++
	}
}

// looseParse is the fallback for fragments the strict grammar rejects: split
// on commas and strip quotes and stray punctuation. It never fails; it may
// return nothing.
func looseParse(fragment string) []string {
	inner := strings.Trim(strings.TrimSpace(fragment), "[]")
	var items []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.Trim(strings.TrimSpace(part), `'".;: `)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
