package parser

import "strings"

// Clean normalizes raw SQL text before extraction:
//   - strips -- line comments (quote-aware, so a -- inside a string
//     literal is left alone)
//   - collapses runs of whitespace into single spaces outside string
//     literals
//   - lowercases everything outside string literals
//   - drops blank lines
//   - merges lines consisting of a single comma into the previous line
//
// Line structure is otherwise preserved; the rewriter relies on it for
// readable output.
func Clean(input string) string {
	var lines []string
	for _, raw := range strings.Split(input, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		if line == "," && len(lines) > 0 {
			lines[len(lines)-1] += ","
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// cleanLine normalizes a single line. String literals pass through
// verbatim, including whitespace, case and any -- they contain.
func cleanLine(line string) string {
	var b strings.Builder
	inString := false
	pendingSpace := false

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if inString {
			b.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(line) && line[i+1] == '\'' {
					// Doubled quote escape
					b.WriteByte('\'')
					i++
				} else {
					inString = false
				}
			}
			continue
		}

		switch {
		case ch == '\'':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			inString = true
			b.WriteByte(ch)
		case ch == '-' && i+1 < len(line) && line[i+1] == '-':
			// Comment runs to end of line
			return strings.TrimRight(b.String(), " ")
		case ch == ' ' || ch == '\t' || ch == '\r':
			pendingSpace = true
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteByte(lowerByte(ch))
		}
	}

	return b.String()
}

// lowerByte lowercases ASCII letters and leaves other bytes untouched.
func lowerByte(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
