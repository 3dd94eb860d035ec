package laxcsv

import "strings"

// Parser states. A field starts in stateAwaiting, moves to stateQuoted
// when it opens with the quote byte, and to stateUnquoted otherwise.
// Closing a quote resumes unquoted accumulation, so forms like
// `"abc"def` concatenate into one field.
const (
	stateAwaiting = iota
	stateUnquoted
	stateQuoted
)

// ParseLine splits one physical line into fields using the given quote
// and separator bytes. It is total: every input yields at least one
// field, and malformed quoting degrades gracefully instead of erroring.
//
// Unquoted fields are trimmed of surrounding whitespace at separator
// boundaries and at the end of the line; content consumed inside quotes
// keeps embedded separators and doubled quotes (`""` becomes one `"`).
// The final buffered field is always flushed, so an empty line parses
// to a single empty field and a trailing separator yields a trailing
// empty field.
func ParseLine(line string, quote, sep byte) []string {
	fields := make([]string, 0, 8)
	buf := make([]byte, 0, 32)
	state := stateAwaiting

	for i := 0; i < len(line); {
		c := line[i]
		switch state {
		case stateAwaiting:
			switch c {
			case quote:
				state = stateQuoted
				i++
			case sep:
				// Empty field before a separator; stay awaiting.
				fields = append(fields, "")
				i++
			default:
				buf = append(buf, c)
				state = stateUnquoted
				i++
			}
		case stateUnquoted:
			switch {
			case c == sep:
				fields = append(fields, strings.TrimSpace(string(buf)))
				buf = buf[:0]
				state = stateAwaiting
				i++
			case c == quote && i+1 < len(line) && line[i+1] == quote:
				// Doubled quote outside quoting still collapses to one.
				buf = append(buf, quote)
				i += 2
			default:
				// Includes a lone quote byte, kept literally.
				buf = append(buf, c)
				i++
			}
		case stateQuoted:
			switch {
			case c == quote && i+1 < len(line) && line[i+1] == quote:
				buf = append(buf, quote)
				i += 2
			case c == quote:
				// Closing quote. The byte after it (if any) is
				// reprocessed in the unquoted state.
				state = stateUnquoted
				i++
			default:
				buf = append(buf, c)
				i++
			}
		}
	}

	// The current buffer is always flushed, trimmed, whatever state the
	// line ended in; unterminated quotes are tolerated.
	return append(fields, strings.TrimSpace(string(buf)))
}
