package gen

import "strings"

// Segment is one piece of an interpolated recorded string: either a
// literal, or a stored-variable reference written as "${name}".
type Segment struct {
	Text string
	Var  bool
}

// Key reports whether a variable segment names a special key press,
// written by the recorder as "${KEY_ENTER}" and the like. The returned
// name is the part after "KEY_".
func (s Segment) Key() (string, bool) {
	if !s.Var || !strings.HasPrefix(s.Text, "KEY_") {
		return "", false
	}

	return strings.TrimPrefix(s.Text, "KEY_"), true
}

// Interpolate splits a recorded target or value into literal and
// variable segments. A variable is "${" followed by one or more word
// characters and "}"; anything else stays literal, so unterminated or
// malformed runs pass through untouched. Adjacent literals are merged.
func Interpolate(s string) []Segment {
	var segments []Segment

	literal := func(text string) {
		if text == "" {
			return
		}

		if n := len(segments); n > 0 && !segments[n-1].Var {
			segments[n-1].Text += text

			return
		}

		segments = append(segments, Segment{Text: text})
	}

	for {
		start := strings.Index(s, "${")
		if start < 0 {
			literal(s)

			break
		}

		end := start + 2
		for end < len(s) && isWordChar(s[end]) {
			end++
		}

		if end == start+2 || end == len(s) || s[end] != '}' {
			// Not a well-formed variable; keep "${" literal and
			// rescan right after it.
			literal(s[:start+2])
			s = s[start+2:]

			continue
		}

		literal(s[:start])
		segments = append(segments, Segment{Text: s[start+2 : end], Var: true})
		s = s[end+1:]
	}

	return segments
}

// HasVars reports whether the string references any stored variable.
func HasVars(s string) bool {
	for _, seg := range Interpolate(s) {
		if seg.Var {
			return true
		}
	}

	return false
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
