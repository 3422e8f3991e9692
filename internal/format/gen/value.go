package gen

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Quote renders s as a double-quoted string literal. The escape set is
// the intersection Python, JavaScript and Java agree on.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

// ResolveURL resolves a recorded open target against the project's
// base URL, the way a browser resolves a relative href. Unparsable
// inputs fall back to the target as recorded.
func ResolveURL(base, target string) string {
	b, err := url.Parse(base)
	if err != nil {
		return target
	}

	t, err := url.Parse(target)
	if err != nil {
		return target
	}

	return b.ResolveReference(t).String()
}

// Millis parses a recorded duration in milliseconds.
func Millis(s string) (int, error) {
	ms, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	return ms, nil
}

// Seconds renders a millisecond count as a second count, trimming the
// fraction when whole: 3000 becomes "3", 500 becomes "0.5".
func Seconds(ms int) string {
	if ms%1000 == 0 {
		return strconv.Itoa(ms / 1000)
	}

	return strconv.FormatFloat(float64(ms)/1000, 'g', -1, 64)
}

// Size parses a recorded window size written as "1280x800".
func Size(s string) (width, height int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid window size %q", s)
	}

	width, werr := strconv.Atoi(parts[0])
	height, herr := strconv.Atoi(parts[1])
	if werr != nil || herr != nil {
		return 0, 0, fmt.Errorf("invalid window size %q", s)
	}

	return width, height, nil
}
