package gen

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackWord stands in when a recorded name contains nothing usable,
// such as a name made entirely of punctuation.
const fallbackWord = "unnamed"

// Snake renders a recorded name as a snake_case identifier.
func Snake(name string) string {
	return identifier(strings.Join(splitWords(name), "_"))
}

// Kebab renders a recorded name as a kebab-case file stem.
func Kebab(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return fallbackWord
	}

	return strings.Join(words, "-")
}

// Pascal renders a recorded name as a PascalCase identifier.
func Pascal(name string) string {
	words := splitWords(name)
	title := cases.Title(language.Und)

	for i, w := range words {
		words[i] = title.String(w)
	}

	return identifier(strings.Join(words, ""))
}

// Camel renders a recorded name as a camelCase identifier.
func Camel(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return fallbackWord
	}

	title := cases.Title(language.Und)
	for i := 1; i < len(words); i++ {
		words[i] = title.String(words[i])
	}

	return identifier(strings.Join(words, ""))
}

// identifier guards against names no target language accepts: empty
// results fall back to a placeholder and a leading digit gets an
// underscore prefix.
func identifier(s string) string {
	if s == "" {
		return fallbackWord
	}

	if r := rune(s[0]); r >= '0' && r <= '9' {
		return "_" + s
	}

	return s
}

// splitWords folds diacritics away and cuts the name into lowercase
// words at punctuation, spaces and camelCase boundaries. "HTTPServer"
// splits into "http" and "server".
func splitWords(name string) []string {
	var (
		words []string
		cur   []rune
	)

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	rs := []rune(fold(name))
	for i, r := range rs {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			var prev, next rune
			if i > 0 {
				prev = rs[i-1]
			}
			if i+1 < len(rs) {
				next = rs[i+1]
			}

			startsWord := unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && unicode.IsLower(next))
			if startsWord {
				flush()
			}

			cur = append(cur, unicode.ToLower(r))
		default:
			cur = append(cur, r)
		}
	}
	flush()

	return words
}

// fold strips combining marks so accented names survive as plain ASCII
// identifiers, turning "café" into "cafe".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}
