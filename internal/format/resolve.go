package format

import (
	"fmt"
	"strings"
)

// Resolve maps the command-line format argument to a format: either
// the id of a registered format, or a path to a definition file.
// Definition formats register under their declared name so listings
// and repeated resolves agree.
func Resolve(arg string) (Format, error) {
	if f, ok := Lookup(arg); ok {
		return f, nil
	}

	if looksLikePath(arg) {
		f, err := LoadDefinition(arg)
		if err != nil {
			return nil, err
		}

		if err := register(f, arg); err != nil {
			return nil, err
		}

		return f, nil
	}

	return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownFormat, arg, strings.Join(ids(), ", "))
}

func looksLikePath(arg string) bool {
	return strings.ContainsAny(arg, `/\`) || strings.HasSuffix(arg, ".json")
}
