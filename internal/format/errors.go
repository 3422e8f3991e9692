package format

import "errors"

var (
	// ErrUnknownFormat means the format argument matched no registered
	// id and did not point at a definition file.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrUnsupportedCommand means a recorded verb is outside the
	// format's vocabulary and no loaded plugin handles it.
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrUnknownUnit means the named test or suite is not in the
	// project.
	ErrUnknownUnit = errors.New("unknown unit")
)
