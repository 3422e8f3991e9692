// Package format defines the contract an export format implements and
// the registry the built-in formats register themselves with.
//
// A format turns one named unit of a recorded project into generated
// source text for its target language. Built-in formats live in
// subpackages, one per language, and self-register in init(); programs
// pull all of them in with a blank import of the all subpackage.
// Formats can also be loaded at run time from a definition file, see
// LoadDefinition.
package format

import (
	"context"

	"github.com/sidegen/sidegen/internal/model"
)

// Emitter renders one named unit of a project into a generated source
// file. Implementations never mutate the project and honor ctx between
// commands.
type Emitter interface {
	// EmitTest renders the named test as a standalone file.
	EmitTest(ctx context.Context, project *model.Project, name string) (model.Emitted, error)

	// EmitSuite renders the named suite with every referenced test
	// emitted once, in suite order.
	EmitSuite(ctx context.Context, project *model.Project, name string) (model.Emitted, error)
}

// Format is an Emitter with identity: what the registry holds and what
// the command line selects.
type Format interface {
	Emitter

	// ID is the stable identifier given on the command line.
	ID() string

	// Extension is the generated files' extension, dot included.
	Extension() string

	// Description is a one-line summary for format listings.
	Description() string
}
