// Package all registers every built-in format. Importing it for side
// effects is how binaries opt in to the full set:
//
//	import _ "github.com/sidegen/sidegen/internal/format/all"
package all

import (
	_ "github.com/sidegen/sidegen/internal/format/java"
	_ "github.com/sidegen/sidegen/internal/format/javascript"
	_ "github.com/sidegen/sidegen/internal/format/python"
)
