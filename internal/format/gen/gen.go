// Package gen holds the language-agnostic building blocks shared by all
// formats: indented snippet assembly, locator parsing, variable
// interpolation and name sanitization. Per-language packages turn
// recorded commands into Snippets; a Buffer renders them into a body.
package gen

import (
	"fmt"
	"strings"
)

// Line is one statement of generated code. Indent is an offset relative
// to the block level current when the owning snippet is rendered, so a
// closing brace can sit one level left of the block it closes.
type Line struct {
	Indent int
	Text   string
}

// Snippet is the code a single recorded command contributes. Delta
// adjusts the block level after the snippet's lines are rendered:
// block-opening commands use +1, block-closing commands -1.
type Snippet struct {
	Lines []Line
	Delta int
}

// Stmt returns a single-statement snippet at the current level.
func Stmt(text string) Snippet {
	return Snippet{Lines: []Line{{Text: text}}}
}

// Stmtf is Stmt with fmt formatting.
func Stmtf(format string, args ...any) Snippet {
	return Stmt(fmt.Sprintf(format, args...))
}

// Lines returns a snippet of several statements at the current level.
func Lines(texts ...string) Snippet {
	s := Snippet{Lines: make([]Line, 0, len(texts))}
	for _, t := range texts {
		s.Lines = append(s.Lines, Line{Text: t})
	}

	return s
}

// Open emits text and raises the block level for what follows.
func Open(text string) Snippet {
	return Snippet{Lines: []Line{{Text: text}}, Delta: 1}
}

// Close lowers the block level and emits text at the lowered level.
// Languages that close blocks by dedent alone pass Dedent instead.
func Close(text string) Snippet {
	return Snippet{Lines: []Line{{Indent: -1, Text: text}}, Delta: -1}
}

// Bridge emits text one level left without changing the level, the
// shape of an "} else {" line.
func Bridge(text string) Snippet {
	return Snippet{Lines: []Line{{Indent: -1, Text: text}}}
}

// Dedent lowers the block level without emitting anything.
var Dedent = Snippet{Delta: -1}

// Buffer assembles snippets into an indented body. Base is the level of
// a plain statement, letting a test body sit inside a class or describe
// block without every snippet knowing about it.
type Buffer struct {
	unit  string
	base  int
	level int
	out   []string
}

// NewBuffer returns a Buffer indenting with the given unit at the given
// base level.
func NewBuffer(unit string, base int) *Buffer {
	return &Buffer{unit: unit, base: base}
}

// Append renders a snippet at the current level and applies its delta.
func (b *Buffer) Append(s Snippet) {
	for _, line := range s.Lines {
		b.write(b.level+line.Indent, line.Text)
	}

	b.level += s.Delta
	if b.level < 0 {
		b.level = 0
	}
}

// Line renders a single statement at the current level.
func (b *Buffer) Line(text string) {
	b.write(b.level, text)
}

// Linef is Line with fmt formatting.
func (b *Buffer) Linef(format string, args ...any) {
	b.Line(fmt.Sprintf(format, args...))
}

// Blank appends an empty line.
func (b *Buffer) Blank() {
	b.out = append(b.out, "")
}

// Level reports the current block level, excluding the base.
func (b *Buffer) Level() int {
	return b.level
}

// String renders the buffer with a trailing newline.
func (b *Buffer) String() string {
	return strings.Join(b.out, "\n") + "\n"
}

func (b *Buffer) write(level int, text string) {
	if level < 0 {
		level = 0
	}

	if text == "" {
		b.out = append(b.out, "")

		return
	}

	b.out = append(b.out, strings.Repeat(b.unit, b.base+level)+text)
}
