// Package plugin loads the command manifests a recorded project
// declares. A manifest is a JSON file shipping custom commands the
// recorder learned from a browser extension, each with per-format
// statement templates. Formats consult the registry when they meet a
// verb outside their built-in vocabulary.
package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/sidegen/sidegen/internal/format/gen"
)

// Data is the recorded command fields a manifest template can
// reference, as {{.Target}}, {{.Value}} and {{.URL}}.
type Data struct {
	Target string
	Value  string
	URL    string
}

// Command is a loaded custom command, ready to render for any format
// its manifest declares.
type Command struct {
	verb   string
	plugin string
	forms  map[string][]statement
}

type statement struct {
	tmpl   *template.Template
	indent int
}

// Verb returns the recorded command verb this entry handles.
func (c Command) Verb() string {
	return c.verb
}

// Plugin returns the name of the manifest that declared the command.
func (c Command) Plugin() string {
	return c.plugin
}

// Snippet renders the command's statements for the given format.
func (c Command) Snippet(format string, data Data) (gen.Snippet, error) {
	stmts, ok := c.forms[format]
	if !ok {
		return gen.Snippet{}, fmt.Errorf("plugin command %q: no template for format %q", c.verb, format)
	}

	s := gen.Snippet{Lines: make([]gen.Line, 0, len(stmts))}

	for _, st := range stmts {
		var sb strings.Builder
		if err := st.tmpl.Execute(&sb, data); err != nil {
			return gen.Snippet{}, fmt.Errorf("plugin command %q: render: %w", c.verb, err)
		}

		s.Lines = append(s.Lines, gen.Line{Indent: st.indent, Text: sb.String()})
	}

	return s, nil
}

// manifestDoc is the on-disk manifest shape.
type manifestDoc struct {
	Name     string       `json:"name"`
	Version  string       `json:"version"`
	Commands []commandDoc `json:"commands"`
}

type commandDoc struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Languages map[string]languageDoc `json:"languages"`
}

type languageDoc struct {
	Statements []statementDoc `json:"statements"`
}

// statementDoc accepts either a bare string or an object with an
// indent offset, so manifests only spell out indentation when a
// statement sits inside a block the command opened.
type statementDoc struct {
	Text   string
	Indent int
}

func (s *statementDoc) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Text)
	}

	var obj struct {
		Text   string `json:"text"`
		Indent int    `json:"indent"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	s.Text, s.Indent = obj.Text, obj.Indent

	return nil
}

func parseManifest(raw []byte) ([]Command, error) {
	var doc manifestDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if doc.Name == "" {
		return nil, errors.New("manifest missing name")
	}

	commands := make([]Command, 0, len(doc.Commands))

	for _, cd := range doc.Commands {
		if cd.ID == "" {
			return nil, fmt.Errorf("manifest %q: command missing id", doc.Name)
		}
		if len(cd.Languages) == 0 {
			return nil, fmt.Errorf("manifest %q: command %q declares no languages", doc.Name, cd.ID)
		}

		cmd := Command{verb: cd.ID, plugin: doc.Name, forms: make(map[string][]statement, len(cd.Languages))}

		for lang, ld := range cd.Languages {
			stmts := make([]statement, 0, len(ld.Statements))

			for i, sd := range ld.Statements {
				tmpl, err := template.New(fmt.Sprintf("%s/%s#%d", cd.ID, lang, i)).Parse(sd.Text)
				if err != nil {
					return nil, fmt.Errorf("manifest %q: command %q: %s template: %w", doc.Name, cd.ID, lang, err)
				}

				stmts = append(stmts, statement{tmpl: tmpl, indent: sd.Indent})
			}

			cmd.forms[lang] = stmts
		}

		commands = append(commands, cmd)
	}

	return commands, nil
}
