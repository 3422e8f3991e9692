package format

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/sidegen/sidegen/internal/format/gen"
	"github.com/sidegen/sidegen/internal/model"
	"github.com/sidegen/sidegen/internal/plugin"
)

// definitionDoc is the on-disk shape of a format definition file: a
// template-driven format for languages the binary has no built-in for.
type definitionDoc struct {
	Name         string                        `json:"name"`
	Extension    string                        `json:"extension"`
	Description  string                        `json:"description"`
	Indent       string                        `json:"indent"`
	FilenameCase string                        `json:"filenameCase"`
	Test         testSectionDoc                `json:"test"`
	Suite        suiteSectionDoc               `json:"suite"`
	Commands     map[string]commandTemplateDoc `json:"commands"`
}

type testSectionDoc struct {
	Header []string `json:"header"`
	Footer []string `json:"footer"`
	Level  int      `json:"level"`
}

type suiteSectionDoc struct {
	Header     []string `json:"header"`
	TestHeader []string `json:"testHeader"`
	TestFooter []string `json:"testFooter"`
	Footer     []string `json:"footer"`
	Level      int      `json:"level"`
	TestLevel  int      `json:"testLevel"`
}

// commandTemplateDoc accepts either a bare array of statement templates
// or an object carrying block-structure hints: delta raises or lowers
// the block level after the statements, dedent puts the first statement
// one level left (the closing-brace shape).
type commandTemplateDoc struct {
	Statements []string
	Delta      int
	Dedent     bool
}

func (c *commandTemplateDoc) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &c.Statements)
	}

	var obj struct {
		Statements []string `json:"statements"`
		Delta      int      `json:"delta"`
		Dedent     bool     `json:"dedent"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*c = commandTemplateDoc{Statements: obj.Statements, Delta: obj.Delta, Dedent: obj.Dedent}

	return nil
}

// headerData is what header and footer templates can reference. Suite
// headers additionally see the recorded suite settings.
type headerData struct {
	Name           string
	URL            string
	Timeout        int
	Parallel       bool
	PersistSession bool
}

type templateFormat struct {
	id          string
	extension   string
	description string
	indent      string
	filename    func(string) string
	test        testSection
	suite       suiteSection
	commands    map[string]commandTemplate
}

type testSection struct {
	header []*template.Template
	footer []*template.Template
	level  int
}

type suiteSection struct {
	header     []*template.Template
	testHeader []*template.Template
	testFooter []*template.Template
	footer     []*template.Template
	level      int
	testLevel  int
}

type commandTemplate struct {
	statements []*template.Template
	delta      int
	dedent     bool
}

// LoadDefinition reads a format definition file and builds a
// template-driven format from it. Statement templates reference the
// recorded command through {{.Target}}, {{.Value}} and {{.URL}}.
func LoadDefinition(path string) (Format, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("format definition: %w", err)
	}

	var doc definitionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("format definition %s: %w", path, err)
	}

	f, err := buildDefinition(doc, path)
	if err != nil {
		return nil, fmt.Errorf("format definition %s: %w", path, err)
	}

	return f, nil
}

func buildDefinition(doc definitionDoc, path string) (*templateFormat, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if !strings.HasPrefix(doc.Extension, ".") {
		return nil, fmt.Errorf("extension %q must start with a dot", doc.Extension)
	}
	if len(doc.Commands) == 0 {
		return nil, fmt.Errorf("no commands")
	}

	f := &templateFormat{
		id:          doc.Name,
		extension:   doc.Extension,
		description: doc.Description,
		indent:      doc.Indent,
		commands:    make(map[string]commandTemplate, len(doc.Commands)),
	}
	if f.indent == "" {
		f.indent = "  "
	}
	if f.description == "" {
		f.description = fmt.Sprintf("template format from %s", path)
	}

	filename, err := filenameCase(doc.FilenameCase)
	if err != nil {
		return nil, err
	}
	f.filename = filename

	b := &templateParser{}
	f.test = testSection{
		header: b.parse("test.header", doc.Test.Header),
		footer: b.parse("test.footer", doc.Test.Footer),
		level:  doc.Test.Level,
	}
	f.suite = suiteSection{
		header:     b.parse("suite.header", doc.Suite.Header),
		testHeader: b.parse("suite.testHeader", doc.Suite.TestHeader),
		testFooter: b.parse("suite.testFooter", doc.Suite.TestFooter),
		footer:     b.parse("suite.footer", doc.Suite.Footer),
		level:      doc.Suite.Level,
		testLevel:  doc.Suite.TestLevel,
	}

	for verb, cd := range doc.Commands {
		f.commands[verb] = commandTemplate{
			statements: b.parse("command "+verb, cd.Statements),
			delta:      cd.Delta,
			dedent:     cd.Dedent,
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	return f, nil
}

// templateParser accumulates the first parse error so the builder can
// parse every section without checking each call.
type templateParser struct {
	err error
}

func (p *templateParser) parse(name string, texts []string) []*template.Template {
	if p.err != nil {
		return nil
	}

	out := make([]*template.Template, 0, len(texts))

	for i, text := range texts {
		t, err := template.New(fmt.Sprintf("%s#%d", name, i)).Parse(text)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", name, err)

			return nil
		}

		out = append(out, t)
	}

	return out
}

func filenameCase(name string) (func(string) string, error) {
	switch name {
	case "", "snake":
		return gen.Snake, nil
	case "kebab":
		return gen.Kebab, nil
	case "camel":
		return gen.Camel, nil
	case "pascal":
		return gen.Pascal, nil
	}

	return nil, fmt.Errorf("unknown filenameCase %q", name)
}

func (f *templateFormat) ID() string          { return f.id }
func (f *templateFormat) Extension() string   { return f.extension }
func (f *templateFormat) Description() string { return f.description }

func (f *templateFormat) EmitTest(ctx context.Context, project *model.Project, name string) (model.Emitted, error) {
	test, ok := project.TestByName(name)
	if !ok {
		return model.Emitted{}, fmt.Errorf("%w: test %q", ErrUnknownUnit, name)
	}

	buf := gen.NewBuffer(f.indent, 0)
	data := headerData{Name: test.Name, URL: project.URL}

	if err := renderLines(buf, f.test.header, data); err != nil {
		return model.Emitted{}, err
	}

	buf.Append(gen.Snippet{Delta: f.test.level})
	if err := f.renderCommands(ctx, buf, project, test); err != nil {
		return model.Emitted{}, err
	}
	buf.Append(gen.Snippet{Delta: -f.test.level})

	if err := renderLines(buf, f.test.footer, data); err != nil {
		return model.Emitted{}, err
	}

	return model.Emitted{Body: buf.String(), Filename: f.filename(test.Name) + f.extension}, nil
}

func (f *templateFormat) EmitSuite(ctx context.Context, project *model.Project, name string) (model.Emitted, error) {
	suite, ok := project.SuiteByName(name)
	if !ok {
		return model.Emitted{}, fmt.Errorf("%w: suite %q", ErrUnknownUnit, name)
	}

	tests, missing := project.ResolveSuiteTests(suite)
	if missing != "" {
		return model.Emitted{}, fmt.Errorf("suite %q: unresolved test reference %q", suite.Name, missing)
	}

	buf := gen.NewBuffer(f.indent, 0)
	data := headerData{
		Name:           suite.Name,
		URL:            project.URL,
		Timeout:        suite.Timeout,
		Parallel:       suite.Parallel,
		PersistSession: suite.PersistSession,
	}

	if err := renderLines(buf, f.suite.header, data); err != nil {
		return model.Emitted{}, err
	}

	buf.Append(gen.Snippet{Delta: f.suite.level})

	seen := map[string]bool{}
	for _, test := range tests {
		if seen[test.ID] {
			continue
		}
		seen[test.ID] = true

		tdata := headerData{Name: test.Name, URL: project.URL}

		if err := renderLines(buf, f.suite.testHeader, tdata); err != nil {
			return model.Emitted{}, err
		}

		buf.Append(gen.Snippet{Delta: f.suite.testLevel})
		if err := f.renderCommands(ctx, buf, project, test); err != nil {
			return model.Emitted{}, fmt.Errorf("test %q: %w", test.Name, err)
		}
		buf.Append(gen.Snippet{Delta: -f.suite.testLevel})

		if err := renderLines(buf, f.suite.testFooter, tdata); err != nil {
			return model.Emitted{}, err
		}
	}

	buf.Append(gen.Snippet{Delta: -f.suite.level})

	if err := renderLines(buf, f.suite.footer, data); err != nil {
		return model.Emitted{}, err
	}

	return model.Emitted{Body: buf.String(), Filename: f.filename(suite.Name) + f.extension}, nil
}

func (f *templateFormat) renderCommands(ctx context.Context, buf *gen.Buffer, project *model.Project, test *model.Test) error {
	for _, cmd := range test.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cmd.Disabled() {
			continue
		}

		data := plugin.Data{Target: cmd.Target, Value: cmd.Value, URL: project.URL}

		ct, ok := f.commands[cmd.Command]
		if !ok {
			pc, found := plugin.Lookup(cmd.Command)
			if !found {
				return fmt.Errorf("%w %q", ErrUnsupportedCommand, cmd.Command)
			}

			snippet, err := pc.Snippet(f.id, data)
			if err != nil {
				return err
			}

			buf.Append(snippet)

			continue
		}

		snippet, err := ct.render(data)
		if err != nil {
			return fmt.Errorf("command %q: %w", cmd.Command, err)
		}

		buf.Append(snippet)
	}

	return nil
}

func (ct commandTemplate) render(data plugin.Data) (gen.Snippet, error) {
	s := gen.Snippet{Lines: make([]gen.Line, 0, len(ct.statements)), Delta: ct.delta}

	for i, tmpl := range ct.statements {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, data); err != nil {
			return gen.Snippet{}, err
		}

		indent := 0
		if i == 0 && ct.dedent {
			indent = -1
		}

		s.Lines = append(s.Lines, gen.Line{Indent: indent, Text: sb.String()})
	}

	return s, nil
}

func renderLines(buf *gen.Buffer, tmpls []*template.Template, data headerData) error {
	for _, tmpl := range tmpls {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, data); err != nil {
			return fmt.Errorf("%s: %w", tmpl.Name(), err)
		}

		buf.Line(sb.String())
	}

	return nil
}
