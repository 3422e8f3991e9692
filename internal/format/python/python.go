// Package python emits pytest files driving Selenium WebDriver: one
// class per exported unit, setup_method/teardown_method fixtures, and
// a test method per recorded test.
package python

import (
	"context"
	"fmt"
	"strings"

	"github.com/sidegen/sidegen/internal/format"
	"github.com/sidegen/sidegen/internal/format/gen"
	"github.com/sidegen/sidegen/internal/model"
)

func init() {
	format.Register(New())
}

// header is emitted verbatim at the top of every generated file.
var header = []string{
	"# Generated by sidegen.",
	"import pytest",
	"import time",
	"import json",
	"from selenium import webdriver",
	"from selenium.webdriver.common.by import By",
	"from selenium.webdriver.common.action_chains import ActionChains",
	"from selenium.webdriver.support import expected_conditions",
	"from selenium.webdriver.support.wait import WebDriverWait",
	"from selenium.webdriver.common.keys import Keys",
}

// Format is the python-pytest format.
type Format struct{}

// New returns the python-pytest format.
func New() *Format {
	return &Format{}
}

func (f *Format) ID() string          { return id }
func (f *Format) Extension() string   { return ".py" }
func (f *Format) Description() string { return "Python pytest over Selenium WebDriver" }

func (f *Format) EmitTest(ctx context.Context, project *model.Project, name string) (model.Emitted, error) {
	test, ok := project.TestByName(name)
	if !ok {
		return model.Emitted{}, fmt.Errorf("%w: test %q", format.ErrUnknownUnit, name)
	}

	return f.emit(ctx, project, plan{
		name:    test.Name,
		members: []*model.Test{test},
	})
}

func (f *Format) EmitSuite(ctx context.Context, project *model.Project, name string) (model.Emitted, error) {
	suite, ok := project.SuiteByName(name)
	if !ok {
		return model.Emitted{}, fmt.Errorf("%w: suite %q", format.ErrUnknownUnit, name)
	}

	tests, missing := project.ResolveSuiteTests(suite)
	if missing != "" {
		return model.Emitted{}, fmt.Errorf("suite %q: unresolved test reference %q", suite.Name, missing)
	}

	return f.emit(ctx, project, plan{
		name:    suite.Name,
		members: tests,
		suite:   suite,
	})
}

// plan is one file to generate: the unit's name and the member tests
// it runs. suite is nil when exporting a single test.
type plan struct {
	name    string
	members []*model.Test
	suite   *model.Suite
}

func (f *Format) emit(ctx context.Context, project *model.Project, p plan) (model.Emitted, error) {
	all, extra, err := format.RunClosure(project, p.members)
	if err != nil {
		return model.Emitted{}, err
	}

	// Run-only tests become underscore helpers so pytest does not
	// collect them as standalone tests.
	methods := make(map[string]string, len(all))
	for _, t := range all {
		if extra[t.ID] {
			methods[t.ID] = "_" + gen.Snake(t.Name)
		} else {
			methods[t.ID] = "test_" + gen.Snake(t.Name)
		}
	}

	em := &emitter{project: project, methods: methods}
	buf := gen.NewBuffer("    ", 0)

	for _, line := range header {
		buf.Line(line)
	}
	buf.Blank()
	buf.Blank()

	if hint := suiteHint(p.suite); hint != "" {
		buf.Line("# " + hint)
	}

	buf.Append(gen.Open("class Test" + gen.Pascal(p.name) + ":"))
	emitFixtures(buf, p.suite != nil && p.suite.PersistSession)

	for _, t := range all {
		buf.Blank()
		buf.Append(gen.Open("def " + methods[t.ID] + "(self):"))

		if err := em.body(ctx, buf, t); err != nil {
			return model.Emitted{}, fmt.Errorf("test %q: %w", t.Name, err)
		}

		buf.Append(gen.Dedent)
	}

	return model.Emitted{
		Body:     buf.String(),
		Filename: "test_" + gen.Snake(p.name) + ".py",
	}, nil
}

// emitFixtures writes the driver lifecycle. A persistent-session suite
// keeps one browser for the whole class instead of one per test.
func emitFixtures(buf *gen.Buffer, persist bool) {
	if persist {
		buf.Line("@classmethod")
		buf.Append(gen.Open("def setup_class(cls):"))
		buf.Line("cls.driver = webdriver.Chrome()")
		buf.Line("cls.vars = {}")
		buf.Append(gen.Dedent)
		buf.Blank()
		buf.Line("@classmethod")
		buf.Append(gen.Open("def teardown_class(cls):"))
		buf.Line("cls.driver.quit()")
		buf.Append(gen.Dedent)

		return
	}

	buf.Append(gen.Open("def setup_method(self, method):"))
	buf.Line("self.driver = webdriver.Chrome()")
	buf.Line("self.vars = {}")
	buf.Append(gen.Dedent)
	buf.Blank()
	buf.Append(gen.Open("def teardown_method(self, method):"))
	buf.Line("self.driver.quit()")
	buf.Append(gen.Dedent)
}

func suiteHint(suite *model.Suite) string {
	if suite == nil {
		return ""
	}

	var parts []string
	if suite.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("timeout %ds", suite.Timeout))
	}
	if suite.Parallel {
		parts = append(parts, "tests may run in parallel")
	}
	if suite.PersistSession {
		parts = append(parts, "persistent session")
	}

	if len(parts) == 0 {
		return ""
	}

	return "Suite settings: " + strings.Join(parts, ", ") + "."
}
