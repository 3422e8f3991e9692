// Package javascript emits Mocha spec files driving selenium-webdriver:
// one describe block per exported unit with async it callbacks.
package javascript

import (
	"context"
	"fmt"

	"github.com/sidegen/sidegen/internal/format"
	"github.com/sidegen/sidegen/internal/format/gen"
	"github.com/sidegen/sidegen/internal/model"
)

func init() {
	format.Register(New())
}

// defaultTimeoutMS is generous enough for a real browser session;
// Mocha's own default of two seconds is not.
const defaultTimeoutMS = 30000

var header = []string{
	"// Generated by sidegen.",
	"const { Builder, By, Key, until } = require('selenium-webdriver')",
	"const assert = require('assert')",
}

// Format is the javascript-mocha format.
type Format struct{}

// New returns the javascript-mocha format.
func New() *Format {
	return &Format{}
}

func (f *Format) ID() string          { return id }
func (f *Format) Extension() string   { return ".js" }
func (f *Format) Description() string { return "JavaScript Mocha over selenium-webdriver" }

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

	// Mocha it callbacks are not callable, so every run target becomes
	// a named helper function; members that are run targets delegate
	// their it body to the helper.
	runTargets, err := runTargets(project, all)
	if err != nil {
		return model.Emitted{}, err
	}

	fns := make(map[string]string, len(all))
	for _, t := range all {
		fns[t.ID] = gen.Camel(t.Name)
	}

	em := &emitter{project: project, fns: fns}
	buf := gen.NewBuffer("  ", 0)

	for _, line := range header {
		buf.Line(line)
	}
	buf.Blank()

	buf.Append(gen.Open("describe(" + sq(p.name) + ", function() {"))

	timeout := defaultTimeoutMS
	if p.suite != nil && p.suite.Timeout > 0 {
		timeout = p.suite.Timeout * 1000
	}
	buf.Linef("this.timeout(%d)", timeout)
	if p.suite != nil && p.suite.Parallel {
		buf.Line("// Suite settings: tests may run in parallel.")
	}

	buf.Line("let driver")
	buf.Line("let vars")
	emitHooks(buf, p.suite != nil && p.suite.PersistSession)

	for _, t := range all {
		if !extra[t.ID] && !runTargets[t.ID] {
			continue
		}

		buf.Append(gen.Open("async function " + fns[t.ID] + "() {"))
		if err := em.body(ctx, buf, t); err != nil {
			return model.Emitted{}, fmt.Errorf("test %q: %w", t.Name, err)
		}
		buf.Append(gen.Close("}"))
	}

	for _, t := range all {
		if extra[t.ID] {
			continue
		}

		buf.Append(gen.Open("it(" + sq(t.Name) + ", async function() {"))

		if runTargets[t.ID] {
			buf.Line("await " + fns[t.ID] + "()")
		} else if err := em.body(ctx, buf, t); err != nil {
			return model.Emitted{}, fmt.Errorf("test %q: %w", t.Name, err)
		}

		buf.Append(gen.Close("})"))
	}

	buf.Append(gen.Close("})"))

	return model.Emitted{
		Body:     buf.String(),
		Filename: gen.Kebab(p.name) + ".spec.js",
	}, nil
}

// emitHooks writes the driver lifecycle. A persistent-session suite
// keeps one browser for the whole describe block.
func emitHooks(buf *gen.Buffer, persist bool) {
	before, after := "beforeEach", "afterEach"
	if persist {
		before, after = "before", "after"
	}

	buf.Append(gen.Open(before + "(async function() {"))
	buf.Line("driver = await new Builder().forBrowser('chrome').build()")
	buf.Line("vars = {}")
	buf.Append(gen.Close("})"))
	buf.Append(gen.Open(after + "(async function() {"))
	buf.Line("await driver.quit()")
	buf.Append(gen.Close("})"))
}

// runTargets collects the IDs of tests referenced by run commands
// anywhere in the generated file.
func runTargets(project *model.Project, all []*model.Test) (map[string]bool, error) {
	targets := map[string]bool{}

	for _, t := range all {
		for _, cmd := range t.Commands {
			if cmd.Disabled() || cmd.Command != "run" {
				continue
			}

			ref, ok := project.TestByName(cmd.Target)
			if !ok {
				ref, ok = project.TestByID(cmd.Target)
			}
			if !ok {
				return nil, fmt.Errorf("%w: run target %q in test %q", format.ErrUnknownUnit, cmd.Target, t.Name)
			}

			targets[ref.ID] = true
		}
	}

	return targets, nil
}
