package javascript

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sidegen/sidegen/internal/format"
	"github.com/sidegen/sidegen/internal/format/gen"
	"github.com/sidegen/sidegen/internal/model"
	"github.com/sidegen/sidegen/internal/plugin"
)

const id = "javascript-mocha"

var (
	errDanglingBranch = errors.New("branch outside a block")
	errDanglingEnd    = errors.New("end without an open block")
)

// by maps locator strategies to selenium-webdriver's By factories.
var by = map[string]string{
	gen.StrategyID:              "By.id",
	gen.StrategyName:            "By.name",
	gen.StrategyCSS:             "By.css",
	gen.StrategyXPath:           "By.xpath",
	gen.StrategyLinkText:        "By.linkText",
	gen.StrategyPartialLinkText: "By.partialLinkText",
}

// emitter translates recorded commands into JavaScript snippets for
// one generated file. depth tracks open control-flow blocks.
type emitter struct {
	project *model.Project
	fns     map[string]string
	depth   int
}

func (e *emitter) body(ctx context.Context, buf *gen.Buffer, test *model.Test) error {
	e.depth = 0

	for _, cmd := range test.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cmd.Disabled() {
			continue
		}

		if cmd.Comment != "" {
			buf.Line("// " + cmd.Comment)
		}

		s, err := e.snippet(cmd)
		if err != nil {
			return fmt.Errorf("command %q: %w", cmd.Command, err)
		}

		buf.Append(s)
	}

	if e.depth != 0 {
		return fmt.Errorf("unclosed block (%d still open)", e.depth)
	}

	return nil
}

func (e *emitter) snippet(cmd model.Command) (gen.Snippet, error) {
	switch cmd.Command {
	case "open":
		return gen.Stmt("await driver.get(" + e.url(cmd.Target) + ")"), nil

	case "setWindowSize":
		w, h, err := gen.Size(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("await driver.manage().window().setRect({ width: %d, height: %d })", w, h), nil

	case "click":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("await driver.findElement(" + loc + ").click()"), nil

	case "doubleClick":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return block(
			"const element = await driver.findElement("+loc+")",
			"await driver.actions({ bridge: true }).doubleClick(element).perform()",
		), nil

	case "type":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("await driver.findElement(" + loc + ").sendKeys(" + e.expr(cmd.Value) + ")"), nil

	case "sendKeys":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("await driver.findElement(" + loc + ").sendKeys(" + e.keys(cmd.Value) + ")"), nil

	case "select":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		option, err := e.option(cmd.Value)
		if err != nil {
			return gen.Snippet{}, err
		}

		return block(
			"const dropdown = await driver.findElement("+loc+")",
			"await dropdown.findElement(By.xpath("+option+")).click()",
		), nil

	case "check":
		return e.checkbox(cmd.Target, "if (!await element.isSelected()) {")

	case "uncheck":
		return e.checkbox(cmd.Target, "if (await element.isSelected()) {")

	case "pause":
		ms, err := gen.Millis(argOr(cmd.Target, cmd.Value))
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("await driver.sleep(%d)", ms), nil

	case "echo":
		return gen.Stmt("console.log(" + e.expr(cmd.Target) + ")"), nil

	case "executeScript", "executeAsyncScript":
		call := "executeScript"
		if cmd.Command == "executeAsyncScript" {
			call = "executeAsyncScript"
		}

		script := "await driver." + call + "(" + e.expr(cmd.Target) + ")"
		if cmd.Value != "" {
			return gen.Stmt("vars[" + gen.Quote(cmd.Value) + "] = " + script), nil
		}

		return gen.Stmt(script), nil

	case "store":
		return gen.Stmt("vars[" + gen.Quote(cmd.Value) + "] = " + e.expr(cmd.Target)), nil

	case "storeText":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("vars[" + gen.Quote(cmd.Value) + "] = await driver.findElement(" + loc + ").getText()"), nil

	case "storeValue":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("vars[" + gen.Quote(cmd.Value) + "] = await driver.findElement(" + loc + `).getAttribute("value")`), nil

	case "storeTitle":
		return gen.Stmt("vars[" + gen.Quote(argOr(cmd.Value, cmd.Target)) + "] = await driver.getTitle()"), nil

	case "assert", "verify":
		return gen.Stmt("assert(vars[" + gen.Quote(cmd.Target) + "] == " + e.expr(cmd.Value) + ")"), nil

	case "assertText", "verifyText":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert(await driver.findElement(" + loc + ").getText() == " + e.expr(cmd.Value) + ")"), nil

	case "assertTitle", "verifyTitle":
		return gen.Stmt("assert(await driver.getTitle() == " + e.expr(cmd.Target) + ")"), nil

	case "assertValue":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return block(
			"const value = await driver.findElement("+loc+`).getAttribute("value")`,
			"assert(value == "+e.expr(cmd.Value)+")",
		), nil

	case "assertElementPresent":
		return e.elementCount(cmd.Target, "assert(elements.length)")

	case "assertElementNotPresent":
		return e.elementCount(cmd.Target, "assert(!elements.length)")

	case "assertChecked":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert(await driver.findElement(" + loc + ").isSelected())"), nil

	case "assertNotChecked":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert(!await driver.findElement(" + loc + ").isSelected())"), nil

	case "waitForElementPresent":
		loc, ms, err := e.waitArgs(cmd)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("await driver.wait(until.elementLocated(%s), %d)", loc, ms), nil

	case "waitForElementVisible":
		loc, ms, err := e.waitArgs(cmd)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("await driver.wait(until.elementIsVisible(await driver.findElement(%s)), %d)", loc, ms), nil

	case "waitForElementNotVisible":
		loc, ms, err := e.waitArgs(cmd)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("await driver.wait(until.elementIsNotVisible(await driver.findElement(%s)), %d)", loc, ms), nil

	case "waitForElementNotPresent":
		loc, ms, err := e.waitArgs(cmd)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Snippet{Lines: []gen.Line{
			{Text: "await driver.wait(async () => {"},
			{Indent: 1, Text: "const elements = await driver.findElements(" + loc + ")"},
			{Indent: 1, Text: "return elements.length === 0"},
			{Text: fmt.Sprintf("}, %d)", ms)},
		}}, nil

	case "run":
		fn, err := e.runTarget(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("await " + fn + "()"), nil

	case "if":
		e.depth++

		return gen.Open("if (" + e.condition(cmd.Target) + ") {"), nil

	case "elseIf":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingBranch
		}

		return gen.Bridge("} else if (" + e.condition(cmd.Target) + ") {"), nil

	case "else":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingBranch
		}

		return gen.Bridge("} else {"), nil

	case "end":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingEnd
		}
		e.depth--

		return gen.Close("}"), nil

	case "while":
		e.depth++

		return gen.Open("while (" + e.condition(cmd.Target) + ") {"), nil

	case "times":
		n, err := strconv.Atoi(strings.TrimSpace(cmd.Target))
		if err != nil || n < 0 {
			return gen.Snippet{}, fmt.Errorf("invalid times count %q", cmd.Target)
		}
		e.depth++

		return gen.Open(fmt.Sprintf("for (let i = 0; i < %d; i++) {", n)), nil

	case "do":
		e.depth++

		return gen.Open("do {"), nil

	case "repeatIf":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingEnd
		}
		e.depth--

		return gen.Snippet{Lines: []gen.Line{
			{Indent: -1, Text: "} while (" + e.condition(cmd.Target) + ")"},
		}, Delta: -1}, nil

	case "forEach":
		e.depth++
		item := gen.Camel(cmd.Value) + "Item"

		return gen.Snippet{Lines: []gen.Line{
			{Text: fmt.Sprintf("for (const %s of vars[%s]) {", item, gen.Quote(cmd.Target))},
			{Indent: 1, Text: fmt.Sprintf("vars[%s] = %s", gen.Quote(cmd.Value), item)},
		}, Delta: 1}, nil
	}

	if pc, ok := plugin.Lookup(cmd.Command); ok {
		return pc.Snippet(id, plugin.Data{Target: cmd.Target, Value: cmd.Value, URL: e.project.URL})
	}

	return gen.Snippet{}, fmt.Errorf("%w %q", format.ErrUnsupportedCommand, cmd.Command)
}

// expr renders a recorded string as a JavaScript expression, splicing
// stored-variable references into the literal parts.
func (e *emitter) expr(s string) string {
	segs := gen.Interpolate(s)
	if len(segs) == 0 {
		return `""`
	}

	if len(segs) == 1 && segs[0].Var {
		return "vars[" + gen.Quote(segs[0].Text) + "]"
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg.Var {
			parts = append(parts, "vars["+gen.Quote(seg.Text)+"]")
		} else {
			parts = append(parts, gen.Quote(seg.Text))
		}
	}

	return strings.Join(parts, " + ")
}

// keys renders a sendKeys value: ${KEY_X} references become Key
// constants, passed to sendKeys as separate arguments.
func (e *emitter) keys(s string) string {
	segs := gen.Interpolate(s)
	if len(segs) == 0 {
		return `""`
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		switch key, ok := seg.Key(); {
		case ok:
			parts = append(parts, "Key."+key)
		case seg.Var:
			parts = append(parts, "vars["+gen.Quote(seg.Text)+"]")
		default:
			parts = append(parts, gen.Quote(seg.Text))
		}
	}

	return strings.Join(parts, ", ")
}

func (e *emitter) url(target string) string {
	if gen.HasVars(target) {
		return e.expr(target)
	}

	return gen.Quote(gen.ResolveURL(e.project.URL, target))
}

// locator renders a recorded element target as a By factory call.
func (e *emitter) locator(target string) (string, error) {
	loc, err := gen.ParseLocation(target)
	if err != nil {
		return "", err
	}

	return by[loc.Strategy] + "(" + e.expr(loc.Value) + ")", nil
}

func (e *emitter) option(s string) (string, error) {
	opt := gen.ParseOptionLocator(s)

	switch opt.Strategy {
	case gen.OptionValue:
		return e.expr("//option[@value = '" + opt.Value + "']"), nil
	case gen.OptionIndex:
		n, err := strconv.Atoi(strings.TrimSpace(opt.Value))
		if err != nil || n < 0 {
			return "", fmt.Errorf("invalid option index %q", opt.Value)
		}

		return fmt.Sprintf(`"//option[%d]"`, n+1), nil
	default:
		return e.expr("//option[. = '" + opt.Value + "']"), nil
	}
}

// condition renders a recorded control-flow condition, evaluated in
// the browser.
func (e *emitter) condition(target string) string {
	return "await driver.executeScript(" + e.expr("return ("+target+")") + ")"
}

func (e *emitter) checkbox(target, guard string) (gen.Snippet, error) {
	loc, err := e.locator(target)
	if err != nil {
		return gen.Snippet{}, err
	}

	return gen.Snippet{Lines: []gen.Line{
		{Text: "{"},
		{Indent: 1, Text: "const element = await driver.findElement(" + loc + ")"},
		{Indent: 1, Text: guard},
		{Indent: 2, Text: "await element.click()"},
		{Indent: 1, Text: "}"},
		{Text: "}"},
	}}, nil
}

func (e *emitter) elementCount(target, assertion string) (gen.Snippet, error) {
	loc, err := e.locator(target)
	if err != nil {
		return gen.Snippet{}, err
	}

	return block(
		"const elements = await driver.findElements("+loc+")",
		assertion,
	), nil
}

func (e *emitter) waitArgs(cmd model.Command) (string, int, error) {
	loc, err := e.locator(cmd.Target)
	if err != nil {
		return "", 0, err
	}

	ms, err := gen.Millis(cmd.Value)
	if err != nil {
		return "", 0, err
	}

	return loc, ms, nil
}

func (e *emitter) runTarget(target string) (string, error) {
	test, ok := e.project.TestByName(target)
	if !ok {
		test, ok = e.project.TestByID(target)
	}
	if !ok {
		return "", fmt.Errorf("%w: run target %q", format.ErrUnknownUnit, target)
	}

	fn, ok := e.fns[test.ID]
	if !ok {
		return "", fmt.Errorf("run target %q outside generated file", target)
	}

	return fn, nil
}

// block wraps statements in braces so const declarations do not clash
// across repeated commands in one body.
func block(statements ...string) gen.Snippet {
	lines := make([]gen.Line, 0, len(statements)+2)
	lines = append(lines, gen.Line{Text: "{"})

	for _, s := range statements {
		lines = append(lines, gen.Line{Indent: 1, Text: s})
	}

	return gen.Snippet{Lines: append(lines, gen.Line{Text: "}"})}
}

// sq renders a single-quoted string literal, the house style for
// describe and it titles.
func sq(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')

	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('\'')

	return sb.String()
}

func argOr(primary, fallback string) string {
	if primary != "" {
		return primary
	}

	return fallback
}
