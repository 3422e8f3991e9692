package python

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

const id = "python-pytest"

var (
	errDanglingBranch = errors.New("branch outside a block")
	errDanglingEnd    = errors.New("end without an open block")
)

// by maps locator strategies to Python's By constants.
var by = map[string]string{
	gen.StrategyID:              "By.ID",
	gen.StrategyName:            "By.NAME",
	gen.StrategyCSS:             "By.CSS_SELECTOR",
	gen.StrategyXPath:           "By.XPATH",
	gen.StrategyLinkText:        "By.LINK_TEXT",
	gen.StrategyPartialLinkText: "By.PARTIAL_LINK_TEXT",
}

// emitter translates recorded commands into Python snippets for one
// generated file. depth tracks open control-flow blocks so a stray end
// fails the unit instead of corrupting the file.
type emitter struct {
	project *model.Project
	methods map[string]string
	depth   int
}

func (e *emitter) body(ctx context.Context, buf *gen.Buffer, test *model.Test) error {
	e.depth = 0
	emitted := false

	for _, cmd := range test.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cmd.Disabled() {
			continue
		}

		if cmd.Comment != "" {
			buf.Line("# " + cmd.Comment)
		}

		s, err := e.snippet(cmd)
		if err != nil {
			return fmt.Errorf("command %q: %w", cmd.Command, err)
		}

		buf.Append(s)
		emitted = true
	}

	if e.depth != 0 {
		return fmt.Errorf("unclosed block (%d still open)", e.depth)
	}

	if !emitted {
		buf.Line("pass")
	}

	return nil
}

func (e *emitter) snippet(cmd model.Command) (gen.Snippet, error) {
	switch cmd.Command {
	case "open":
		return gen.Stmt("self.driver.get(" + e.url(cmd.Target) + ")"), nil

	case "setWindowSize":
		w, h, err := gen.Size(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("self.driver.set_window_size(%d, %d)", w, h), nil

	case "click":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("self.driver.find_element(" + loc + ").click()"), nil

	case "doubleClick":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Lines(
			"element = self.driver.find_element("+loc+")",
			"actions = ActionChains(self.driver)",
			"actions.double_click(element).perform()",
		), nil

	case "type":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("self.driver.find_element(" + loc + ").send_keys(" + e.expr(cmd.Value) + ")"), nil

	case "sendKeys":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("self.driver.find_element(" + loc + ").send_keys(" + e.keys(cmd.Value) + ")"), nil

	case "select":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		option, err := e.option(cmd.Value)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Lines(
			"dropdown = self.driver.find_element("+loc+")",
			"dropdown.find_element(By.XPATH, "+option+").click()",
		), nil

	case "check":
		return e.checkbox(cmd.Target, "if not element.is_selected():")

	case "uncheck":
		return e.checkbox(cmd.Target, "if element.is_selected():")

	case "pause":
		ms, err := gen.Millis(argOr(cmd.Target, cmd.Value))
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("time.sleep(" + gen.Seconds(ms) + ")"), nil

	case "echo":
		return gen.Stmt("print(" + e.expr(cmd.Target) + ")"), nil

	case "executeScript", "executeAsyncScript":
		call := "execute_script"
		if cmd.Command == "executeAsyncScript" {
			call = "execute_async_script"
		}

		script := "self.driver." + call + "(" + e.expr(cmd.Target) + ")"
		if cmd.Value != "" {
			return gen.Stmt("self.vars[" + gen.Quote(cmd.Value) + "] = " + script), nil
		}

		return gen.Stmt(script), nil

	case "store":
		return gen.Stmt("self.vars[" + gen.Quote(cmd.Value) + "] = " + e.expr(cmd.Target)), nil

	case "storeText":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("self.vars[" + gen.Quote(cmd.Value) + "] = self.driver.find_element(" + loc + ").text"), nil

	case "storeValue":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("self.vars[" + gen.Quote(cmd.Value) + "] = self.driver.find_element(" + loc + `).get_attribute("value")`), nil

	case "storeTitle":
		return gen.Stmt("self.vars[" + gen.Quote(argOr(cmd.Value, cmd.Target)) + "] = self.driver.title"), nil

	case "assert", "verify":
		return gen.Stmt("assert self.vars[" + gen.Quote(cmd.Target) + "] == " + e.expr(cmd.Value)), nil

	case "assertText", "verifyText":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert self.driver.find_element(" + loc + ").text == " + e.expr(cmd.Value)), nil

	case "assertTitle", "verifyTitle":
		return gen.Stmt("assert self.driver.title == " + e.expr(cmd.Target)), nil

	case "assertValue":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert self.driver.find_element(" + loc + `).get_attribute("value") == ` + e.expr(cmd.Value)), nil

	case "assertElementPresent":
		return e.elementCount(cmd.Target, "assert len(elements) > 0")

	case "assertElementNotPresent":
		return e.elementCount(cmd.Target, "assert len(elements) == 0")

	case "assertChecked":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert self.driver.find_element(" + loc + ").is_selected()"), nil

	case "assertNotChecked":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assert not self.driver.find_element(" + loc + ").is_selected()"), nil

	case "waitForElementPresent":
		return e.wait(cmd, "expected_conditions.presence_of_element_located((%s))")

	case "waitForElementVisible":
		return e.wait(cmd, "expected_conditions.visibility_of_element_located((%s))")

	case "waitForElementNotVisible":
		return e.wait(cmd, "expected_conditions.invisibility_of_element_located((%s))")

	case "waitForElementNotPresent":
		return e.wait(cmd, "lambda d: len(d.find_elements(%s)) == 0")

	case "run":
		method, err := e.runTarget(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("self." + method + "()"), nil

	case "if":
		e.depth++

		return gen.Open("if " + e.condition(cmd.Target) + ":"), nil

	case "elseIf":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingBranch
		}

		return gen.Bridge("elif " + e.condition(cmd.Target) + ":"), nil

	case "else":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingBranch
		}

		return gen.Bridge("else:"), nil

	case "end":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingEnd
		}
		e.depth--

		return gen.Dedent, nil

	case "while":
		e.depth++

		return gen.Open("while " + e.condition(cmd.Target) + ":"), nil

	case "times":
		n, err := strconv.Atoi(strings.TrimSpace(cmd.Target))
		if err != nil || n < 0 {
			return gen.Snippet{}, fmt.Errorf("invalid times count %q", cmd.Target)
		}
		e.depth++

		return gen.Open(fmt.Sprintf("for i in range(0, %d):", n)), nil

	case "do":
		e.depth++

		return gen.Snippet{Lines: []gen.Line{
			{Text: "condition = True"},
			{Text: "while condition:"},
		}, Delta: 1}, nil

	case "repeatIf":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingEnd
		}
		e.depth--

		return gen.Snippet{Lines: []gen.Line{
			{Text: "condition = " + e.condition(cmd.Target)},
		}, Delta: -1}, nil

	case "forEach":
		e.depth++
		item := gen.Snake(cmd.Value) + "_item"

		return gen.Snippet{Lines: []gen.Line{
			{Text: fmt.Sprintf("for %s in self.vars[%s]:", item, gen.Quote(cmd.Target))},
			{Indent: 1, Text: fmt.Sprintf("self.vars[%s] = %s", gen.Quote(cmd.Value), item)},
		}, Delta: 1}, nil
	}

	if pc, ok := plugin.Lookup(cmd.Command); ok {
		return pc.Snippet(id, plugin.Data{Target: cmd.Target, Value: cmd.Value, URL: e.project.URL})
	}

	return gen.Snippet{}, fmt.Errorf("%w %q", format.ErrUnsupportedCommand, cmd.Command)
}

// expr renders a recorded string as a Python expression, splicing
// stored-variable references into the literal parts.
func (e *emitter) expr(s string) string {
	segs := gen.Interpolate(s)
	if len(segs) == 0 {
		return `""`
	}

	if len(segs) == 1 && segs[0].Var {
		return "self.vars[" + gen.Quote(segs[0].Text) + "]"
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg.Var {
			parts = append(parts, "str(self.vars["+gen.Quote(seg.Text)+"])")
		} else {
			parts = append(parts, gen.Quote(seg.Text))
		}
	}

	return strings.Join(parts, " + ")
}

// keys renders a sendKeys value: ${KEY_X} references become Keys
// constants, passed to send_keys as separate arguments.
func (e *emitter) keys(s string) string {
	segs := gen.Interpolate(s)
	if len(segs) == 0 {
		return `""`
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		switch key, ok := seg.Key(); {
		case ok:
			parts = append(parts, "Keys."+key)
		case seg.Var:
			parts = append(parts, "str(self.vars["+gen.Quote(seg.Text)+"])")
		default:
			parts = append(parts, gen.Quote(seg.Text))
		}
	}

	return strings.Join(parts, ", ")
}

// url renders an open target: resolved against the recorded base URL
// unless the target interpolates variables.
func (e *emitter) url(target string) string {
	if gen.HasVars(target) {
		return e.expr(target)
	}

	return gen.Quote(gen.ResolveURL(e.project.URL, target))
}

// locator renders a recorded element target as find_element arguments.
func (e *emitter) locator(target string) (string, error) {
	loc, err := gen.ParseLocation(target)
	if err != nil {
		return "", err
	}

	return by[loc.Strategy] + ", " + e.expr(loc.Value), nil
}

// option renders a recorded option locator as an XPath expression
// scoped to the dropdown element.
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

// condition renders a recorded control-flow condition. The expression
// is evaluated in the browser, matching how the recorder runs it.
func (e *emitter) condition(target string) string {
	return "self.driver.execute_script(" + e.expr("return ("+target+")") + ")"
}

func (e *emitter) checkbox(target, guard string) (gen.Snippet, error) {
	loc, err := e.locator(target)
	if err != nil {
		return gen.Snippet{}, err
	}

	return gen.Snippet{Lines: []gen.Line{
		{Text: "element = self.driver.find_element(" + loc + ")"},
		{Text: guard},
		{Indent: 1, Text: "element.click()"},
	}}, nil
}

func (e *emitter) elementCount(target, assertion string) (gen.Snippet, error) {
	loc, err := e.locator(target)
	if err != nil {
		return gen.Snippet{}, err
	}

	return gen.Lines(
		"elements = self.driver.find_elements("+loc+")",
		assertion,
	), nil
}

func (e *emitter) wait(cmd model.Command, conditionFmt string) (gen.Snippet, error) {
	loc, err := e.locator(cmd.Target)
	if err != nil {
		return gen.Snippet{}, err
	}

	ms, err := gen.Millis(cmd.Value)
	if err != nil {
		return gen.Snippet{}, err
	}

	return gen.Stmtf("WebDriverWait(self.driver, %s).until("+conditionFmt+")", gen.Seconds(ms), loc), nil
}

func (e *emitter) runTarget(target string) (string, error) {
	test, ok := e.project.TestByName(target)
	if !ok {
		test, ok = e.project.TestByID(target)
	}
	if !ok {
		return "", fmt.Errorf("%w: run target %q", format.ErrUnknownUnit, target)
	}

	method, ok := e.methods[test.ID]
	if !ok {
		return "", fmt.Errorf("run target %q outside generated file", target)
	}

	return method, nil
}

func argOr(primary, fallback string) string {
	if primary != "" {
		return primary
	}

	return fallback
}
