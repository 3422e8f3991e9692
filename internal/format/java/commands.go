package java

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

const id = "java-junit"

var (
	errDanglingBranch = errors.New("branch outside a block")
	errDanglingEnd    = errors.New("end without an open block")
)

// by maps locator strategies to the selenium By factories.
var by = map[string]string{
	gen.StrategyID:              "By.id",
	gen.StrategyName:            "By.name",
	gen.StrategyCSS:             "By.cssSelector",
	gen.StrategyXPath:           "By.xpath",
	gen.StrategyLinkText:        "By.linkText",
	gen.StrategyPartialLinkText: "By.partialLinkText",
}

// emitter translates recorded commands into Java snippets for one
// generated class. depth tracks open control-flow blocks.
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
		return gen.Stmt("driver.get(" + e.url(cmd.Target) + ");"), nil

	case "setWindowSize":
		w, h, err := gen.Size(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("driver.manage().window().setSize(new Dimension(%d, %d));", w, h), nil

	case "click":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("driver.findElement(" + loc + ").click();"), nil

	case "doubleClick":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return block(
			"WebElement element = driver.findElement("+loc+");",
			"Actions builder = new Actions(driver);",
			"builder.doubleClick(element).perform();",
		), nil

	case "type":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("driver.findElement(" + loc + ").sendKeys(" + e.expr(cmd.Value) + ");"), nil

	case "sendKeys":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("driver.findElement(" + loc + ").sendKeys(" + e.keys(cmd.Value) + ");"), nil

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
			"WebElement dropdown = driver.findElement("+loc+");",
			"dropdown.findElement(By.xpath("+option+")).click();",
		), nil

	case "check":
		return e.checkbox(cmd.Target, "if (!element.isSelected()) {")

	case "uncheck":
		return e.checkbox(cmd.Target, "if (element.isSelected()) {")

	case "pause":
		ms, err := gen.Millis(argOr(cmd.Target, cmd.Value))
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmtf("Thread.sleep(%d);", ms), nil

	case "echo":
		return gen.Stmt("System.out.println(" + e.expr(cmd.Target) + ");"), nil

	case "executeScript", "executeAsyncScript":
		call := "executeScript"
		if cmd.Command == "executeAsyncScript" {
			call = "executeAsyncScript"
		}

		script := "js." + call + "(" + e.expr(cmd.Target) + ")"
		if cmd.Value != "" {
			return gen.Stmt("vars.put(" + gen.Quote(cmd.Value) + ", " + script + ");"), nil
		}

		return gen.Stmt(script + ";"), nil

	case "store":
		return gen.Stmt("vars.put(" + gen.Quote(cmd.Value) + ", " + e.expr(cmd.Target) + ");"), nil

	case "storeText":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("vars.put(" + gen.Quote(cmd.Value) + ", driver.findElement(" + loc + ").getText());"), nil

	case "storeValue":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("vars.put(" + gen.Quote(cmd.Value) + ", driver.findElement(" + loc + `).getAttribute("value"));`), nil

	case "storeTitle":
		return gen.Stmt("vars.put(" + gen.Quote(argOr(cmd.Value, cmd.Target)) + ", driver.getTitle());"), nil

	case "assert", "verify":
		return gen.Stmt("assertEquals(vars.get(" + gen.Quote(cmd.Target) + ").toString(), " + e.expr(cmd.Value) + ");"), nil

	case "assertText", "verifyText":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assertThat(driver.findElement(" + loc + ").getText(), is(" + e.expr(cmd.Value) + "));"), nil

	case "assertTitle", "verifyTitle":
		return gen.Stmt("assertThat(driver.getTitle(), is(" + e.expr(cmd.Target) + "));"), nil

	case "assertValue":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return block(
			"String value = driver.findElement("+loc+`).getAttribute("value");`,
			"assertThat(value, is("+e.expr(cmd.Value)+"));",
		), nil

	case "assertElementPresent":
		return e.elementCount(cmd.Target, "assertTrue(elements.size() > 0);")

	case "assertElementNotPresent":
		return e.elementCount(cmd.Target, "assertTrue(elements.size() == 0);")

	case "assertChecked":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assertTrue(driver.findElement(" + loc + ").isSelected());"), nil

	case "assertNotChecked":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt("assertFalse(driver.findElement(" + loc + ").isSelected());"), nil

	case "waitForElementPresent":
		return e.wait(cmd, "presenceOfElementLocated")

	case "waitForElementVisible":
		return e.wait(cmd, "visibilityOfElementLocated")

	case "waitForElementNotVisible":
		return e.wait(cmd, "invisibilityOfElementLocated")

	case "waitForElementNotPresent":
		loc, err := e.locator(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		ms, err := gen.Millis(cmd.Value)
		if err != nil {
			return gen.Snippet{}, err
		}

		return block(
			fmt.Sprintf("WebDriverWait wait = new WebDriverWait(driver, Duration.ofMillis(%d));", ms),
			"wait.until(ExpectedConditions.numberOfElementsToBe("+loc+", 0));",
		), nil

	case "run":
		fn, err := e.runTarget(cmd.Target)
		if err != nil {
			return gen.Snippet{}, err
		}

		return gen.Stmt(fn + "();"), nil

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

		return gen.Open(fmt.Sprintf("for (int i = 0; i < %d; i++) {", n)), nil

	case "do":
		e.depth++

		return gen.Open("do {"), nil

	case "repeatIf":
		if e.depth == 0 {
			return gen.Snippet{}, errDanglingEnd
		}
		e.depth--

		return gen.Snippet{Lines: []gen.Line{
			{Indent: -1, Text: "} while (" + e.condition(cmd.Target) + ");"},
		}, Delta: -1}, nil

	case "forEach":
		e.depth++
		item := gen.Camel(cmd.Value) + "Item"

		return gen.Snippet{Lines: []gen.Line{
			{Text: fmt.Sprintf("for (Object %s : (List<Object>) vars.get(%s)) {", item, gen.Quote(cmd.Target))},
			{Indent: 1, Text: fmt.Sprintf("vars.put(%s, %s);", gen.Quote(cmd.Value), item)},
		}, Delta: 1}, nil
	}

	if pc, ok := plugin.Lookup(cmd.Command); ok {
		return pc.Snippet(id, plugin.Data{Target: cmd.Target, Value: cmd.Value, URL: e.project.URL})
	}

	return gen.Snippet{}, fmt.Errorf("%w %q", format.ErrUnsupportedCommand, cmd.Command)
}

// expr renders a recorded string as a Java String expression, splicing
// stored-variable references into the literal parts.
func (e *emitter) expr(s string) string {
	segs := gen.Interpolate(s)
	if len(segs) == 0 {
		return `""`
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg.Var {
			parts = append(parts, "vars.get("+gen.Quote(seg.Text)+").toString()")
		} else {
			parts = append(parts, gen.Quote(seg.Text))
		}
	}

	return strings.Join(parts, " + ")
}

// keys renders a sendKeys value: ${KEY_X} references become Keys
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
			parts = append(parts, "Keys."+key)
		case seg.Var:
			parts = append(parts, "vars.get("+gen.Quote(seg.Text)+").toString()")
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
	return "(Boolean) js.executeScript(" + e.expr("return ("+target+")") + ")"
}

func (e *emitter) checkbox(target, guard string) (gen.Snippet, error) {
	loc, err := e.locator(target)
	if err != nil {
		return gen.Snippet{}, err
	}

	return gen.Snippet{Lines: []gen.Line{
		{Text: "{"},
		{Indent: 1, Text: "WebElement element = driver.findElement(" + loc + ");"},
		{Indent: 1, Text: guard},
		{Indent: 2, Text: "element.click();"},
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
		"List<WebElement> elements = driver.findElements("+loc+");",
		assertion,
	), nil
}

func (e *emitter) wait(cmd model.Command, condition string) (gen.Snippet, error) {
	loc, err := e.locator(cmd.Target)
	if err != nil {
		return gen.Snippet{}, err
	}

	ms, err := gen.Millis(cmd.Value)
	if err != nil {
		return gen.Snippet{}, err
	}

	return block(
		fmt.Sprintf("WebDriverWait wait = new WebDriverWait(driver, Duration.ofMillis(%d));", ms),
		"wait.until(ExpectedConditions."+condition+"("+loc+"));",
	), nil
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

// block wraps statements in braces so local declarations do not clash
// across repeated commands in one body.
func block(statements ...string) gen.Snippet {
	lines := make([]gen.Line, 0, len(statements)+2)
	lines = append(lines, gen.Line{Text: "{"})

	for _, s := range statements {
		lines = append(lines, gen.Line{Indent: 1, Text: s})
	}

	return gen.Snippet{Lines: append(lines, gen.Line{Text: "}"})}
}

func argOr(primary, fallback string) string {
	if primary != "" {
		return primary
	}

	return fallback
}
