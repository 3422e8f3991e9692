// Package java emits JUnit 4 test classes driving the Java selenium
// bindings: one public class per exported unit, one method per test.
package java

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

// Format is the java-junit format.
type Format struct{}

// New returns the java-junit format.
func New() *Format {
	return &Format{}
}

func (f *Format) ID() string          { return id }
func (f *Format) Extension() string   { return ".java" }
func (f *Format) Description() string { return "Java JUnit 4 over selenium" }

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

	fns := make(map[string]string, len(all))
	for _, t := range all {
		fns[t.ID] = gen.Camel(t.Name)
	}

	persist := p.suite != nil && p.suite.PersistSession
	em := &emitter{project: project, fns: fns}
	buf := gen.NewBuffer("  ", 0)

	for _, line := range header(persist) {
		buf.Line(line)
	}
	buf.Blank()

	if hint := suiteHint(p.suite); hint != "" {
		buf.Line(hint)
	}

	class := gen.Pascal(p.name) + "Test"
	buf.Append(gen.Open("public class " + class + " {"))
	emitFixtures(buf, persist)

	// Run-only tests become private helpers; a run command targeting a
	// member just calls the member's test method.
	for _, t := range all {
		signature := "public void " + fns[t.ID] + "() throws Exception {"
		if extra[t.ID] {
			signature = "private void " + fns[t.ID] + "() throws Exception {"
		} else {
			buf.Line("@Test")
		}

		buf.Append(gen.Open(signature))
		if err := em.body(ctx, buf, t); err != nil {
			return model.Emitted{}, fmt.Errorf("test %q: %w", t.Name, err)
		}
		buf.Append(gen.Close("}"))
	}

	buf.Append(gen.Close("}"))

	return model.Emitted{
		Body:     buf.String(),
		Filename: class + ".java",
	}, nil
}

func header(persist bool) []string {
	lines := []string{
		"// Generated by sidegen.",
		"import org.junit.Test;",
	}

	if persist {
		lines = append(lines, "import org.junit.BeforeClass;", "import org.junit.AfterClass;")
	} else {
		lines = append(lines, "import org.junit.Before;", "import org.junit.After;")
	}

	return append(lines,
		"import static org.junit.Assert.*;",
		"import static org.hamcrest.CoreMatchers.is;",
		"import org.openqa.selenium.By;",
		"import org.openqa.selenium.Dimension;",
		"import org.openqa.selenium.JavascriptExecutor;",
		"import org.openqa.selenium.Keys;",
		"import org.openqa.selenium.WebDriver;",
		"import org.openqa.selenium.WebElement;",
		"import org.openqa.selenium.chrome.ChromeDriver;",
		"import org.openqa.selenium.interactions.Actions;",
		"import org.openqa.selenium.support.ui.ExpectedConditions;",
		"import org.openqa.selenium.support.ui.WebDriverWait;",
		"import java.time.Duration;",
		"import java.util.*;",
	)
}

// emitFixtures writes the driver lifecycle. A persistent-session suite
// holds one static driver for the whole class.
func emitFixtures(buf *gen.Buffer, persist bool) {
	if persist {
		buf.Line("private static WebDriver driver;")
		buf.Line("private static Map<String, Object> vars;")
		buf.Line("private static JavascriptExecutor js;")
		buf.Line("@BeforeClass")
		buf.Append(gen.Open("public static void setUpClass() {"))
	} else {
		buf.Line("private WebDriver driver;")
		buf.Line("private Map<String, Object> vars;")
		buf.Line("private JavascriptExecutor js;")
		buf.Line("@Before")
		buf.Append(gen.Open("public void setUp() {"))
	}

	buf.Line("driver = new ChromeDriver();")
	buf.Line("js = (JavascriptExecutor) driver;")
	buf.Line("vars = new HashMap<String, Object>();")
	buf.Append(gen.Close("}"))

	if persist {
		buf.Line("@AfterClass")
		buf.Append(gen.Open("public static void tearDownClass() {"))
	} else {
		buf.Line("@After")
		buf.Append(gen.Open("public void tearDown() {"))
	}

	buf.Line("driver.quit();")
	buf.Append(gen.Close("}"))
}

// suiteHint renders suite settings JUnit cannot express directly.
func suiteHint(suite *model.Suite) string {
	if suite == nil {
		return ""
	}

	var hints []string
	if suite.Timeout > 0 {
		hints = append(hints, fmt.Sprintf("timeout %ds", suite.Timeout))
	}
	if suite.Parallel {
		hints = append(hints, "tests may run in parallel")
	}

	if len(hints) == 0 {
		return ""
	}

	return "// Suite settings: " + strings.Join(hints, ", ") + "."
}
