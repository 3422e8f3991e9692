package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidegen/sidegen/internal/format/gen"
)

const sampleManifest = `{
  "name": "seo-commands",
  "version": "1.0.0",
  "commands": [
    {
      "id": "assertMetaDescription",
      "name": "assert meta description",
      "languages": {
        "python-pytest": {
          "statements": [
            "metas = self.driver.find_elements(By.CSS_SELECTOR, \"meta[name=description]\")",
            "assert metas[0].get_attribute(\"content\") == \"{{.Value}}\""
          ]
        },
        "javascript-mocha": {
          "statements": [
            "const metas = await driver.findElements(By.css(\"meta[name=description]\"))",
            "assert(await metas[0].getAttribute(\"content\") === \"{{.Value}}\")"
          ]
        }
      }
    }
  ]
}`

func writeManifest(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return name
}

func TestLoad_RegistersAndRenders(t *testing.T) {
	t.Cleanup(reset)

	dir := t.TempDir()
	ref := writeManifest(t, dir, "seo.sideplugin.json", sampleManifest)

	n, err := Load(dir, []string{ref})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	cmd, ok := Lookup("assertMetaDescription")
	require.True(t, ok)
	assert.Equal(t, "assertMetaDescription", cmd.Verb())
	assert.Equal(t, "seo-commands", cmd.Plugin())

	snippet, err := cmd.Snippet("python-pytest", Data{Value: "hello world"})
	require.NoError(t, err)
	require.Len(t, snippet.Lines, 2)
	assert.Equal(t, gen.Line{Text: `assert metas[0].get_attribute("content") == "hello world"`}, snippet.Lines[1])
}

func TestLoad_AbsoluteRefBypassesProjectDir(t *testing.T) {
	t.Cleanup(reset)

	dir := t.TempDir()
	writeManifest(t, dir, "seo.json", sampleManifest)

	_, err := Load("/somewhere/else", []string{filepath.Join(dir, "seo.json")})
	require.NoError(t, err)

	_, ok := Lookup("assertMetaDescription")
	assert.True(t, ok)
}

func TestCommand_Snippet_UnknownFormat(t *testing.T) {
	t.Cleanup(reset)

	dir := t.TempDir()
	ref := writeManifest(t, dir, "seo.json", sampleManifest)

	_, err := Load(dir, []string{ref})
	require.NoError(t, err)

	cmd, ok := Lookup("assertMetaDescription")
	require.True(t, ok)

	_, err = cmd.Snippet("java-junit", Data{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no template for format")
}

func TestLoad_MissingManifestFails(t *testing.T) {
	t.Cleanup(reset)

	_, err := Load(t.TempDir(), []string{"absent.json"})
	require.Error(t, err)
}

func TestLoad_MalformedManifestFails(t *testing.T) {
	t.Cleanup(reset)

	dir := t.TempDir()
	ref := writeManifest(t, dir, "bad.json", `{"name": "broken", "commands": [`)

	_, err := Load(dir, []string{ref})
	require.Error(t, err)
}

func TestLoad_DuplicateVerbAcrossPluginsFails(t *testing.T) {
	t.Cleanup(reset)

	dir := t.TempDir()
	first := writeManifest(t, dir, "a.json", sampleManifest)

	clash := `{
  "name": "other-plugin",
  "commands": [
    {"id": "assertMetaDescription", "languages": {"python-pytest": {"statements": ["pass"]}}}
  ]
}`
	second := writeManifest(t, dir, "b.json", clash)

	_, err := Load(dir, []string{first, second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestStatementDoc_IndentObjectForm(t *testing.T) {
	t.Cleanup(reset)

	manifest := `{
  "name": "flow-plugin",
  "commands": [
    {
      "id": "guardedClick",
      "languages": {
        "python-pytest": {
          "statements": [
            "if self.driver.find_elements(By.CSS_SELECTOR, \"{{.Target}}\"):",
            {"text": "self.driver.find_element(By.CSS_SELECTOR, \"{{.Target}}\").click()", "indent": 1}
          ]
        }
      }
    }
  ]
}`

	dir := t.TempDir()
	ref := writeManifest(t, dir, "flow.json", manifest)

	_, err := Load(dir, []string{ref})
	require.NoError(t, err)

	cmd, ok := Lookup("guardedClick")
	require.True(t, ok)

	snippet, err := cmd.Snippet("python-pytest", Data{Target: ".save"})
	require.NoError(t, err)
	require.Len(t, snippet.Lines, 2)
	assert.Equal(t, 0, snippet.Lines[0].Indent)
	assert.Equal(t, 1, snippet.Lines[1].Indent)
	assert.Equal(t, `self.driver.find_element(By.CSS_SELECTOR, ".save").click()`, snippet.Lines[1].Text)
}
