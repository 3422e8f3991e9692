package adapter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/sidegen/sidegen/internal/model"
)

const validDocument = `{
  "id": "p1",
  "version": "2.0",
  "name": "demo",
  "url": "https://demo.example.com",
  "tests": [
    {"id": "t1", "name": "hello", "commands": [
      {"id": "c1", "command": "open", "target": "/", "value": ""}
    ]},
    {"id": "t2", "name": "goodbye", "commands": []}
  ],
  "suites": [
    {"id": "s1", "name": "smoke", "timeout": 300, "tests": ["t1", "goodbye"]}
  ],
  "urls": ["https://demo.example.com/"],
  "plugins": []
}`

func writeDocument(t *testing.T, content string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo.side")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return m.Path(path)
}

func TestLocalProjectLoader_LoadValidDocument(t *testing.T) {
	loader := NewLocalProjectLoader()

	project, err := loader.Load(writeDocument(t, validDocument))
	require.NoError(t, err)

	assert.Equal(t, "demo", project.Name)
	assert.Equal(t, "https://demo.example.com", project.URL)
	require.Len(t, project.Tests, 2)
	assert.Equal(t, "hello", project.Tests[0].Name)
	require.Len(t, project.Suites, 1)

	// Suite references resolve by ID first, then by name.
	tests, missing := project.ResolveSuiteTests(&project.Suites[0])
	assert.Empty(t, missing)
	require.Len(t, tests, 2)
	assert.Equal(t, "hello", tests[0].Name)
	assert.Equal(t, "goodbye", tests[1].Name)
}

func TestLocalProjectLoader_MissingFile(t *testing.T) {
	loader := NewLocalProjectLoader()

	_, err := loader.Load(m.Path(filepath.Join(t.TempDir(), "absent.side")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read project")
}

func TestLocalProjectLoader_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		document string
		wantMsg  string
	}{
		{
			"malformed json",
			`{"name": "broken"`,
			"parse project",
		},
		{
			"unknown version major",
			`{"version": "3.0", "name": "x", "tests": [], "suites": []}`,
			"unsupported document version",
		},
		{
			"empty test name",
			`{"version": "2.0", "tests": [{"id": "t1", "name": "", "commands": []}], "suites": []}`,
			"empty name",
		},
		{
			"duplicate test name",
			`{"version": "2.0", "tests": [
				{"id": "t1", "name": "twin", "commands": []},
				{"id": "t2", "name": "twin", "commands": []}
			], "suites": []}`,
			`duplicate test name "twin"`,
		},
		{
			"duplicate suite name",
			`{"version": "2.0", "tests": [], "suites": [
				{"id": "s1", "name": "twin", "tests": []},
				{"id": "s2", "name": "twin", "tests": []}
			]}`,
			`duplicate suite name "twin"`,
		},
		{
			"unresolved suite reference",
			`{"version": "2.0", "tests": [{"id": "t1", "name": "hello", "commands": []}],
			  "suites": [{"id": "s1", "name": "smoke", "tests": ["t-gone"]}]}`,
			`references unknown test "t-gone"`,
		},
	}

	loader := NewLocalProjectLoader()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(writeDocument(t, tt.document))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			if tt.name != "malformed json" {
				assert.True(t, errors.Is(err, ErrInvalidProject), "got %v", err)
			}
		})
	}
}

func TestLocalProjectLoader_VersionOmitted(t *testing.T) {
	loader := NewLocalProjectLoader()

	_, err := loader.Load(writeDocument(t, `{"name": "bare", "tests": [], "suites": []}`))
	require.NoError(t, err)
}

func TestLocalFileWriter_WriteCreatesDirAndFile(t *testing.T) {
	writer := NewLocalFileWriter()
	dir := m.Path(filepath.Join(t.TempDir(), "out", "nested"))

	path, n, err := writer.Write(dir, m.Emitted{Body: "content\n", Filename: "test_hello.py"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join(string(dir), "test_hello.py")), path)
	assert.Equal(t, len("content\n"), n)

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(data))
}

func TestLocalFileWriter_BaseURLSubstitution(t *testing.T) {
	writer := NewLocalFileWriter()
	dir := m.Path(t.TempDir())
	body := `driver.get("https://recorded.example.com/login")` + "\n"

	path, _, err := writer.Write(dir, m.Emitted{Body: body, Filename: "a.py"},
		"https://recorded.example.com", "https://staging.example.com")
	require.NoError(t, err)

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Equal(t, `driver.get("https://staging.example.com/login")`+"\n", string(data))
}

func TestLocalFileWriter_NoOverrideLeavesBody(t *testing.T) {
	writer := NewLocalFileWriter()
	dir := m.Path(t.TempDir())
	body := `driver.get("https://recorded.example.com/login")` + "\n"

	path, _, err := writer.Write(dir, m.Emitted{Body: body, Filename: "a.py"},
		"https://recorded.example.com", "")
	require.NoError(t, err)

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestLocalFileWriter_MissingFilename(t *testing.T) {
	writer := NewLocalFileWriter()

	_, _, err := writer.Write(m.Path(t.TempDir()), m.Emitted{Body: "x"}, "", "")
	require.Error(t, err)
}

func TestReportStore_Save(t *testing.T) {
	store := NewReportStore()
	path := m.Path(filepath.Join(t.TempDir(), "report.json"))

	summary := m.RunSummary{
		RunID:    "3e9f0d6e-0000-4000-8000-000000000000",
		Project:  "/work/demo.side",
		Format:   "python-pytest",
		Mode:     m.ModeSuite,
		Started:  time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Duration: 42 * time.Millisecond,
		Results: []m.UnitResult{
			{Unit: "smoke", Filename: "test_smoke.py", Path: "/out/test_smoke.py", Bytes: 512, Duration: 30 * time.Millisecond},
			{Unit: "login", Err: errors.New("unsupported command")},
		},
	}

	require.NoError(t, store.Save(path, summary))

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)

	var doc struct {
		RunID  string `json:"run_id"`
		Format string `json:"format"`
		Units  []struct {
			Unit   string `json:"unit"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"units"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, summary.RunID, doc.RunID)
	assert.Equal(t, "python-pytest", doc.Format)
	require.Len(t, doc.Units, 2)
	assert.Equal(t, "ok", doc.Units[0].Status)
	assert.Equal(t, "failed", doc.Units[1].Status)
	assert.Equal(t, "unsupported command", doc.Units[1].Error)

	// Indented output stays human-readable.
	assert.Contains(t, string(data), "\n  \"units\": [")
}
