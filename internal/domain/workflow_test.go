package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidegen/sidegen/internal/adapter"
	"github.com/sidegen/sidegen/internal/format"
	m "github.com/sidegen/sidegen/internal/model"
)

// capture is a minimal format for pipeline tests: the body records
// which entry point ran, and unit names containing "boom" fail.
type capture struct{}

func (capture) ID() string          { return "capture" }
func (capture) Extension() string   { return ".txt" }
func (capture) Description() string { return "capture format for pipeline tests" }

func (capture) EmitTest(_ context.Context, p *m.Project, name string) (m.Emitted, error) {
	return captureUnit("test", p, name)
}

func (capture) EmitSuite(_ context.Context, p *m.Project, name string) (m.Emitted, error) {
	return captureUnit("suite", p, name)
}

func captureUnit(kind string, p *m.Project, name string) (m.Emitted, error) {
	if strings.Contains(name, "boom") {
		return m.Emitted{}, fmt.Errorf("refusing unit %q", name)
	}

	return m.Emitted{
		Body:     fmt.Sprintf("%s %s\nbase %s\n", kind, name, p.URL),
		Filename: strings.ReplaceAll(name, " ", "-") + ".txt",
	}, nil
}

func init() {
	format.Register(capture{})
}

type fakeLoader struct {
	project *m.Project
	err     error
}

func (l fakeLoader) Load(m.Path) (*m.Project, error) {
	return l.project, l.err
}

type failingWriter struct {
	inner    adapter.FileWriter
	failFile string
}

func (w failingWriter) Write(dir m.Path, e m.Emitted, recorded, override string) (m.Path, int, error) {
	if e.Filename == w.failFile {
		return "", 0, errors.New("disk full")
	}

	return w.inner.Write(dir, e, recorded, override)
}

type fakeStore struct {
	path  m.Path
	saved *m.RunSummary
	err   error
}

func (s *fakeStore) Save(path m.Path, summary m.RunSummary) error {
	s.path = path
	s.saved = &summary

	return s.err
}

type fakeProgress struct {
	mu        sync.Mutex
	total     int
	workers   int
	completed []string
}

func (p *fakeProgress) RunStarted(total, workers int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.workers = workers
}

func (p *fakeProgress) UnitCompleted(r m.UnitResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, r.Unit)
}

func sampleProject() *m.Project {
	return &m.Project{
		ID:      "p1",
		Version: "2.0",
		Name:    "demo",
		URL:     "https://demo.example.com",
		Tests: []m.Test{
			{ID: "t1", Name: "hello world"},
			{ID: "t2", Name: "goodbye now"},
			{ID: "t3", Name: "other case"},
		},
		Suites: []m.Suite{
			{ID: "s1", Name: "smoke", Tests: []string{"t1"}},
			{ID: "s2", Name: "login", Tests: []string{"t2"}},
		},
	}
}

func exportConfig(t *testing.T, project *m.Project) (m.Config, Workflow) {
	t.Helper()

	cfg := m.Config{
		Format:      "capture",
		ProjectPath: m.Path(filepath.Join(t.TempDir(), "demo.side")),
		OutputDir:   m.Path(t.TempDir()),
		Filter:      m.DefaultFilter,
		Mode:        m.ModeSuite,
	}

	w := NewWorkflow(fakeLoader{project: project}, adapter.NewLocalFileWriter(), &fakeStore{})

	return cfg, w
}

func TestFilter_SearchSemanticsAndOrder(t *testing.T) {
	names := []string{"alpha", "beta", "alphabet"}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"alpha", []string{"alpha", "alphabet"}},
		{"^beta$", []string{"beta"}},
		{".*", []string{"alpha", "beta", "alphabet"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			f, err := NewFilter(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Select(names))
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := NewFilter("(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}

func TestWorkflow_ExportSuiteMode(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())
	cfg.Filter = "^smoke$"

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "capture", summary.Format)
	assert.Equal(t, m.ModeSuite, summary.Mode)
	require.Len(t, summary.Results, 1)
	assert.False(t, summary.HasFailures())
	assert.Equal(t, StateDone, w.State())

	data, err := os.ReadFile(filepath.Join(string(cfg.OutputDir), "smoke.txt"))
	require.NoError(t, err)
	assert.Equal(t, "suite smoke\nbase https://demo.example.com\n", string(data))
}

func TestWorkflow_ModeSelectsEntryPoint(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())
	cfg.Mode = m.ModeTest
	cfg.Filter = "^hello"

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	data, err := os.ReadFile(filepath.Join(string(cfg.OutputDir), "hello-world.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "test hello world"))
}

func TestWorkflow_PerUnitIsolation(t *testing.T) {
	project := sampleProject()
	project.Tests = []m.Test{
		{ID: "t1", Name: "alpha"},
		{ID: "t2", Name: "boom unit"},
		{ID: "t3", Name: "charlie"},
	}

	cfg, w := exportConfig(t, project)
	cfg.Mode = m.ModeTest

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)

	// Results keep issue order; only the middle unit failed.
	assert.Equal(t, "alpha", summary.Results[0].Unit)
	assert.False(t, summary.Results[0].Failed())
	assert.True(t, summary.Results[1].Failed())
	assert.Contains(t, summary.Results[1].Err.Error(), "boom")
	assert.False(t, summary.Results[2].Failed())
	assert.Equal(t, 2, summary.Succeeded())
	assert.True(t, summary.HasFailures())

	_, err = os.Stat(filepath.Join(string(cfg.OutputDir), "alpha.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(string(cfg.OutputDir), "charlie.txt"))
	require.NoError(t, err)
}

func TestWorkflow_WriteFailureIsThatUnitsError(t *testing.T) {
	cfg, _ := exportConfig(t, sampleProject())
	w := NewWorkflow(
		fakeLoader{project: sampleProject()},
		failingWriter{inner: adapter.NewLocalFileWriter(), failFile: "smoke.txt"},
		&fakeStore{},
	)

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.True(t, summary.Results[0].Failed())
	assert.Contains(t, summary.Results[0].Err.Error(), "disk full")
	assert.False(t, summary.Results[1].Failed())
}

func TestWorkflow_BaseURLOverride(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())
	cfg.Filter = "^login$"
	cfg.BaseURL = "https://staging.example.com"

	_, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(string(cfg.OutputDir), "login.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "base https://staging.example.com")
	assert.NotContains(t, string(data), "demo.example.com")
}

func TestWorkflow_ReportSaved(t *testing.T) {
	store := &fakeStore{}
	cfg, _ := exportConfig(t, sampleProject())
	cfg.ReportPath = m.Path(filepath.Join(t.TempDir(), "report.json"))

	w := NewWorkflow(fakeLoader{project: sampleProject()}, adapter.NewLocalFileWriter(), store)

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.NotNil(t, store.saved)
	assert.Equal(t, cfg.ReportPath, store.path)
	assert.Equal(t, summary.RunID, store.saved.RunID)
}

func TestWorkflow_ReportSaveFailureIsFatal(t *testing.T) {
	store := &fakeStore{err: errors.New("no space")}
	cfg, _ := exportConfig(t, sampleProject())
	cfg.ReportPath = "/nowhere/report.json"

	w := NewWorkflow(fakeLoader{project: sampleProject()}, adapter.NewLocalFileWriter(), store)

	summary, err := w.Export(context.Background(), cfg, nil)
	require.Error(t, err)
	// The run itself still happened.
	assert.Len(t, summary.Results, 2)
}

func TestWorkflow_FatalBeforeEmission(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*m.Config)
		loader  adapter.ProjectLoader
		wantErr string
	}{
		{
			"invalid filter",
			func(cfg *m.Config) { cfg.Filter = "(" },
			fakeLoader{project: sampleProject()},
			"invalid filter",
		},
		{
			"unknown format",
			func(cfg *m.Config) { cfg.Format = "cobol-punchcards" },
			fakeLoader{project: sampleProject()},
			"unknown format",
		},
		{
			"project load failure",
			func(*m.Config) {},
			fakeLoader{err: errors.New("no such document")},
			"no such document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := exportConfig(t, sampleProject())
			tt.mutate(&cfg)

			w := NewWorkflow(tt.loader, adapter.NewLocalFileWriter(), &fakeStore{})

			_, err := w.Export(context.Background(), cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			entries, _ := os.ReadDir(string(cfg.OutputDir))
			assert.Empty(t, entries, "fatal errors must not leave output behind")
		})
	}
}

func TestWorkflow_PluginLoadFailureIsFatal(t *testing.T) {
	project := sampleProject()
	project.Plugins = []string{"missing-plugin.json"}

	cfg, _ := exportConfig(t, project)
	w := NewWorkflow(fakeLoader{project: project}, adapter.NewLocalFileWriter(), &fakeStore{})

	_, err := w.Export(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin")
}

func TestWorkflow_ProgressNotifications(t *testing.T) {
	progress := &fakeProgress{}
	cfg, w := exportConfig(t, sampleProject())

	_, err := w.Export(context.Background(), cfg, progress)
	require.NoError(t, err)

	assert.Equal(t, 2, progress.total)
	assert.GreaterOrEqual(t, progress.workers, 1)
	assert.ElementsMatch(t, []string{"smoke", "login"}, progress.completed)
}

func TestWorkflow_ZeroMatchesIsNotAnError(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())
	cfg.Filter = "nothing-matches-this"

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.False(t, summary.HasFailures())
}

func TestWorkflow_RerunsAreByteIdentical(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())

	_, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(string(cfg.OutputDir), "smoke.txt"))
	require.NoError(t, err)

	_, err = w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)

	second, err := os.ReadFile(filepath.Join(string(cfg.OutputDir), "smoke.txt"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWorkflow_ScenarioHelloGoodbye(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())
	cfg.Mode = m.ModeTest
	cfg.Filter = "^(hello|goodbye).*$"

	summary, err := w.Export(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "hello world", summary.Results[0].Unit)
	assert.Equal(t, "goodbye now", summary.Results[1].Unit)

	entries, err := os.ReadDir(string(cfg.OutputDir))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWorkflow_PreviewListsFilteredUnits(t *testing.T) {
	cfg, w := exportConfig(t, sampleProject())
	cfg.Filter = "login"

	project, units, err := w.Preview(cfg)
	require.NoError(t, err)
	assert.Equal(t, "demo", project.Name)
	assert.Equal(t, []string{"login"}, units)
}

func TestWorkerLimit(t *testing.T) {
	assert.Equal(t, 3, workerLimit(3, 10))
	assert.Equal(t, 2, workerLimit(0, 2))
	assert.Equal(t, 1, workerLimit(0, 0))
	assert.Equal(t, 1, workerLimit(-1, 0))
	assert.LessOrEqual(t, workerLimit(0, 100000), 2*runtime.NumCPU())
}
