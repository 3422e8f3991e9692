// Package adapter contains filesystem and persistence adapters for the
// sidegen CLI. It hides direct os access so the workflow logic can be
// tested without touching the disk.
package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	m "github.com/sidegen/sidegen/internal/model"
)

// ErrInvalidProject marks documents that parsed but failed validation.
var ErrInvalidProject = errors.New("invalid project")

// ProjectLoader reads a recorded project document and validates it for
// export. Anything it rejects is fatal before emission.
type ProjectLoader interface {
	Load(path m.Path) (*m.Project, error)
}

// LocalProjectLoader is the os-backed ProjectLoader.
type LocalProjectLoader struct{}

// NewLocalProjectLoader constructs a LocalProjectLoader.
func NewLocalProjectLoader() *LocalProjectLoader {
	return &LocalProjectLoader{}
}

// Load reads, decodes and validates the document at path. The returned
// project is read-only for the rest of the run.
func (l *LocalProjectLoader) Load(path m.Path) (*m.Project, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var project m.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}

	if err := validate(&project); err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}

	return &project, nil
}

func validate(p *m.Project) error {
	if err := checkVersion(p.Version); err != nil {
		return err
	}

	testNames := make(map[string]bool, len(p.Tests))

	for i, test := range p.Tests {
		if test.Name == "" {
			return fmt.Errorf("%w: test %d has an empty name", ErrInvalidProject, i+1)
		}

		if testNames[test.Name] {
			return fmt.Errorf("%w: duplicate test name %q", ErrInvalidProject, test.Name)
		}

		testNames[test.Name] = true
	}

	suiteNames := make(map[string]bool, len(p.Suites))

	for i := range p.Suites {
		suite := &p.Suites[i]

		if suite.Name == "" {
			return fmt.Errorf("%w: suite %d has an empty name", ErrInvalidProject, i+1)
		}

		if suiteNames[suite.Name] {
			return fmt.Errorf("%w: duplicate suite name %q", ErrInvalidProject, suite.Name)
		}

		suiteNames[suite.Name] = true

		if _, missing := p.ResolveSuiteTests(suite); missing != "" {
			return fmt.Errorf("%w: suite %q references unknown test %q", ErrInvalidProject, suite.Name, missing)
		}
	}

	return nil
}

// checkVersion accepts the recorder's document major version. Documents
// written by hand may omit the field.
func checkVersion(version string) error {
	if version == "" {
		return nil
	}

	major, _, _ := strings.Cut(version, ".")
	if major != "2" {
		return fmt.Errorf("%w: unsupported document version %q", ErrInvalidProject, version)
	}

	return nil
}
