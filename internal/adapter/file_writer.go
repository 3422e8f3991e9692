package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	m "github.com/sidegen/sidegen/internal/model"
)

// FileWriter persists emitted files under the export output directory.
type FileWriter interface {
	// Write stores one emitted unit. When overrideURL is non-empty,
	// every occurrence of recordedURL in the body is replaced with it
	// before writing. Returns the written path and byte count.
	Write(dir m.Path, emitted m.Emitted, recordedURL, overrideURL string) (m.Path, int, error)
}

// LocalFileWriter is the os-backed FileWriter.
type LocalFileWriter struct{}

// NewLocalFileWriter constructs a LocalFileWriter.
func NewLocalFileWriter() *LocalFileWriter {
	return &LocalFileWriter{}
}

// Write creates the output directory if needed and writes the unit's
// file. MkdirAll is idempotent, so concurrent units can share it.
func (w *LocalFileWriter) Write(dir m.Path, emitted m.Emitted, recordedURL, overrideURL string) (m.Path, int, error) {
	if emitted.Filename == "" {
		return "", 0, fmt.Errorf("emitted unit has no filename")
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}

	body := emitted.Body
	if overrideURL != "" && recordedURL != "" {
		body = strings.ReplaceAll(body, recordedURL, overrideURL)
	}

	path := m.Path(filepath.Join(string(dir), emitted.Filename))

	if err := os.WriteFile(string(path), []byte(body), 0o600); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}

	return path, len(body), nil
}
