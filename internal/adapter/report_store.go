package adapter

import (
	"encoding/json"
	"fmt"
	"os"

	m "github.com/sidegen/sidegen/internal/model"
)

// ReportStore persists run reports.
type ReportStore interface {
	Save(path m.Path, summary m.RunSummary) error
}

type reportStore struct{}

// NewReportStore constructs a ReportStore implementation.
func NewReportStore() ReportStore {
	return &reportStore{}
}

// Save writes the run summary as indented JSON, one document per run.
func (rs *reportStore) Save(path m.Path, summary m.RunSummary) error {
	doc := reportDoc{
		RunID:      summary.RunID,
		Project:    summary.Project,
		Format:     summary.Format,
		Mode:       string(summary.Mode),
		Started:    summary.Started.UTC().Format("2006-01-02T15:04:05Z"),
		DurationMS: summary.Duration.Milliseconds(),
		Units:      make([]reportUnitDoc, 0, len(summary.Results)),
	}

	for _, r := range summary.Results {
		unit := reportUnitDoc{
			Unit:       r.Unit,
			Status:     "ok",
			Filename:   r.Filename,
			Path:       string(r.Path),
			Bytes:      r.Bytes,
			DurationMS: r.Duration.Milliseconds(),
		}

		if r.Failed() {
			unit.Status = "failed"
			unit.Error = r.Err.Error()
		}

		doc.Units = append(doc.Units, unit)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(string(path), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

type reportDoc struct {
	RunID      string          `json:"run_id"`
	Project    string          `json:"project"`
	Format     string          `json:"format"`
	Mode       string          `json:"mode"`
	Started    string          `json:"started"`
	DurationMS int64           `json:"duration_ms"`
	Units      []reportUnitDoc `json:"units"`
}

type reportUnitDoc struct {
	Unit       string `json:"unit"`
	Status     string `json:"status"`
	Filename   string `json:"filename,omitempty"`
	Path       string `json:"path,omitempty"`
	Bytes      int    `json:"bytes,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
