package model

import "time"

// Emitted is a formatter's output for one unit: the generated source
// body and the file name (with extension) it should be written under.
type Emitted struct {
	Body     string
	Filename string
}

// UnitResult records one unit's journey through emission and writing.
// A nil Err means the unit's file is on disk.
type UnitResult struct {
	Unit     string
	Filename string
	Path     Path
	Bytes    int
	Duration time.Duration
	Err      error
}

// Failed reports whether this unit produced no file.
func (r UnitResult) Failed() bool {
	return r.Err != nil
}

// RunSummary aggregates all unit outcomes of one export run. Results
// keep the filtered order in which units were issued.
type RunSummary struct {
	RunID    string
	Project  string
	Format   string
	Mode     Mode
	Started  time.Time
	Duration time.Duration
	Results  []UnitResult
}

// Succeeded counts units whose files were written.
func (s RunSummary) Succeeded() int {
	n := 0

	for _, r := range s.Results {
		if !r.Failed() {
			n++
		}
	}

	return n
}

// Failed counts units that produced an error.
func (s RunSummary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// HasFailures reports whether any unit failed.
func (s RunSummary) HasFailures() bool {
	return s.Failed() > 0
}
