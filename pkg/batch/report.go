package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkgbatch/pkg/extract"
)

// Status is the terminal state of one extraction job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome pairs a job with its terminal status. Reason is set only for
// failures.
type Outcome struct {
	Job      Job
	Status   Status
	Reason   *extract.Failure
	Duration time.Duration
}

// Report aggregates the outcomes of one batch run. Built incrementally
// while jobs complete, then finalized once; not mutated afterwards.
type Report struct {
	Outcomes    []Outcome
	Cancelled   bool // the run stopped scheduling before discovery ended
	Unscheduled int  // discovered candidates never scheduled due to cancellation
}

// NewReport returns an empty report ready for collection.
func NewReport() *Report {
	return &Report{}
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Finalize re-orders outcomes to discovery order so repeated runs over
// the same tree emit reproducible reports.
func (r *Report) Finalize() {
	sort.Slice(r.Outcomes, func(i, j int) bool {
		return r.Outcomes[i].Job.Index < r.Outcomes[j].Job.Index
	})
}

// Counts returns the number of succeeded, skipped, and failed outcomes.
func (r *Report) Counts() (succeeded, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSucceeded:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return
}

// Failed returns the failed outcomes in report order.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// HasFailures reports whether at least one job failed.
func (r *Report) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Summary writes the human-readable run summary: aggregate counts plus
// an itemized list of failed archives and reasons. Successful jobs are
// only counted.
func (r *Report) Summary(w io.Writer) {
	succeeded, skipped, failed := r.Counts()
	fmt.Fprintf(w, "Processed %d archive(s): %d extracted, %d skipped, %d failed\n",
		len(r.Outcomes), succeeded, skipped, failed)

	if r.Cancelled {
		fmt.Fprintln(w, "Run was interrupted before all candidates were scheduled.")
		if r.Unscheduled > 0 {
			fmt.Fprintf(w, "Not attempted: %d candidate(s)\n", r.Unscheduled)
		}
	}

	for _, o := range r.Failed() {
		fmt.Fprintf(w, "  FAILED  %s  [%s] %s\n", o.Job.Source, o.Reason.Kind, o.Reason.Detail)
	}
}

// reportEntry is the JSON shape of one outcome.
type reportEntry struct {
	Source     string `json:"source"`
	Kind       string `json:"kind"`
	Output     string `json:"output"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type reportDoc struct {
	Succeeded   int           `json:"succeeded"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Cancelled   bool          `json:"cancelled,omitempty"`
	Unscheduled int           `json:"unscheduled,omitempty"`
	Outcomes    []reportEntry `json:"outcomes"`
}

// WriteFile emits the full report as indented JSON for machine
// consumption, creating parent directories as needed.
func (r *Report) WriteFile(path string) error {
	succeeded, skipped, failed := r.Counts()
	doc := reportDoc{
		Succeeded:   succeeded,
		Skipped:     skipped,
		Failed:      failed,
		Cancelled:   r.Cancelled,
		Unscheduled: r.Unscheduled,
		Outcomes:    make([]reportEntry, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		entry := reportEntry{
			Source:     o.Job.Source,
			Kind:       o.Job.Kind.String(),
			Output:     o.Job.Output,
			Status:     string(o.Status),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Reason != nil {
			entry.Reason = string(o.Reason.Kind)
			entry.Detail = o.Reason.Detail
		}
		doc.Outcomes = append(doc.Outcomes, entry)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
