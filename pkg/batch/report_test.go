package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkgbatch/pkg/extract"
	"github.com/pkgbatch/pkg/kind"
)

func sampleReport() *Report {
	r := NewReport()
	r.add(Outcome{
		Job:    Job{Source: "/src/b.ppf", Kind: kind.PatchContainer, Output: "/out/b.ppf", Index: 1},
		Status: StatusSucceeded, Duration: 120 * time.Millisecond,
	})
	r.add(Outcome{
		Job:    Job{Source: "/src/a.pkg", Kind: kind.Package, Output: "/out/a.pkg", Index: 0},
		Status: StatusFailed,
		Reason: extract.NewFailure(extract.CorruptInput, "truncated header"),
	})
	r.add(Outcome{
		Job:    Job{Source: "/src/c.pkg", Kind: kind.Package, Output: "/out/c.pkg", Index: 2},
		Status: StatusSkipped,
	})
	r.Finalize()
	return r
}

func TestReport_FinalizeOrders(t *testing.T) {
	r := sampleReport()
	var got []string
	for _, o := range r.Outcomes {
		got = append(got, filepath.Base(o.Job.Source))
	}
	want := []string{"a.pkg", "b.ppf", "c.pkg"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestReport_Counts(t *testing.T) {
	succeeded, skipped, failed := sampleReport().Counts()
	if succeeded != 1 || skipped != 1 || failed != 1 {
		t.Errorf("counts = %d/%d/%d", succeeded, skipped, failed)
	}
}

func TestReport_Summary(t *testing.T) {
	var sb strings.Builder
	sampleReport().Summary(&sb)
	out := sb.String()

	if !strings.Contains(out, "1 extracted, 1 skipped, 1 failed") {
		t.Errorf("summary missing counts: %s", out)
	}
	if !strings.Contains(out, "FAILED") || !strings.Contains(out, "/src/a.pkg") {
		t.Errorf("summary missing itemized failure: %s", out)
	}
	if !strings.Contains(out, string(extract.CorruptInput)) {
		t.Errorf("summary missing failure reason: %s", out)
	}
	// Successful archives are counted, not itemized.
	if strings.Contains(out, "/src/b.ppf") {
		t.Errorf("summary itemizes successes: %s", out)
	}
}

func TestReport_SummaryCancelled(t *testing.T) {
	r := sampleReport()
	r.Cancelled = true
	r.Unscheduled = 3

	var sb strings.Builder
	r.Summary(&sb)
	if !strings.Contains(sb.String(), "interrupted") {
		t.Errorf("summary missing cancellation note: %s", sb.String())
	}
	if !strings.Contains(sb.String(), "3 candidate(s)") {
		t.Errorf("summary missing unscheduled count: %s", sb.String())
	}
}

func TestReport_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	if err := sampleReport().WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Succeeded int `json:"succeeded"`
		Skipped   int `json:"skipped"`
		Failed    int `json:"failed"`
		Outcomes  []struct {
			Source string `json:"source"`
			Kind   string `json:"kind"`
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"outcomes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if doc.Succeeded != 1 || doc.Skipped != 1 || doc.Failed != 1 {
		t.Errorf("doc counts = %d/%d/%d", doc.Succeeded, doc.Skipped, doc.Failed)
	}
	if len(doc.Outcomes) != 3 {
		t.Fatalf("outcomes = %d", len(doc.Outcomes))
	}
	if doc.Outcomes[0].Source != "/src/a.pkg" || doc.Outcomes[0].Reason != string(extract.CorruptInput) {
		t.Errorf("first outcome = %+v", doc.Outcomes[0])
	}
}
