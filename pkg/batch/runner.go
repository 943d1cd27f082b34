package batch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkgbatch/pkg/extract"
)

// Runner drives discovered candidates through the extraction service
// with a bounded worker pool. Per-archive failures are captured in the
// report and never stop the batch.
type Runner struct {
	cfg   *Config
	svc   extract.Service
	log   *slog.Logger
	namer *OutputNamer
}

// NewRunner wires a runner for one batch.
func NewRunner(cfg *Config, svc extract.Service, log *slog.Logger) *Runner {
	return &Runner{
		cfg:   cfg,
		svc:   svc,
		log:   log,
		namer: NewOutputNamer(cfg.OutputRoot, cfg.StripExt, cfg.ByKind),
	}
}

// Run consumes candidates until the channel closes or ctx is cancelled,
// waits for in-flight jobs to settle, and returns the finalized report.
func (r *Runner) Run(ctx context.Context, candidates <-chan Candidate) *Report {
	report := NewReport()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		cand, ok := <-candidates
		if !ok {
			break
		}
		// Output paths are claimed here, in discovery order, so
		// collision suffixes land on the same sources every run
		// regardless of worker scheduling.
		job := Job{
			Source: cand.Path,
			Kind:   cand.Kind,
			Output: r.namer.Derive(cand.Path, cand.Kind),
			Index:  cand.Index,
		}
		g.Go(func() error {
			outcome := r.runJob(gctx, job)
			mu.Lock()
			report.add(outcome)
			mu.Unlock()
			return nil
		})
	}

	// Failures live in the outcomes, not in worker return values.
	_ = g.Wait()

	if ctx.Err() != nil {
		report.Cancelled = true
		// Count candidates the producer had already emitted but that
		// were never scheduled.
		for range candidates {
			report.Unscheduled++
		}
	}

	report.Finalize()
	return report
}

// runJob drives one job to an outcome: apply the conflict policy,
// create directories, and invoke the service.
func (r *Runner) runJob(ctx context.Context, job Job) Outcome {
	log := r.log.With("source", job.Source, "kind", job.Kind.String())
	start := time.Now()

	failed := func(f *extract.Failure) Outcome {
		log.Error("extraction failed", "reason", string(f.Kind), "detail", f.Detail)
		return Outcome{Job: job, Status: StatusFailed, Reason: f, Duration: time.Since(start)}
	}

	if populated(job.Output) {
		switch r.cfg.Conflict {
		case ConflictSkip:
			log.Info("output already present, skipping")
			return Outcome{Job: job, Status: StatusSkipped, Duration: time.Since(start)}
		case ConflictFail:
			return failed(extract.NewFailure(extract.OutputConflict,
				"output already exists: %s", job.Output))
		case ConflictOverwrite:
			if err := os.RemoveAll(job.Output); err != nil {
				return failed(extract.NewFailure(extract.IOError,
					"clear stale output: %v", err))
			}
		}
	}

	// MkdirAll is create-if-absent, so concurrent workers building
	// shared parents never race each other into an error.
	if err := os.MkdirAll(job.Output, 0o755); err != nil {
		return failed(extract.NewFailure(extract.IOError,
			"create output directory: %v", err))
	}

	jctx := ctx
	if r.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jctx, cancel = context.WithTimeout(ctx, r.cfg.JobTimeout)
		defer cancel()
	}

	if err := r.svc.Extract(jctx, job.Source, job.Kind, job.Output); err != nil {
		f := extract.AsFailure(err)
		if jctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			f = extract.NewFailure(extract.IOError,
				"timed out after %s", r.cfg.JobTimeout)
		}
		return failed(f)
	}

	log.Info("extracted", "output", job.Output, "duration", time.Since(start).Round(time.Millisecond))
	return Outcome{Job: job, Status: StatusSucceeded, Duration: time.Since(start)}
}

// populated reports whether path holds prior extraction output: any
// regular file, or a directory with at least one entry. An empty
// leftover directory counts as absent.
func populated(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return true
	}
	return len(entries) > 0
}
