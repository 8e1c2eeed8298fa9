package internal

import (
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 8

// Batch runs the processor over every image under a root directory.
type Batch struct {
	Workers    int
	Extensions []string
	Writers    WriterSet
	DryRun     bool
	JournalDir string
	Reporter   Reporter
	Logger     *Logger
}

// NewBatch builds a Batch from configuration.
func NewBatch(cfg *Config, writers WriterSet, rep Reporter, logger *Logger) *Batch {
	return &Batch{
		Workers:    cfg.Workers,
		Extensions: cfg.ImageExt,
		Writers:    writers,
		DryRun:     cfg.DryRun,
		JournalDir: cfg.JournalDir,
		Reporter:   rep,
		Logger:     logger,
	}
}

// Run processes root. The only error is an invalid root or a failed scan;
// per-file failures are part of the Summary.
func (b *Batch) Run(root string) (*Summary, error) {
	abs, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	exts := b.Extensions
	if len(exts) == 0 {
		exts = DefaultImageExtensions
	}
	files, err := ScanImageFiles(abs, exts, b.Logger)
	if err != nil {
		return nil, err
	}
	b.Logger.Info("found %d image files under %s", len(files), abs)

	var session *RunSession
	if b.JournalDir != "" {
		session, err = NewRunSession(b.JournalDir, abs)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		b.Logger.Info("journal: %s", session.SessionDir)
	}

	proc := NewProcessor(abs, b.Writers, b.DryRun)
	return b.ProcessAll(proc, files, session), nil
}

// ProcessAll fans files out over the worker pool and folds results in
// completion order. session may be nil.
func (b *Batch) ProcessAll(proc *Processor, files []string, session *RunSession) *Summary {
	workers := b.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	started := time.Now()
	summary := newSummary(proc.Root, len(files))

	if b.Reporter != nil {
		b.Reporter.OnStart(len(files), workers)
	}
	if session != nil {
		if err := session.LogSessionStart(len(files), workers, b.DryRun); err != nil {
			b.Logger.Warn("journal: %v", err)
		}
	}

	results := make(chan Result, workers)
	go func() {
		p := pool.New().WithMaxGoroutines(workers)
		for _, path := range files {
			path := path
			p.Go(func() {
				results <- safeProcess(proc, path)
			})
		}
		p.Wait()
		close(results)
	}()

	index := 0
	for res := range results {
		index++
		summary.add(res)
		b.Logger.Debug("%s: %s (%s)", res.RelPath, res.Outcome, res.Convention)
		if b.Reporter != nil {
			b.Reporter.OnResult(index, len(files), res)
		}
		if session != nil {
			if err := session.LogResult(res); err != nil {
				b.Logger.Warn("journal: %v", err)
			}
		}
	}

	summary.Duration = time.Since(started)
	if session != nil {
		if err := session.LogSessionEnd(summary); err != nil {
			b.Logger.Warn("journal: %v", err)
		}
	}
	if b.Reporter != nil {
		b.Reporter.OnFinish(summary)
	}
	return summary
}

// safeProcess converts a panic escaping the processor into a failure for
// that file so the rest of the pool keeps running.
func safeProcess(proc *Processor, path string) (res Result) {
	var pc panics.Catcher
	pc.Try(func() {
		res = proc.Process(path)
	})
	if rec := pc.Recovered(); rec != nil {
		return Result{
			Path:    path,
			RelPath: proc.relPath(path),
			Outcome: OutcomeWorkerFailed,
			Err:     rec.AsError(),
		}
	}
	return res
}
