package intools

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Open-Cascade-SAS/OCCT-sub040/topo"
)

// Job is one edge/face pair of a batch.
type Job struct {
	Edge *topo.Edge
	Face *topo.Face
	// Range restricts the edge when non nil.
	Range *Range
	Fuzzy float64
	// QuickCoincidence enables the coincidence check before the general
	// algorithm.
	QuickCoincidence bool
}

// JobResult is the outcome of the job with the same index.
type JobResult struct {
	Done            bool
	ErrorStatus     int
	CommonParts     []CommonPrt
	MinimalDistance float64
}

// PerformAll runs the jobs on workers goroutines, each owning its EdgeFace
// and Context. workers <= 0 uses one per CPU. Cancelling ctx stops workers
// between jobs; results of jobs not run are left zero and ctx's error is
// returned.
func PerformAll(ctx context.Context, jobs []Job, workers int, logger *slog.Logger) ([]JobResult, error) {
	if logger == nil {
		logger = discardLogger
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))
	results := make([]JobResult, len(jobs))
	if workers <= 1 {
		ic := NewContext()
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			results[i] = runJob(ic, jobs[i], logger)
		}
		return results, nil
	}

	todo := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ic := NewContext()
			for i := range todo {
				results[i] = runJob(ic, jobs[i], logger)
			}
		}()
	}
	var err error
feed:
	for i := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case todo <- i:
		}
	}
	close(todo)
	wg.Wait()
	logger.Debug("edge/face batch", slog.Int("jobs", len(jobs)), slog.Int("workers", workers))
	return results, err
}

func runJob(ic *Context, job Job, logger *slog.Logger) JobResult {
	ef := NewEdgeFace(job.Edge, job.Face)
	ef.SetContext(ic)
	ef.SetFuzzyValue(job.Fuzzy)
	ef.UseQuickCoincidenceCheck(job.QuickCoincidence)
	ef.SetLogger(logger)
	if job.Range != nil {
		ef.SetRange(job.Range.First, job.Range.Last)
	}
	ef.Perform()
	return JobResult{
		Done:            ef.IsDone(),
		ErrorStatus:     ef.ErrorStatus(),
		CommonParts:     ef.CommonParts(),
		MinimalDistance: ef.MinimalDistance(),
	}
}
