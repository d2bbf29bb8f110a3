package jscompat

import (
	"context"
	"runtime"
	"sync"

	"github.com/jward/jscompat/internal/report"
	"github.com/jward/jscompat/internal/source"
)

// BatchResult is one slot of an AnalyzeBatch result. Exactly one of Report
// and Err is set.
type BatchResult struct {
	Ref    string
	Report *report.Report
	Err    error
}

// loadedUnit hands a fetched byte buffer from the I/O stage to the CPU
// pool, tagged with its input position.
type loadedUnit struct {
	idx  int
	unit *source.Unit
	err  error
}

// AnalyzeBatch analyzes the given refs and returns results in input order,
// regardless of completion order. Loads run as asynchronous I/O in their
// own goroutines and hand buffers to a bounded CPU worker pool over a
// channel, so waiting on the network never occupies a worker. One unit's
// failure (load, timeout, or parse) is recorded in its slot and never
// aborts siblings.
func (e *Engine) AnalyzeBatch(ctx context.Context, refs []string, opts Options) []BatchResult {
	results := make([]BatchResult, len(refs))
	for i, ref := range refs {
		results[i].Ref = ref
	}
	if len(refs) == 0 {
		return results
	}

	// ---- I/O stage: one goroutine per load, independently timed out ----
	loaded := make(chan loadedUnit, len(refs))
	var loadWG sync.WaitGroup
	for i, ref := range refs {
		loadWG.Add(1)
		go func(idx int, ref string) {
			defer loadWG.Done()
			loadCtx, cancel := e.unitContext(ctx)
			defer cancel()
			unit, err := e.loader.Load(loadCtx, ref)
			loaded <- loadedUnit{idx: idx, unit: unit, err: err}
		}(i, ref)
	}
	go func() {
		loadWG.Wait()
		close(loaded)
	}()

	// ---- CPU stage: bounded worker pool, results into indexed slots ----
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lu := range loaded {
				if lu.err != nil {
					results[lu.idx].Err = lu.err
					continue
				}
				unitCtx, cancel := e.unitContext(ctx)
				rep, err := e.Analyze(unitCtx, lu.unit, opts)
				cancel()
				results[lu.idx].Report = rep
				results[lu.idx].Err = err
			}
		}()
	}
	wg.Wait()

	return results
}

// unitContext derives a per-unit context, applying the engine's unit
// timeout when configured.
func (e *Engine) unitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.unitTimeout > 0 {
		return context.WithTimeout(ctx, e.unitTimeout)
	}
	return context.WithCancel(ctx)
}
