package sweep

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// Pool runs many sweep Tasks concurrently, one goroutine per worker, each
// against its own Ensemble (a single Ensemble's evaluator is strictly
// single-threaded, so parallelism here is across independent Ensembles
// rather than within one). Progress is reported the same way the teacher's
// search worker pool does: periodic fmt.Printf lines gated by RunAll's
// verbose argument, no logging framework.
type Pool struct {
	NumWorkers int

	mu         sync.Mutex
	mismatches []Mismatch
	checked    atomic.Int64
	failed     atomic.Int64
	completed  atomic.Int64
}

// NewPool returns a pool with numWorkers goroutines (runtime.NumCPU() if
// numWorkers <= 0).
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers}
}

// Stats returns the number of tasks checked and the number that produced at
// least one mismatch so far.
func (p *Pool) Stats() (checked, failed int64) {
	return p.checked.Load(), p.failed.Load()
}

// Mismatches returns every mismatch recorded across every task run so far.
func (p *Pool) Mismatches() []Mismatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Mismatch, len(p.mismatches))
	copy(out, p.mismatches)
	return out
}

// RunAll distributes tasks across the pool's workers, building a fresh
// Ensemble for each task via newEnsemble, and returns the first error any
// worker's Run call hit (evaluation failures abort that task, not the whole
// pool).
func (p *Pool) RunAll(tasks []Task, newEnsemble func(t Task) *ensemble.Ensemble, verbose bool) error {
	total := int64(len(tasks))
	ch := make(chan Task, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	done := make(chan struct{})
	start := time.Now()
	if verbose {
		go p.reportProgress(total, start, done)
	}

	errs := make(chan error, p.NumWorkers)
	var wg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range ch {
				e := newEnsemble(t)
				mm, err := Run(e, t)
				p.checked.Add(1)
				p.completed.Add(1)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				if len(mm) > 0 {
					p.failed.Add(1)
					p.mu.Lock()
					p.mismatches = append(p.mismatches, mm...)
					p.mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	close(done)

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func (p *Pool) reportProgress(total int64, start time.Time, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			comp := p.completed.Load()
			checked := p.checked.Load()
			failed := p.failed.Load()
			elapsed := time.Since(start)
			pct := float64(comp) / float64(total) * 100
			fmt.Printf("  [%s] %d/%d tasks (%.1f%%) | %d checked | %d failed\n",
				elapsed.Round(time.Second), comp, total, pct, checked, failed)
		}
	}
}
