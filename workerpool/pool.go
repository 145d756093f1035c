// Package workerpool implements a parallel SDF oracle pool: N workers,
// each holding an independent SDF oracle, a main-thread dispatcher with
// an idle-worker stack and an overflow task FIFO. It is used by
// bulk/offline glyph generation, not by the Font Atlas's on-demand
// deferred batch, which stays single-threaded.
//
// The channel-per-worker, WaitGroup-based lifecycle is a common Go
// worker-pool shape; the dispatch discipline here departs from a plain
// round-robin or work-stealing pool on purpose: an idle-worker stack plus
// an overflow FIFO gives each worker strict per-task FIFO order, and
// batch results are always collected in input order regardless of which
// task happens to finish first — a guarantee round-robin/work-stealing
// pools don't make.
package workerpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/fontatlas/internal/logging"
	"github.com/gogpu/fontatlas/oracle"
)

// Kind selects which oracle method a task invokes.
type Kind int

const (
	KindSDF Kind = iota
	KindMTSDF
	KindMTSDFVar
)

// ErrPoolDisposed is returned by any call made after Dispose.
var ErrPoolDisposed = errors.New("workerpool: pool is disposed")

// WorkerInitFailureError reports that a worker's init-time LoadFont call
// failed.
type WorkerInitFailureError struct {
	WorkerID int
	Err      error
}

func (e *WorkerInitFailureError) Error() string {
	return fmt.Sprintf("workerpool: worker %d failed to initialize: %v", e.WorkerID, e.Err)
}

func (e *WorkerInitFailureError) Unwrap() error { return e.Err }

type task struct {
	cp         rune
	fontSize   int
	pixelRange float64
	kind       Kind
	resultCh   chan taskResult
}

type taskResult struct {
	result *oracle.Result
	err    error
}

type worker struct {
	id     int
	oracle oracle.SDFOracle
	inbox  chan *task
}

// Pool dispatches generation tasks across N workers, each with its own
// oracle.SDFOracle, using an idle-stack/overflow-FIFO protocol.
type Pool struct {
	workers []*worker

	mu       sync.Mutex
	idle     []int
	overflow []*task

	disposed atomic.Bool
	wg       sync.WaitGroup
}

// New spawns numWorkers workers, each built by factory and initialized
// with fontBytes via LoadFont. New blocks until every worker's init
// completes (the pool's ready gate) and returns a
// *WorkerInitFailureError if any worker's LoadFont call errors.
func New(numWorkers int, factory func() oracle.SDFOracle, fontBytes []byte) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("workerpool: numWorkers must be positive, got %d", numWorkers)
	}

	p := &Pool{
		workers: make([]*worker, numWorkers),
		idle:    make([]int, 0, numWorkers),
	}

	type initResult struct {
		id  int
		err error
	}
	results := make(chan initResult, numWorkers)

	for i := 0; i < numWorkers; i++ {
		w := &worker{id: i, oracle: factory(), inbox: make(chan *task, 4)}
		p.workers[i] = w
		go func(w *worker) {
			err := w.oracle.LoadFont(fontBytes)
			results <- initResult{id: w.id, err: err}
		}(w)
	}

	var firstErr error
	for i := 0; i < numWorkers; i++ {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = &WorkerInitFailureError{WorkerID: r.id, Err: r.err}
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	for i := 0; i < numWorkers; i++ {
		p.idle = append(p.idle, i)
		p.wg.Add(1)
		go p.runWorker(p.workers[i])
	}

	logging.Get().Debug("workerpool: ready", slog.Int("numWorkers", numWorkers))
	return p, nil
}

func (p *Pool) runWorker(w *worker) {
	defer p.wg.Done()
	for t := range w.inbox {
		res, err := p.execute(w, t)
		t.resultCh <- taskResult{result: res, err: err}
		close(t.resultCh)
		p.finishTask(w)
	}
}

func (p *Pool) execute(w *worker, t *task) (*oracle.Result, error) {
	switch t.kind {
	case KindMTSDF:
		return w.oracle.GenerateMTSDF(t.cp, t.fontSize, t.pixelRange)
	case KindMTSDFVar:
		return w.oracle.GenerateMTSDFVar(t.cp, t.fontSize, t.pixelRange)
	default:
		return w.oracle.Generate(t.cp, t.fontSize, t.pixelRange)
	}
}

// finishTask returns w to the idle stack, or immediately dispatches the
// next overflow task to it if one is waiting. A worker whose task failed
// is still idle-eligible: only the failing task's result is rejected,
// the worker itself is never dropped (see DESIGN.md).
func (p *Pool) finishTask(w *worker) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.overflow) > 0 {
		next := p.overflow[0]
		p.overflow = p.overflow[1:]
		w.inbox <- next
		return
	}
	p.idle = append(p.idle, w.id)
}

// GenerateGlyph dispatches one generation task, popping an idle worker
// if one is available or queuing onto the overflow FIFO otherwise, and
// blocks until that worker (or a later one, if it was queued) produces
// a result.
func (p *Pool) GenerateGlyph(cp rune, fontSize int, pixelRange float64, kind Kind) (*oracle.Result, error) {
	if p.disposed.Load() {
		return nil, ErrPoolDisposed
	}

	t := &task{cp: cp, fontSize: fontSize, pixelRange: pixelRange, kind: kind, resultCh: make(chan taskResult, 1)}

	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		id := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		p.workers[id].inbox <- t
	} else {
		p.overflow = append(p.overflow, t)
		p.mu.Unlock()
	}

	r := <-t.resultCh
	return r.result, r.err
}

// GenerateBatch dispatches every element of chars via GenerateGlyph and
// returns their results in input order regardless of which worker or
// what order execution completes.
func (p *Pool) GenerateBatch(chars []rune, fontSize int, pixelRange float64, kind Kind) ([]*oracle.Result, error) {
	type indexed struct {
		idx    int
		result *oracle.Result
		err    error
	}

	out := make([]*oracle.Result, len(chars))
	var firstErr error

	resultsCh := make(chan indexed, len(chars))
	var wg sync.WaitGroup
	for i, cp := range chars {
		wg.Add(1)
		go func(i int, cp rune) {
			defer wg.Done()
			res, err := p.GenerateGlyph(cp, fontSize, pixelRange, kind)
			resultsCh <- indexed{idx: i, result: res, err: err}
		}(i, cp)
	}
	wg.Wait()
	close(resultsCh)

	for r := range resultsCh {
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		out[r.idx] = r.result
	}
	return out, firstErr
}

// Dispose tears down every worker. The pool is unusable afterwards;
// Dispose does not wait for outstanding GenerateGlyph calls beyond
// letting their current task finish.
func (p *Pool) Dispose() {
	if !p.disposed.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		close(w.inbox)
	}
	p.wg.Wait()
	logging.Get().Debug("workerpool: disposed")
}
