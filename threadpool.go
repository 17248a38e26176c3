package supercollider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ThreadPool is a pre-spawned pool of helper goroutines that call an
// Interpreter's Tick once per wake-up — the audio-thread analogue of a
// worker pool, using a tick-synchronized wake/drain model: helpers are
// spawned exactly once at NewThreadPool and parked on a semaphore between
// ticks, never created or destroyed per tick.
//
// RunTick must never allocate on the hot path: the semaphore release/
// acquire pair and the WaitGroup are the only synchronization primitives
// touched per tick (the helpers still block waiting for the next tick;
// they never block on anything the DAG's dependency structure could
// stall on).
type ThreadPool struct {
	interp      *Interpreter
	helperCount int

	wake       *semaphore.Weighted
	wg         sync.WaitGroup
	tickDone   sync.WaitGroup
	ticksRun   atomic.Uint64

	closeOnce sync.Once
	closed    chan struct{}
}

// ThreadPoolStats is a point-in-time snapshot returned by Stats, for
// diagnostics only — never consulted by RunTick itself.
type ThreadPoolStats struct {
	HelperCount int
	TicksRun    uint64
}

// Stats returns a snapshot of the pool's configuration and activity.
func (p *ThreadPool) Stats() ThreadPoolStats {
	return ThreadPoolStats{
		HelperCount: p.helperCount,
		TicksRun:    p.ticksRun.Load(),
	}
}

// NewThreadPool spawns helperCount goroutines, each parked waiting for a
// wake-up to call interp.Tick with its 1-based worker index. Call
// RunTick once per audio tick from the driver thread; call Close exactly
// once when the pool is no longer needed.
func NewThreadPool(interp *Interpreter, helperCount int) *ThreadPool {
	if helperCount < 0 {
		helperCount = 0
	}

	p := &ThreadPool{
		interp:      interp,
		helperCount: helperCount,
		wake:        semaphore.NewWeighted(int64(max(helperCount, 1))),
		closed:      make(chan struct{}),
	}

	// semaphore.Weighted starts with its full weight available, not held.
	// Pre-acquire it here, on the constructing goroutine, before any helper
	// exists to race against — otherwise a helper's first Acquire and this
	// goroutine's return to the caller are unordered, and a RunTick that
	// runs before any helper reaches its Acquire would Release weight that
	// was never held, which panics.
	if helperCount > 0 {
		if err := p.wake.Acquire(context.Background(), int64(helperCount)); err != nil {
			panic(fmt.Sprintf("supercollider: pre-acquiring thread pool semaphore: %v", err))
		}
	}

	for w := 1; w <= helperCount; w++ {
		workerIndex := w
		p.wg.Add(1)
		go p.runHelper(workerIndex)
	}

	return p
}

func (p *ThreadPool) runHelper(workerIndex int) {
	defer p.wg.Done()
	for {
		if err := p.wake.Acquire(context.Background(), 1); err != nil {
			return
		}
		select {
		case <-p.closed:
			return
		default:
		}
		p.interp.Tick(workerIndex)
		p.tickDone.Done()
	}
}

// RunTick wakes interp's used helper threads (via a single Release of their
// combined weight), runs the master half on the calling goroutine, then
// waits until every woken helper's Tick has returned. By then every node
// installed in interp has run exactly once. It calls interp.InitTick
// internally; RunTick returns false without running anything if InitTick
// reports an empty tick.
func (p *ThreadPool) RunTick() bool {
	if !p.interp.InitTick() {
		return false
	}

	start := time.Now()
	if helpers := p.interp.GetUsedHelperThreads(); helpers > 0 {
		p.tickDone.Add(helpers)
		p.wake.Release(int64(helpers))
	}
	p.interp.TickMaster()
	p.tickDone.Wait()
	p.ticksRun.Add(1)

	if timeout := p.interp.HelperWakeTimeout(); timeout > 0 {
		if elapsed := time.Since(start); elapsed > timeout {
			Log.WithFields(map[string]any{
				"interpreter": p.interp.ID(),
				"elapsed":     elapsed,
				"timeout":     timeout,
			}).Warn("tick exceeded helper wake timeout")
		}
	}
	return true
}

// Close signals every helper to exit after its current wake-up and blocks
// until all have returned, using an errgroup to fan the shutdown signal
// out uniformly even if a helper is mid-Acquire. Safe to call more than
// once; only the first call performs the shutdown.
func (p *ThreadPool) Close() error {
	var g errgroup.Group
	p.closeOnce.Do(func() {
		close(p.closed)
		g.Go(func() error {
			// wake every parked helper so each observes closed and returns
			// instead of calling Tick.
			if p.helperCount > 0 {
				p.wake.Release(int64(p.helperCount))
			}
			p.wg.Wait()
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("supercollider: closing thread pool: %w", err)
	}
	return nil
}
