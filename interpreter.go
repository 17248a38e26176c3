package supercollider

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ryanmanchester/supercollider/debugonly"
)

// Interpreter is the runtime executor. It holds the currently-installed
// Graph (if any), the lock-free ready FIFO, the node_count atomic, the
// configured thread count, and the master/helper tick entry points
// (TickMaster / Tick).
//
// Interpreter lifetime spans many ticks; the Graph inside may be swapped
// between ticks via InstallQueue/ReleaseQueue, but never during one — mu
// guards exactly that non-hot-path swap (and the configuration fields
// alongside it). InstallQueue/ReleaseQueue must never be called while a
// tick is in progress; relying on that contract, TickMaster and Tick read
// graph and ready without taking mu at all, keeping the tick's worker
// loop free of any lock acquisition.
type Interpreter struct {
	id string

	mu                sync.RWMutex
	graph             *Graph
	ready             *readyFIFO
	threadCount       int
	usedHelperThreads int
	config            Config

	// nodeCount is the number of nodes remaining in the current tick.
	// store only from InitTick; every worker performs fetch-sub via Add.
	nodeCount atomic.Int64
}

// NewInterpreter returns an Interpreter configured by cfg. No Graph is
// installed; InitTick returns false until InstallQueue succeeds.
func NewInterpreter(cfg Config) *Interpreter {
	tc := cfg.ThreadCount
	if tc < 1 {
		tc = 1
	}
	return &Interpreter{id: uuid.NewString(), threadCount: tc, config: cfg}
}

// NewInterpreterWithOptions returns an Interpreter using DefaultConfig with
// every opt applied in order.
func NewInterpreterWithOptions(opts ...Option) *Interpreter {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewInterpreter(cfg)
}

// ID returns the Interpreter's log-correlation identifier.
func (i *Interpreter) ID() string { return i.id }

// SetThreadCount stores n clamped to at least 1. It does not resize any
// goroutine pool — that is ThreadPool's concern — it only influences
// GetUsedHelperThreads on the next InstallQueue.
func (i *Interpreter) SetThreadCount(n int) {
	if n < 1 {
		n = 1
	}
	i.mu.Lock()
	i.threadCount = n
	i.mu.Unlock()
}

// GetThreadCount returns the configured thread count.
func (i *Interpreter) GetThreadCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.threadCount
}

// HelperWakeTimeout returns the configured diagnostic wake timeout (see
// Config.HelperWakeTimeout).
func (i *Interpreter) HelperWakeTimeout() time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.config.HelperWakeTimeout
}

// GetUsedHelperThreads returns the number of helper threads the last
// InstallQueue computed this interpreter needs woken per tick. The thread
// pool collaborator reads this to size its per-tick wake-up fan-out.
func (i *Interpreter) GetUsedHelperThreads() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.usedHelperThreads
}

// InstallQueue installs g as the active Graph, returning ownership of
// whatever Graph was previously installed (nil if none). It resets every
// node's activation count, sizes the ready FIFO to at least
// max(Config.FIFOCapacity, g.TotalNodeCount()), and recomputes
// usedHelperThreads = min(threadCount, min(g.TotalNodeCount(), WorkerMax)) - 1.
//
// Must not be called while a tick is in progress.
func (i *Interpreter) InstallQueue(g *Graph) (*Graph, error) {
	if g == nil {
		return nil, &systemError{InstallQueue, fmt.Errorf("graph is nil")}
	}
	if g.TotalNodeCount() == 0 {
		return nil, &systemError{InstallQueue, fmt.Errorf("graph %s has no nodes", g.ID)}
	}

	g.ResetActivationCounts()

	i.mu.Lock()
	defer i.mu.Unlock()

	old := i.graph

	capacity := i.config.FIFOCapacity
	if g.TotalNodeCount() > capacity {
		capacity = g.TotalNodeCount()
	}
	i.ready = newReadyFIFO(capacity)
	i.graph = g

	nodeLimit := g.TotalNodeCount()
	if nodeLimit > WorkerMax {
		nodeLimit = WorkerMax
	}
	usable := i.threadCount
	if nodeLimit < usable {
		usable = nodeLimit
	}
	i.usedHelperThreads = usable - 1
	if i.usedHelperThreads < 0 {
		i.usedHelperThreads = 0
	}

	Log.WithFields(map[string]any{
		"interpreter_id":      i.id,
		"graph_id":            g.ID,
		"total_nodes":         g.TotalNodeCount(),
		"fifo_capacity":       i.ready.capacity(),
		"used_helper_threads": i.usedHelperThreads,
	}).Info("installed queue")
	debugonly.InstallBoundary(g.ID)

	return old, nil
}

// ReleaseQueue detaches the current Graph, returning ownership (nil if
// none was installed). Must not be called during a tick.
func (i *Interpreter) ReleaseQueue() *Graph {
	i.mu.Lock()
	defer i.mu.Unlock()

	old := i.graph
	i.graph = nil
	i.ready = nil
	i.usedHelperThreads = 0
	if old != nil {
		debugonly.InstallBoundary(old.ID)
	}
	return old
}

// InitTick prepares per-tick state. It returns false if no graph is
// installed or the installed graph has zero nodes — the driver should skip
// the tick and produce silence. Otherwise it stores the graph's total node
// count into node_count and enqueues every initially-runnable node.
func (i *Interpreter) InitTick() bool {
	i.mu.RLock()
	g := i.graph
	ready := i.ready
	i.mu.RUnlock()

	if g == nil || g.TotalNodeCount() == 0 {
		return false
	}

	assert(i.nodeCount.Load() == 0, "InitTick called with node_count=%d (tick not quiescent)", i.nodeCount.Load())
	assert(ready.empty(), "InitTick called with a non-empty ready FIFO")

	i.nodeCount.Store(int64(g.TotalNodeCount()))
	for _, n := range g.Initial() {
		assert(ready.push(n), "ready FIFO full enqueuing initial node %q (capacity=%d)", n.ID, ready.capacity())
	}
	return true
}

// chainResult is runNextItem's outer-loop signal, mirroring the source's
// no_remaining_items / fifo_empty / remaining_items enum.
type chainResult int

const (
	resultDone chainResult = iota
	resultFIFOEmpty
	resultRemaining
)

// runNextItem dequeues one ready node and runs its direct-successor chain
// to completion, then subtracts the chain length from node_count.
func (i *Interpreter) runNextItem(ready *readyFIFO, workerIndex int) chainResult {
	n, ok := ready.pop()
	if !ok {
		return resultFIFOEmpty
	}

	var consumed int64
	for n != nil {
		n = n.Run(ready, workerIndex)
		consumed++
	}

	newVal := i.nodeCount.Add(-consumed)
	remaining := newVal + consumed // value before this subtraction
	assert(remaining >= consumed, "node_count underflow: remaining=%d consumed=%d", remaining, consumed)

	if remaining == consumed {
		return resultDone
	}
	return resultRemaining
}

// runWorker is the two-level worker loop: the outer loop reacts to
// node_count; the inner chain (inside runNextItem) amortises
// FIFO overhead across a linear dependency run. It returns once this
// worker has either run the final node(s) of the tick or observed
// node_count reach zero from elsewhere.
func (i *Interpreter) runWorker(workerIndex int) {
	ready := i.ready // stable for the duration of the tick; see mu's doc comment.
	for {
		if i.nodeCount.Load() == 0 {
			return
		}
		if i.runNextItem(ready, workerIndex) == resultDone {
			return
		}
	}
}

// TickMaster runs the master half of a tick on worker index 0 — the audio
// driver callback thread, by convention. It returns once every node has
// run exactly once: it runs its own share of the work, then busy-waits
// for helpers to finish theirs (wait_for_end in the source; busy-waiting
// is required because sleeping the master would incur kernel wake-up
// latency larger than the tick budget).
func (i *Interpreter) TickMaster() {
	start := time.Now()

	// Unsynchronized, like runWorker's own read of i.ready: InstallQueue and
	// ReleaseQueue must not run concurrently with a tick, so graph and ready
	// are stable for the duration of this call without taking mu.
	total := 0
	if i.graph != nil {
		total = i.graph.TotalNodeCount()
	}
	ready := i.ready

	i.runWorker(0)
	for i.nodeCount.Load() != 0 {
		// busy-wait for helper threads to finish; see doc comment above.
	}
	assert(ready.empty(), "ready FIFO non-empty at tick end")

	schedMetrics.recordTick(time.Since(start), total)
}

// Tick runs the helper half of a tick for a non-zero worker index.
func (i *Interpreter) Tick(workerIndex int) {
	assert(workerIndex > 0 && workerIndex <= WorkerMax, "Tick called with invalid worker index %d", workerIndex)
	i.runWorker(workerIndex)
}
