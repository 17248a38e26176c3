package supercollider

import "sync/atomic"

// Node is one vertex of a DAG installed into an Interpreter, corresponding
// to the source's dsp_thread_queue_item.
//
// A Node must always be handled as a pointer; copying a Node is forbidden
// because it embeds atomic.Uint32. Node is built once by GraphBuilder and
// is immutable thereafter except for ActivationCount, which every tick
// mutates via atomic fetch-sub and resets via atomic store.
type Node struct {
	// ID is the node's builder-assigned identifier. Not consulted by Run;
	// useful for logging and for GraphBuilder's own bookkeeping.
	ID string

	job Job

	// successors is the ordered, owning-by-Graph list of downstream nodes.
	// Immutable after GraphBuilder.Build.
	successors []*Node

	// activationLimit is the node's in-degree. Immutable after Build.
	activationLimit uint32

	// activationCount is the remaining number of predecessors yet to
	// complete. Initialized to activationLimit; decremented by one atomic
	// fetch-sub per completed predecessor; reset to activationLimit the
	// instant the node finishes running (or at install time).
	activationCount atomic.Uint32
}

// newNode constructs a Node with the given job and activation limit. It is
// called only by GraphBuilder.Build, after every edge has been counted.
func newNode(id string, job Job, activationLimit uint32) *Node {
	n := &Node{ID: id, job: job, activationLimit: activationLimit}
	n.activationCount.Store(activationLimit)
	return n
}

// ActivationLimit returns the node's in-degree (the activation count's
// reset value).
func (n *Node) ActivationLimit() uint32 { return n.activationLimit }

// ActivationCount returns the node's current activation count. Intended
// for tests and diagnostics; not part of the hot-path contract.
func (n *Node) ActivationCount() uint32 { return n.activationCount.Load() }

// ResetActivationCount stores activationLimit into activationCount with
// release ordering. Called by Graph.ResetActivationCounts at install time
// for nodes that may have been left mid-state by a torn-down tick, and by
// Run on this same node immediately after it executes.
func (n *Node) ResetActivationCount() {
	n.activationCount.Store(n.activationLimit)
}

// Run invokes the node's job with workerIndex, then decrements every
// successor's activation count by one. The precondition is
// ActivationCount() == 0; violating it is a fatal programming error, not a
// recoverable condition.
//
// The first successor whose activation count reaches zero is returned as
// next — the direct-successor chain hand-off: the caller is expected to
// Run it immediately, without a FIFO round trip. Every further
// newly-ready successor is instead pushed onto ready. Before returning,
// the node resets its own activation count back to activationLimit so it
// is ready for the next tick.
func (n *Node) Run(ready *readyFIFO, workerIndex int) (next *Node) {
	assert(n.activationCount.Load() == 0, "node %q run with activation count %d", n.ID, n.activationCount.Load())

	if n.job != nil {
		n.job.Run(workerIndex)
	}

	for _, succ := range n.successors {
		// fetch-sub returns the value before the subtraction; "previous ==
		// 1" is this decrement's "I reached zero" check, matching the
		// source's dec_ref_count.
		prev := succ.activationCount.Add(^uint32(0)) + 1
		assert(prev > 0, "successor %q over-decremented", succ.ID)
		if prev == 1 {
			if next == nil {
				next = succ
			} else {
				assert(ready.push(succ), "ready FIFO full enqueuing successor %q (capacity=%d)", succ.ID, ready.capacity())
			}
		}
	}

	n.ResetActivationCount()
	return next
}
