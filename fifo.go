package supercollider

import "sync/atomic"

// readyFIFO is a fixed-capacity, multi-producer/multi-consumer, lock-free
// ring buffer of *Node.
//
// The algorithm is a sequence-numbered bounded ring generalized from
// single-producer/single-consumer to multi-producer/multi-consumer by
// CAS-ing the producer/consumer cursor before touching a slot. Every slot's
// sequence number marks which cursor generation may touch it, so producers
// and consumers never contend on the same memory location for more than a
// single CAS.
//
// push and pop never allocate and never block: a full ring fails push, an
// empty ring fails pop, and the caller (the worker loop in interpreter.go)
// treats an empty ring as "no ready work right now," not an error.
type readyFIFO struct {
	mask uint64
	buf  []ringSlot
	head atomic.Uint64 // consumer cursor
	tail atomic.Uint64 // producer cursor
}

type ringSlot struct {
	seq  atomic.Uint64
	node *Node
}

// newReadyFIFO returns an empty ring sized to the next power of two that
// is at least capacity (minimum 1). Sizing is an install-time concern
// (Interpreter.InstallQueue) — never performed during a tick.
func newReadyFIFO(capacity int) *readyFIFO {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}

	r := &readyFIFO{
		mask: uint64(size - 1),
		buf:  make([]ringSlot, size),
	}
	for i := range r.buf {
		r.buf[i].seq.Store(uint64(i))
	}
	return r
}

func (r *readyFIFO) capacity() int { return len(r.buf) }

// push enqueues n. It returns false if the ring is full — InstallQueue
// sizes the ring so this never happens for a correctly
// installed graph (see DESIGN.md's Open Question decision), but push
// reports the condition rather than panicking because a full ring is a
// caller sizing mistake, not a torn invariant.
func (r *readyFIFO) push(n *Node) bool {
	for {
		tail := r.tail.Load()
		slot := &r.buf[tail&r.mask]
		seq := slot.seq.Load()

		switch diff := int64(seq) - int64(tail); {
		case diff == 0:
			if r.tail.CompareAndSwap(tail, tail+1) {
				slot.node = n
				slot.seq.Store(tail + 1)
				return true
			}
		case diff < 0:
			return false // ring full
		default:
			// another producer has already advanced tail; reload and retry.
		}
	}
}

// pop dequeues the oldest ready Node, or returns (nil, false) if the ring
// is currently empty.
func (r *readyFIFO) pop() (*Node, bool) {
	for {
		head := r.head.Load()
		slot := &r.buf[head&r.mask]
		seq := slot.seq.Load()

		switch diff := int64(seq) - int64(head+1); {
		case diff == 0:
			if r.head.CompareAndSwap(head, head+1) {
				n := slot.node
				slot.node = nil
				slot.seq.Store(head + uint64(len(r.buf)))
				return n, true
			}
		case diff < 0:
			return nil, false // ring empty
		default:
			// another consumer has already advanced head; reload and retry.
		}
	}
}

// empty reports whether the ring currently holds no ready nodes. It is a
// momentary snapshot, used only by tests and by the InitTick and
// TickMaster assertions — never by the worker loop itself, which relies on pop's
// success/failure instead.
func (r *readyFIFO) empty() bool {
	return r.tail.Load() == r.head.Load()
}
