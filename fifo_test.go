package supercollider

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestReadyFIFO_PushPopOrder(t *testing.T) {
	r := newReadyFIFO(4)
	a := &Node{ID: "a"}
	b := &Node{ID: "b"}
	c := &Node{ID: "c"}

	for _, n := range []*Node{a, b, c} {
		if !r.push(n) {
			t.Fatalf("push(%s) failed on a non-full ring", n.ID)
		}
	}

	for i, want := range []*Node{a, b, c} {
		got, ok := r.pop()
		if !ok {
			t.Fatalf("pop failed while %d items remained", 3-i)
		}
		if got != want {
			t.Fatalf("pop order broken: got %q, want %q", got.ID, want.ID)
		}
	}

	if _, ok := r.pop(); ok {
		t.Fatal("pop succeeded on an empty ring")
	}
}

func TestReadyFIFO_CapacityRoundsUpToPowerOfTwo(t *testing.T) {
	r := newReadyFIFO(5)
	if got := r.capacity(); got != 8 {
		t.Fatalf("capacity = %d, want 8", got)
	}
}

func TestReadyFIFO_PushFailsWhenFull(t *testing.T) {
	r := newReadyFIFO(2) // rounds to 2
	if !r.push(&Node{ID: "x"}) {
		t.Fatal("first push failed")
	}
	if !r.push(&Node{ID: "y"}) {
		t.Fatal("second push failed")
	}
	if r.push(&Node{ID: "z"}) {
		t.Fatal("push succeeded on a full ring")
	}
}

// TestReadyFIFO_ConcurrentPushPop exercises the MPMC contention path: many
// producers and consumers hammering the same ring simultaneously. Every
// pushed node must be popped exactly once.
func TestReadyFIFO_ConcurrentPushPop(t *testing.T) {
	const total = 4096
	r := newReadyFIFO(64)

	nodes := make([]*Node, total)
	for i := range nodes {
		nodes[i] = &Node{ID: "n"}
	}

	var wg sync.WaitGroup
	feed := make(chan *Node, total)
	for _, n := range nodes {
		feed <- n
	}
	close(feed)

	const producers = 8
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for n := range feed {
				for !r.push(n) {
					// ring momentarily full under contention; retry.
				}
			}
		}()
	}

	var popped atomic.Int64
	const consumers = 8
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
			for popped.Load() < total {
				if _, ok := r.pop(); ok {
					popped.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	cwg.Wait()

	if got := popped.Load(); got != total {
		t.Fatalf("popped %d nodes, want %d", got, total)
	}
}
