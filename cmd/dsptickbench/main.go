// Command dsptickbench drives an Interpreter through a fixed number of
// back-to-back ticks over a synthetic wide fan-out graph, reporting
// per-tick latency statistics. It is the load-testing analogue of the
// teacher's cli/main.go HeavyDag driver, ported from a channel-heavy CPU
// simulation to repeated Tick calls over a stable installed graph.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/ryanmanchester/supercollider"
)

// busyJob simulates a bounded amount of per-node CPU work — a stand-in for
// a real audio unit generator's per-tick DSP kernel.
type busyJob struct{ iterations int }

func (j busyJob) Run(_ int) {
	sum := 0
	for k := 0; k < j.iterations; k++ {
		sum += k*k + k%3
	}
	_ = sum
}

func buildFanOutGraph(width, iterations int) (*supercollider.Graph, error) {
	b := supercollider.NewGraphBuilder()
	if err := b.AddJob("source", busyJob{iterations}); err != nil {
		return nil, err
	}
	if err := b.AddJob("sink", busyJob{iterations}); err != nil {
		return nil, err
	}
	for k := 0; k < width; k++ {
		id := fmt.Sprintf("voice-%d", k)
		if err := b.AddJob(id, busyJob{iterations}); err != nil {
			return nil, err
		}
		if err := b.AddDependency("source", id); err != nil {
			return nil, err
		}
		if err := b.AddDependency(id, "sink"); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func main() {
	width := flag.Int("width", 64, "number of parallel voice nodes between source and sink")
	iterations := flag.Int("iterations", 2000, "busy-work iterations per node")
	threads := flag.Int("threads", 4, "interpreter thread count (master + helpers)")
	ticks := flag.Int("ticks", 1000, "number of back-to-back ticks to run")
	flag.Parse()

	graph, err := buildFanOutGraph(*width, *iterations)
	if err != nil {
		panic(fmt.Sprintf("buildFanOutGraph failed: %v", err))
	}

	interp := supercollider.NewInterpreterWithOptions(
		supercollider.WithThreadCount(*threads),
		supercollider.WithFIFOCapacity(*width + 2),
	)
	if _, err := interp.InstallQueue(graph); err != nil {
		panic(fmt.Sprintf("InstallQueue failed: %v", err))
	}

	pool := supercollider.NewThreadPool(interp, interp.GetUsedHelperThreads())
	defer pool.Close()

	var worst time.Duration
	start := time.Now()
	for t := 0; t < *ticks; t++ {
		tickStart := time.Now()
		if !pool.RunTick() {
			panic("RunTick reported an empty tick on a non-empty graph")
		}
		if d := time.Since(tickStart); d > worst {
			worst = d
		}
	}
	total := time.Since(start)

	fmt.Printf("ran %d ticks over %d nodes (width=%d) using %d threads\n",
		*ticks, graph.TotalNodeCount(), *width, *threads)
	fmt.Printf("total: %v  average: %v  worst: %v\n", total, total/time.Duration(*ticks), worst)
}
