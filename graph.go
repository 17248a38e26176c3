package supercollider

// Graph is the immutable-per-tick container for one DAG installation
// cycle, corresponding to the source's dsp_thread_queue. A Graph is built
// once by GraphBuilder, handed to an Interpreter via InstallQueue, and
// discarded when replaced or released. It is never mutated after Build
// returns it, except by ResetActivationCounts, which InstallQueue calls
// exactly once per installation.
type Graph struct {
	// ID identifies this Graph for log correlation.
	ID string

	// nodes is the owning, ordered list of every node in the graph. Graph
	// exclusively owns every Node; a Node never outlives its Graph.
	nodes []*Node

	// initial is the ordered, non-owning list of every node with
	// activationLimit == 0 — the nodes seeded into the ready FIFO at the
	// start of each tick.
	initial []*Node
}

// TotalNodeCount returns the number of nodes in the graph.
func (g *Graph) TotalNodeCount() int { return len(g.nodes) }

// Nodes returns the graph's owning node list. Callers must not mutate the
// returned slice or its elements outside of a tick's Run protocol.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Initial returns the graph's initially-runnable node list (every node
// with in-degree zero).
func (g *Graph) Initial() []*Node { return g.initial }

// ResetActivationCounts invokes ResetActivationCount on every node in the
// graph. Called once by InstallQueue, between ticks — never during one.
func (g *Graph) ResetActivationCounts() {
	for _, n := range g.nodes {
		n.ResetActivationCount()
	}
}
