package supercollider

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// GraphBuilder is the plain-Go construction API for a Graph. It tracks
// child/parent lists purely for activation-limit accounting and cycle
// detection; no channel is ever created.
//
// Build a graph by calling AddJob for every node, AddDependency for every
// producer→consumer edge, and finally Build. A GraphBuilder is single-use:
// once Build has succeeded, every further call on it returns an error.
type GraphBuilder struct {
	mu       sync.Mutex
	jobs     map[string]Job
	order    []string
	children map[string][]string
	parents  map[string][]string
	built    bool
}

// NewGraphBuilder returns an empty GraphBuilder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		jobs:     make(map[string]Job),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddJob registers job under id. Returns an error if id is empty, id was
// already registered, or Build has already been called.
func (b *GraphBuilder) AddJob(id string, job Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return &systemError{AddJob, fmt.Errorf("builder already built")}
	}
	if strings.TrimSpace(id) == "" {
		return &systemError{AddJob, fmt.Errorf("job id is empty")}
	}
	if _, exists := b.jobs[id]; exists {
		return &systemError{AddJob, fmt.Errorf("job %q already added", id)}
	}

	b.jobs[id] = job
	b.order = append(b.order, id)
	return nil
}

// AddDependency records that to depends on from: from's job must complete
// before to's job begins. Both ids must already have been registered via
// AddJob. Returns an error if either id is unknown, from == to, the edge
// already exists, or Build has already been called.
func (b *GraphBuilder) AddDependency(from, to string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return &systemError{AddDependency, fmt.Errorf("builder already built")}
	}
	if from == to {
		return &systemError{AddDependency, fmt.Errorf("%q cannot depend on itself", from)}
	}
	if _, ok := b.jobs[from]; !ok {
		return &systemError{AddDependency, fmt.Errorf("unknown job %q", from)}
	}
	if _, ok := b.jobs[to]; !ok {
		return &systemError{AddDependency, fmt.Errorf("unknown job %q", to)}
	}
	for _, existing := range b.children[from] {
		if existing == to {
			return &systemError{AddDependency, fmt.Errorf("dependency %s -> %s already exists", from, to)}
		}
	}

	b.children[from] = append(b.children[from], to)
	b.parents[to] = append(b.parents[to], from)
	return nil
}

// Build validates the accumulated jobs and dependencies and returns the
// resulting Graph. It detects cycles with a depth-first search, computes
// every node's activation limit as its in-degree, and marks every
// zero-in-degree node as initial.
//
// Once Build has succeeded, a second call returns an error. A Build that
// fails leaves the builder open, so it may be called again.
func (b *GraphBuilder) Build() (*Graph, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil, &systemError{BuildGraph, fmt.Errorf("builder already built")}
	}
	if len(b.order) == 0 {
		return nil, &systemError{BuildGraph, fmt.Errorf("no jobs added")}
	}

	if cycleID := b.detectCycle(); cycleID != "" {
		return nil, &systemError{BuildGraph, fmt.Errorf("%w: involves %q", ErrCycleDetected, cycleID)}
	}

	nodes := make(map[string]*Node, len(b.order))
	ordered := make([]*Node, 0, len(b.order))
	for _, id := range b.order {
		n := newNode(id, b.jobs[id], uint32(len(b.parents[id])))
		nodes[id] = n
		ordered = append(ordered, n)
	}

	for _, id := range b.order {
		n := nodes[id]
		for _, childID := range b.children[id] {
			n.successors = append(n.successors, nodes[childID])
		}
	}

	var initial []*Node
	for _, n := range ordered {
		if n.activationLimit == 0 {
			initial = append(initial, n)
		}
	}

	b.built = true
	return &Graph{ID: uuid.NewString(), nodes: ordered, initial: initial}, nil
}

// detectCycle returns the ID of a node involved in a cycle, or "" if the
// graph is acyclic.
func (b *GraphBuilder) detectCycle() string {
	visited := make(map[string]bool, len(b.order))
	recStack := make(map[string]bool, len(b.order))

	var cycleAt string
	var visit func(id string) bool
	visit = func(id string) bool {
		if recStack[id] {
			cycleAt = id
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		recStack[id] = true
		for _, child := range b.children[id] {
			if visit(child) {
				return true
			}
		}
		recStack[id] = false
		return false
	}

	for _, id := range b.order {
		if !visited[id] {
			if visit(id) {
				return cycleAt
			}
		}
	}
	return ""
}
