package order

import (
	"fmt"
	"slices"
	"sync"
)

// Graph is a collection of nodes and their dependencies, representing a DAG.
// Unlike a plain adjacency map it keeps each node's dependencies in the order
// they were added, which makes walks deterministic. All operations on the
// graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// ids keeps insertion order.
	ids []string
}

type node struct {
	id string
	// deps holds the nodes this node depends on, in declaration order.
	deps []*node
	// depSet mirrors deps for duplicate checks.
	depSet map[string]struct{}
	// dependents holds the set of nodes that depend on this node.
	dependents map[string]*node
}

// NewGraph creates and returns an initialized, empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		depSet:     make(map[string]struct{}),
		dependents: make(map[string]*node),
	}
	g.ids = append(g.ids, id)
}

// Has reports whether the node exists.
func (g *Graph) Has(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. Adding the same
// edge twice is a no-op. An error is returned if either node does not exist
// or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, dup := toNode.depSet[fromID]; dup {
		return nil
	}
	toNode.depSet[fromID] = struct{}{}
	toNode.deps = append(toNode.deps, fromNode)
	fromNode.dependents[toID] = toNode

	return nil
}

// Dependencies returns the IDs the given node depends on, in the order the
// edges were added.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	deps := make([]string, 0, len(n.deps))
	for _, dep := range n.deps {
		deps = append(deps, dep.id)
	}
	return deps, nil
}

// Dependents returns the sorted IDs of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	dependents := make([]string, 0, len(n.dependents))
	for depID := range n.dependents {
		dependents = append(dependents, depID)
	}
	slices.Sort(dependents)
	return dependents, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, indicating the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search: permanent nodes are fully explored, the
	// temporary ones are on the current recursion stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true
		for _, dep := range n.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	for _, id := range g.ids {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}

	return nil
}

// PostOrder returns every node reachable from roots with dependencies
// listed before their dependents. Roots are walked in the given order and
// each node appears once. The graph must be acyclic.
func (g *Graph) PostOrder(roots ...string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]bool)
	var out []string

	var visit func(n *node)
	visit = func(n *node) {
		if seen[n.id] {
			return
		}
		seen[n.id] = true
		for _, dep := range n.deps {
			visit(dep)
		}
		out = append(out, n.id)
	}

	for _, id := range roots {
		if n, ok := g.nodes[id]; ok {
			visit(n)
		}
	}
	return out
}
