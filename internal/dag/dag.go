// SPDX-License-Identifier: MPL-2.0

// Package dag orders the scripts of a package by their runpath references.
//
// Nodes are kept in insertion order so every traversal is deterministic. An
// edge A -> B reads "A runs B". kOS allows runpath cycles, so a cycle is a
// finding to report, not a build failure.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is wrapped by CycleError.
var ErrCycle = errors.New("cycle detected")

type (
	// CycleError lists the nodes left over after every acyclic node was
	// ordered: the members of at least one cycle plus anything only reachable
	// through one.
	CycleError struct {
		Cycle []string
	}

	// Graph is an insertion-ordered directed graph.
	Graph struct {
		adjacency map[string][]string
		nodes     []string
		nodeSet   map[string]bool
	}
)

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds name. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds from -> to, adding missing nodes. Repeated edges are kept once.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.adjacency[from], to) {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// HasNode reports whether name is in the graph.
func (g *Graph) HasNode(name string) bool {
	return g.nodeSet[name]
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Successors returns the targets of name's edges in insertion order.
func (g *Graph) Successors(name string) []string {
	return slices.Clone(g.adjacency[name])
}

// Roots returns the nodes nothing points at, in insertion order.
func (g *Graph) Roots() []string {
	in := g.inDegrees()
	var roots []string
	for _, node := range g.nodes {
		if in[node] == 0 {
			roots = append(roots, node)
		}
	}
	return roots
}

// TopologicalSort orders the nodes with Kahn's algorithm so every node comes
// before the nodes it points at. Nodes of the same depth keep insertion
// order. A cyclic graph returns a *CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	in := g.inDegrees()
	queue := g.Roots()

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, next := range g.adjacency[node] {
			in[next]--
			if in[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var rest []string
		for _, node := range g.nodes {
			if in[node] > 0 {
				rest = append(rest, node)
			}
		}
		return result, &CycleError{Cycle: rest}
	}
	return result, nil
}

func (g *Graph) inDegrees() map[string]int {
	in := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		in[node] = 0
	}
	for _, targets := range g.adjacency {
		for _, to := range targets {
			in[to]++
		}
	}
	return in
}
