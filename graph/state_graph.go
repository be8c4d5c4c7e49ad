//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"fmt"
)

// StateGraph builds a Graph programmatically. Components use it to
// assemble their internal graphs; declarative configs go through
// GraphBuilder instead. Methods return the receiver for chaining and
// defer all validation to Compile.
type StateGraph struct {
	name       string
	schema     *StateSchema
	nodes      []*Node
	edges      []*Edge
	entryPoint string
}

// NewStateGraph creates an empty graph over the given state schema.
func NewStateGraph(name string, schema *StateSchema) *StateGraph {
	return &StateGraph{name: name, schema: schema}
}

// AddNode adds a node with the given function.
func (sg *StateGraph) AddNode(id string, nodeType NodeType, fn NodeFunc) *StateGraph {
	sg.nodes = append(sg.nodes, &Node{ID: id, Type: nodeType, Function: fn})
	return sg
}

// AddEdge adds an unconditional transition.
func (sg *StateGraph) AddEdge(from, to string) *StateGraph {
	sg.edges = append(sg.edges, &Edge{From: from, To: to})
	return sg
}

// AddConditionalEdge adds a guarded transition. Higher priority edges are
// evaluated first; ties follow insertion order.
func (sg *StateGraph) AddConditionalEdge(from, to string, condition *EdgeCondition, priority int) *StateGraph {
	sg.edges = append(sg.edges, &Edge{From: from, To: to, Condition: condition, Priority: priority})
	return sg
}

// SetEntryPoint names the node execution starts at.
func (sg *StateGraph) SetEntryPoint(nodeID string) *StateGraph {
	sg.entryPoint = nodeID
	return sg
}

// Compile checks the assembled topology and returns the executable graph.
func (sg *StateGraph) Compile() (*Graph, error) {
	if sg.schema == nil {
		return nil, fmt.Errorf("graph %s: no state schema", sg.name)
	}
	declared := make(map[string]bool, len(sg.nodes))
	for _, node := range sg.nodes {
		if node.ID == "" || node.ID == Start || node.ID == End {
			return nil, fmt.Errorf("graph %s: invalid node id %q", sg.name, node.ID)
		}
		if declared[node.ID] {
			return nil, newConfigError(ErrDuplicateNodeID, node.ID, "declared more than once")
		}
		if node.Function == nil {
			return nil, fmt.Errorf("graph %s: node %s has no function", sg.name, node.ID)
		}
		declared[node.ID] = true
	}
	if sg.entryPoint == "" || !declared[sg.entryPoint] {
		return nil, newConfigError(ErrInvalidEntryPoint, sg.entryPoint, "not a declared node")
	}
	for _, edge := range sg.edges {
		if !declared[edge.From] && edge.From != Start {
			return nil, newConfigError(ErrUnknownNodeReference, edge.From, "edge departs from undeclared node")
		}
		if !declared[edge.To] && edge.To != End {
			return nil, newConfigError(ErrUnknownNodeReference, edge.To, "edge arrives at undeclared node")
		}
	}
	kept := make([]*Edge, 0, len(sg.edges))
	for _, edge := range sg.edges {
		if edge.From == Start {
			continue
		}
		kept = append(kept, edge)
	}
	return newGraph(sg.name, sg.schema, sg.nodes, kept, sg.entryPoint), nil
}
