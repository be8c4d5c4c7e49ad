//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// NodeFunc executes one node: it receives the running state and returns a
// partial state update merged by the schema's reducers.
type NodeFunc func(ctx context.Context, state State) (State, error)

// Node is a compiled node in an executable graph.
type Node struct {
	// ID is the unique node identifier.
	ID string
	// Name is the human-readable name.
	Name string
	// Description explains what the node does.
	Description string
	// Type is the declared node variant.
	Type NodeType
	// Function executes the node.
	Function NodeFunc
}

// Edge is a compiled transition with its guard.
type Edge struct {
	// From is the source node ID.
	From string
	// To is the target node ID.
	To string
	// Condition guards the edge; nil means unconditional.
	Condition *EdgeCondition
	// Priority ranks the edge: higher numbers are evaluated first.
	Priority int

	// declIndex preserves declaration order for tie-breaking.
	declIndex int
}

// Graph is a compiled, invocable workflow. It is immutable after
// compilation and safe to share across concurrent invocations; each
// invocation carries its own state.
type Graph struct {
	name       string
	schema     *StateSchema
	nodes      map[string]*Node
	edges      map[string][]*Edge
	entryPoint string
}

// newGraph assembles a compiled graph. Edges out of each node are sorted by
// descending priority, ties broken by declaration order, so routing is a
// deterministic first-match scan.
func newGraph(name string, schema *StateSchema, nodes []*Node, edges []*Edge, entryPoint string) *Graph {
	g := &Graph{
		name:       name,
		schema:     schema,
		nodes:      make(map[string]*Node, len(nodes)),
		edges:      make(map[string][]*Edge),
		entryPoint: entryPoint,
	}
	for _, node := range nodes {
		g.nodes[node.ID] = node
	}
	for i, edge := range edges {
		edge.declIndex = i
		g.edges[edge.From] = append(g.edges[edge.From], edge)
	}
	for _, outgoing := range g.edges {
		sort.SliceStable(outgoing, func(i, j int) bool {
			if outgoing[i].Priority != outgoing[j].Priority {
				return outgoing[i].Priority > outgoing[j].Priority
			}
			return outgoing[i].declIndex < outgoing[j].declIndex
		})
	}
	return g
}

// Name returns the graph's display name.
func (g *Graph) Name() string {
	return g.name
}

// Schema returns the graph's state schema.
func (g *Graph) Schema() *StateSchema {
	return g.schema
}

// EntryPoint returns the ID of the node that begins execution.
func (g *Graph) EntryPoint() string {
	return g.entryPoint
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Edges returns the outgoing edges of a node in evaluation order.
func (g *Graph) Edges(nodeID string) []*Edge {
	return g.edges[nodeID]
}

// route selects the next node out of nodeID: edges are scanned in
// evaluation order and the first whose condition holds wins. An
// unconditional edge always holds. A dead end yields a RoutingError with
// the state preserved for diagnostics.
func (g *Graph) route(nodeID string, state State) (string, error) {
	for _, edge := range g.edges[nodeID] {
		matched, err := evaluateCondition(edge.Condition, state)
		if err != nil {
			return "", fmt.Errorf("edge %s->%s: %w", edge.From, edge.To, err)
		}
		if matched {
			return edge.To, nil
		}
	}
	return "", &RoutingError{NodeID: nodeID, State: state.Clone()}
}

// evaluateCondition reports whether an edge guard holds for the state.
// A nil condition always holds.
func evaluateCondition(condition *EdgeCondition, state State) (bool, error) {
	if condition == nil {
		return true, nil
	}
	switch condition.Type {
	case ConditionHasToolCalls:
		return lastMessageHasToolCalls(state), nil
	case ConditionNoToolCalls:
		return !lastMessageHasToolCalls(state), nil
	case ConditionCustom:
		if condition.Custom == nil {
			return false, fmt.Errorf("%w: custom condition payload missing", ErrInvalidCondition)
		}
		return evaluateCustomCondition(condition.Custom, state)
	default:
		return false, fmt.Errorf("%w: unknown condition type %q", ErrInvalidCondition, condition.Type)
	}
}

func lastMessageHasToolCalls(state State) bool {
	messages := state.Messages()
	if len(messages) == 0 {
		return false
	}
	return len(messages[len(messages)-1].ToolCalls) > 0
}

func evaluateCustomCondition(condition *CustomCondition, state State) (bool, error) {
	value := state[condition.StateKey]
	switch condition.Operator {
	case OperatorTruthy:
		return isTruthy(value), nil
	case OperatorFalsy:
		return !isTruthy(value), nil
	case OperatorEquals:
		return reflect.DeepEqual(value, condition.Target), nil
	case OperatorNotEquals:
		return !reflect.DeepEqual(value, condition.Target), nil
	case OperatorContains:
		return containsValue(value, condition.Target), nil
	case OperatorGreater:
		left, right, ok := numericPair(value, condition.Target)
		return ok && left > right, nil
	case OperatorLess:
		left, right, ok := numericPair(value, condition.Target)
		return ok && left < right, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, condition.Operator)
	}
}

// isTruthy follows common scripting semantics: nil, false, zero numbers,
// and empty strings/collections are falsy.
func isTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return rv.Len() > 0
		case reflect.Pointer, reflect.Interface:
			return !rv.IsNil()
		default:
			return true
		}
	}
}

func containsValue(value, target any) bool {
	switch v := value.(type) {
	case string:
		targetStr, ok := target.(string)
		return ok && strings.Contains(v, targetStr)
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if reflect.DeepEqual(rv.Index(i).Interface(), target) {
				return true
			}
		}
		return false
	}
}

func numericPair(value, target any) (float64, float64, bool) {
	left, leftOK := toFloat(value)
	right, rightOK := toFloat(target)
	return left, right, leftOK && rightOK
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}
