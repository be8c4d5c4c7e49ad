//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/model"
)

func passNode(id string) *Node {
	return &Node{ID: id, Type: NodeTypeRouter, Function: NewRouterNodeFunc(id)}
}

func truthyEdge(from, to, stateKey string, priority int) *Edge {
	return &Edge{
		From: from,
		To:   to,
		Condition: &EdgeCondition{
			Type:   ConditionCustom,
			Custom: &CustomCondition{StateKey: stateKey, Operator: OperatorTruthy},
		},
		Priority: priority,
	}
}

func falsyEdge(from, to, stateKey string, priority int) *Edge {
	return &Edge{
		From: from,
		To:   to,
		Condition: &EdgeCondition{
			Type:   ConditionCustom,
			Custom: &CustomCondition{StateKey: stateKey, Operator: OperatorFalsy},
		},
		Priority: priority,
	}
}

// The clarify routing from the deep-research pipeline: the
// need_clarification stop wins over skip_research, which wins over the
// continuation to brief.
func clarifyGraph() *Graph {
	return newGraph("clarify", MessagesStateSchema(),
		[]*Node{passNode("clarify"), passNode("brief")},
		[]*Edge{
			truthyEdge("clarify", End, "need_clarification", 2),
			truthyEdge("clarify", End, "skip_research", 1),
			falsyEdge("clarify", "brief", "need_clarification", 0),
		},
		"clarify")
}

func TestRouteHigherPriorityWins(t *testing.T) {
	g := clarifyGraph()

	next, err := g.route("clarify", State{"need_clarification": true, "skip_research": true})
	require.NoError(t, err)
	require.Equal(t, End, next)

	next, err = g.route("clarify", State{"need_clarification": false, "skip_research": true})
	require.NoError(t, err)
	require.Equal(t, End, next)

	next, err = g.route("clarify", State{"need_clarification": false, "skip_research": false})
	require.NoError(t, err)
	require.Equal(t, "brief", next)
}

func TestRouteEqualPriorityFollowsDeclarationOrder(t *testing.T) {
	g := newGraph("ties", MessagesStateSchema(),
		[]*Node{passNode("a"), passNode("b"), passNode("c")},
		[]*Edge{
			truthyEdge("a", "b", "flag", 0),
			truthyEdge("a", "c", "flag", 0),
		},
		"a")

	next, err := g.route("a", State{"flag": true})
	require.NoError(t, err)
	require.Equal(t, "b", next)
}

func TestRouteDeadEndPreservesState(t *testing.T) {
	g := newGraph("dead", MessagesStateSchema(),
		[]*Node{passNode("a")},
		[]*Edge{truthyEdge("a", End, "flag", 0)},
		"a")

	_, err := g.route("a", State{"flag": false, "partial": "kept"})
	var routingErr *RoutingError
	require.ErrorAs(t, err, &routingErr)
	require.Equal(t, "a", routingErr.NodeID)
	require.Equal(t, "kept", routingErr.State["partial"])
}

func TestRouteUnconditionalEdgeAlwaysMatches(t *testing.T) {
	g := newGraph("linear", MessagesStateSchema(),
		[]*Node{passNode("a")},
		[]*Edge{{From: "a", To: End}},
		"a")

	next, err := g.route("a", State{})
	require.NoError(t, err)
	require.Equal(t, End, next)
}

func TestToolCallConditions(t *testing.T) {
	withCalls := State{StateKeyMessages: []model.Message{
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "c1"}}},
	}}
	withoutCalls := State{StateKeyMessages: []model.Message{
		model.NewAssistantMessage("done"),
	}}

	has := &EdgeCondition{Type: ConditionHasToolCalls}
	no := &EdgeCondition{Type: ConditionNoToolCalls}

	matched, err := evaluateCondition(has, withCalls)
	require.NoError(t, err)
	require.True(t, matched)

	matched, err = evaluateCondition(has, withoutCalls)
	require.NoError(t, err)
	require.False(t, matched)

	matched, err = evaluateCondition(no, withoutCalls)
	require.NoError(t, err)
	require.True(t, matched)

	matched, err = evaluateCondition(no, State{})
	require.NoError(t, err)
	require.True(t, matched)
}

func TestCustomOperators(t *testing.T) {
	tests := []struct {
		name     string
		operator ConditionOperator
		target   any
		state    State
		want     bool
	}{
		{"truthy string", OperatorTruthy, nil, State{"k": "x"}, true},
		{"truthy empty string", OperatorTruthy, nil, State{"k": ""}, false},
		{"truthy missing key", OperatorTruthy, nil, State{}, false},
		{"truthy empty list", OperatorTruthy, nil, State{"k": []any{}}, false},
		{"falsy zero", OperatorFalsy, nil, State{"k": 0}, true},
		{"equals", OperatorEquals, "done", State{"k": "done"}, true},
		{"not equals", OperatorNotEquals, "done", State{"k": "pending"}, true},
		{"contains substring", OperatorContains, "ee", State{"k": "needle"}, true},
		{"contains list element", OperatorContains, "b", State{"k": []any{"a", "b"}}, true},
		{"gt", OperatorGreater, 3, State{"k": 5}, true},
		{"gt mixed numeric kinds", OperatorGreater, 3, State{"k": 2.5}, false},
		{"lt", OperatorLess, float64(10), State{"k": 4}, true},
		{"lt non-numeric", OperatorLess, 10, State{"k": "four"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evaluateCustomCondition(&CustomCondition{
				StateKey: "k",
				Operator: tc.operator,
				Target:   tc.target,
			}, tc.state)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
