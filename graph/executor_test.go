//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/model"
)

func markerNode(id string) *Node {
	return &Node{
		ID:   id,
		Type: NodeTypeRouter,
		Function: func(ctx context.Context, state State) (State, error) {
			return State{
				StateKeyMessages: []model.Message{model.NewAssistantMessage(id)},
			}, nil
		},
	}
}

func TestExecutorRunsLinearGraph(t *testing.T) {
	g := newGraph("linear", MessagesStateSchema(),
		[]*Node{markerNode("a"), markerNode("b")},
		[]*Edge{
			{From: "a", To: "b"},
			{From: "b", To: End},
		},
		"a")

	final, err := NewExecutor(g).Invoke(context.Background(), State{
		StateKeyMessages: []model.Message{model.NewUserMessage("go")},
	})
	require.NoError(t, err)

	messages := final.Messages()
	require.Len(t, messages, 3)
	require.Equal(t, "go", messages[0].Content)
	require.Equal(t, "a", messages[1].Content)
	require.Equal(t, "b", messages[2].Content)
}

func TestExecutorFollowsConditionalEdges(t *testing.T) {
	g := newGraph("branch", MessagesStateSchema(),
		[]*Node{passNode("route"), markerNode("left"), markerNode("right")},
		[]*Edge{
			truthyEdge("route", "left", "go_left", 1),
			{From: "route", To: "right", Priority: 0},
			{From: "left", To: End},
			{From: "right", To: End},
		},
		"route")

	final, err := NewExecutor(g).Invoke(context.Background(), State{"go_left": true})
	require.NoError(t, err)
	require.Equal(t, "left", final.Messages()[0].Content)

	final, err = NewExecutor(g).Invoke(context.Background(), State{})
	require.NoError(t, err)
	require.Equal(t, "right", final.Messages()[0].Content)
}

func TestExecutorDeadEndReturnsRoutingError(t *testing.T) {
	g := newGraph("dead", MessagesStateSchema(),
		[]*Node{markerNode("a")},
		[]*Edge{truthyEdge("a", End, "never", 0)},
		"a")

	partial, err := NewExecutor(g).Invoke(context.Background(), State{})
	var routingErr *RoutingError
	require.ErrorAs(t, err, &routingErr)
	require.Equal(t, "a", routingErr.NodeID)
	// The node that ran before the dead end is kept in the partial state.
	require.Len(t, partial.Messages(), 1)
}

func TestExecutorHonorsStepCap(t *testing.T) {
	g := newGraph("loop", MessagesStateSchema(),
		[]*Node{markerNode("a")},
		[]*Edge{{From: "a", To: "a"}},
		"a")

	_, err := NewExecutor(g, WithMaxSteps(5)).Invoke(context.Background(), State{})
	require.ErrorContains(t, err, "exceeded 5 steps")
}

func TestExecutorStopsOnCanceledContext(t *testing.T) {
	g := newGraph("loop", MessagesStateSchema(),
		[]*Node{markerNode("a")},
		[]*Edge{{From: "a", To: "a"}},
		"a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(g).Invoke(ctx, State{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecutorAppliesSchemaDefaults(t *testing.T) {
	schema := MessagesStateSchema()
	schema.AddField("counter", StateField{
		Default: func() any { return 0 },
		Reducer: DefaultReducer,
	})
	g := newGraph("defaults", schema,
		[]*Node{passNode("a")},
		[]*Edge{{From: "a", To: End}},
		"a")

	final, err := NewExecutor(g).Invoke(context.Background(), State{})
	require.NoError(t, err)
	require.Equal(t, 0, final["counter"])
}
