//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/telemetry"
)

// defaultMaxSteps bounds a single invocation. It is a safety net against
// cyclic graphs whose conditions never release; component-level iteration
// caps are expected to fire long before this does.
const defaultMaxSteps = 100

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxSteps overrides the per-invocation node execution cap.
func WithMaxSteps(maxSteps int) ExecutorOption {
	return func(e *Executor) {
		if maxSteps > 0 {
			e.maxSteps = maxSteps
		}
	}
}

// Executor runs a compiled graph. It holds no per-invocation state and is
// safe for concurrent use.
type Executor struct {
	graph    *Graph
	maxSteps int
}

// NewExecutor creates an executor for a compiled graph.
func NewExecutor(graph *Graph, opts ...ExecutorOption) *Executor {
	e := &Executor{graph: graph, maxSteps: defaultMaxSteps}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invoke runs the graph from its entry point with the given initial state
// and returns the final state. Nodes run one at a time; after each node
// the update is merged through the schema's reducers and the outgoing
// edges are scanned for the next node. The run ends when an edge reaches
// END, and fails on context cancellation, a routing dead end, or a node
// error. The returned error wraps the failing node's error unchanged.
func (e *Executor) Invoke(ctx context.Context, initial State) (State, error) {
	invocationID := uuid.NewString()
	ctx, span := telemetry.Tracer.Start(ctx, "graph.invoke",
		trace.WithAttributes(
			telemetry.StringAttr(telemetry.KeyGraphName, e.graph.Name()),
			telemetry.StringAttr(telemetry.KeyInvocationID, invocationID),
		))
	defer span.End()

	state := e.graph.Schema().ApplyUpdate(e.graph.Schema().ApplyDefaults(), initial)
	current := e.graph.EntryPoint()

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("invocation %s canceled at node %s: %w", invocationID, current, err)
		}
		if step >= e.maxSteps {
			return state, fmt.Errorf("invocation %s exceeded %d steps at node %s",
				invocationID, e.maxSteps, current)
		}

		node, ok := e.graph.Node(current)
		if !ok {
			return state, fmt.Errorf("invocation %s: node %s not found", invocationID, current)
		}

		log.Debugf("Invocation %s step %d: running node %s (%s)",
			invocationID, step, node.ID, node.Type)
		update, err := node.Function(ctx, state)
		if err != nil {
			return state, err
		}
		state = e.graph.Schema().ApplyUpdate(state, update)

		next, err := e.graph.route(current, state)
		if err != nil {
			return state, err
		}
		if next == End {
			return state, nil
		}
		current = next
	}
}
