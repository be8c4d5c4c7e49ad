//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package runner ties the pieces together: it compiles a GraphConfig with
// the process's resources, runs it against a session's history, and
// writes the outcome back to the session store.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weavegraph/weavegraph/component"
	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/session"
	"github.com/weavegraph/weavegraph/session/inmemory"
	"github.com/weavegraph/weavegraph/tool"
)

// Option configures a Runner.
type Option func(*Runner)

// WithSessionService overrides the session backend. Defaults to the
// in-memory service.
func WithSessionService(svc session.Service) Option {
	return func(r *Runner) {
		r.sessions = svc
	}
}

// WithModelFactory supplies the model factory passed to graph builds.
func WithModelFactory(factory model.Factory) Option {
	return func(r *Runner) {
		r.modelFactory = factory
	}
}

// WithTools supplies the tools passed to graph builds.
func WithTools(tools []tool.Tool) Option {
	return func(r *Runner) {
		r.tools = tools
	}
}

// WithComponentResolver overrides the component resolver. Defaults to
// the default component registry.
func WithComponentResolver(resolver graph.ComponentResolver) Option {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// Runner executes graph configs for sessions. It is safe for concurrent
// use once constructed.
type Runner struct {
	sessions     session.Service
	modelFactory model.Factory
	tools        []tool.Tool
	resolver     graph.ComponentResolver
}

// New creates a runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		sessions: inmemory.NewService(),
		resolver: component.DefaultRegistry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one run.
type Result struct {
	// SessionID is the session the run used, useful when Run created it.
	SessionID string
	// Reply is the final assistant message content.
	Reply string
	// Messages are the messages this run appended to the session.
	Messages []model.Message
	// State is the final graph state.
	State graph.State
}

// Run compiles the config, invokes it with the session's history plus the
// user message, and persists the new messages and workflow state. The
// config's wall-clock budget, when set, bounds the invocation through a
// context timeout.
func (r *Runner) Run(ctx context.Context, key session.Key, config *graph.GraphConfig, userMessage string) (*Result, error) {
	builder, err := graph.NewGraphBuilder(config,
		graph.WithModelFactory(r.modelFactory),
		graph.WithTools(r.tools),
		graph.WithComponentResolver(r.resolver),
	)
	if err != nil {
		return nil, err
	}
	g, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := r.sessions.GetSession(ctx, key)
	if errors.Is(err, session.ErrSessionNotFound) || key.SessionID == "" {
		sess, err = r.sessions.CreateSession(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	key.SessionID = sess.ID

	if config.MaxExecutionTimeSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx,
			time.Duration(config.MaxExecutionTimeSeconds)*time.Second)
		defer cancel()
	}

	history := append([]model.Message{}, sess.Messages...)
	history = append(history, model.NewUserMessage(userMessage))
	initial := graph.State{graph.StateKeyMessages: history}

	final, err := graph.NewExecutor(g).Invoke(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("run session %s: %w", key.SessionID, err)
	}

	messages := final.Messages()
	appended := messages[len(sess.Messages):]
	if err := r.sessions.AppendMessages(ctx, key, appended, workflowState(final)); err != nil {
		// The run itself succeeded; a persistence failure should not
		// discard the answer.
		log.Errorf("Failed to persist session %s: %v", key.SessionID, err)
	}

	return &Result{
		SessionID: key.SessionID,
		Reply:     lastAssistantContent(messages),
		Messages:  appended,
		State:     final,
	}, nil
}

// workflowState strips the reserved fields out of the final state so only
// workflow-specific fields are snapshotted on the session.
func workflowState(state graph.State) map[string]any {
	snapshot := make(map[string]any)
	for key, value := range state {
		if key == graph.StateKeyMessages || key == graph.StateKeyExecutionContext {
			continue
		}
		snapshot[key] = value
	}
	return snapshot
}

func lastAssistantContent(messages []model.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAssistant && messages[i].Content != "" {
			return messages[i].Content
		}
	}
	return ""
}
