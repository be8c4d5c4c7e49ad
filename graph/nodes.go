//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/telemetry"
	"github.com/weavegraph/weavegraph/tool"
)

// LLMNodeOptions configures a compiled LLM node.
type LLMNodeOptions struct {
	// NodeID names the node in spans and errors.
	NodeID string
	// PromptTemplate is injected per the system-prompt contract.
	PromptTemplate string
	// OutputKey, when set, receives the reply text in the state update.
	OutputKey string
	// Tools are bound on the model request.
	Tools []tool.Tool
}

// NewLLMNodeFunc compiles an LLM node. The returned function prepares the
// message list per the system-prompt contract, invokes the model, and
// returns the assistant reply as a messages update plus, when outputKey is
// set, the reply text under that key.
func NewLLMNodeFunc(m model.Model, opts LLMNodeOptions) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		ctx, span := telemetry.Tracer.Start(ctx, "graph.node.llm",
			trace.WithAttributes(
				telemetry.StringAttr(telemetry.KeyNodeID, opts.NodeID),
				telemetry.StringAttr(telemetry.KeyModelName, m.Info().Name),
			))
		defer span.End()

		messages := prepareMessages(opts.PromptTemplate, state.Messages())
		request := &model.Request{Messages: messages}
		if len(opts.Tools) > 0 {
			request.Tools = make(map[string]tool.Tool, len(opts.Tools))
			for _, t := range opts.Tools {
				request.Tools[t.Declaration().Name] = t
			}
		}

		reply, err := invokeModel(ctx, m, request)
		if err != nil {
			return nil, fmt.Errorf("llm node %s: %w", opts.NodeID, err)
		}

		update := State{StateKeyMessages: []model.Message{*reply}}
		if opts.OutputKey != "" {
			update[opts.OutputKey] = reply.Content
		}
		return update, nil
	}
}

// prepareMessages applies the system-prompt contract: a non-empty template
// replaces any existing system messages with a single system message at the
// head of the list; an empty template leaves the history untouched.
func prepareMessages(promptTemplate string, history []model.Message) []model.Message {
	if promptTemplate == "" {
		return history
	}
	prepared := make([]model.Message, 0, len(history)+1)
	prepared = append(prepared, model.NewSystemMessage(promptTemplate))
	for _, msg := range history {
		if msg.Role == model.RoleSystem {
			continue
		}
		prepared = append(prepared, msg)
	}
	return prepared
}

// invokeModel drains the response channel and returns the final assistant
// message. Partial chunks are skipped; the terminal response carries the
// accumulated content and tool calls.
func invokeModel(ctx context.Context, m model.Model, request *model.Request) (*model.Message, error) {
	responses, err := m.GenerateContent(ctx, request)
	if err != nil {
		return nil, err
	}
	var final *model.Response
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case rsp, ok := <-responses:
			if !ok {
				if final == nil {
					return nil, errors.New("model returned no response")
				}
				if final.Error != nil {
					return nil, final.Error
				}
				if len(final.Choices) == 0 {
					return nil, errors.New("model response has no choices")
				}
				msg := final.Choices[0].Message
				return &msg, nil
			}
			if rsp.Error != nil {
				return nil, rsp.Error
			}
			if !rsp.IsPartial {
				final = rsp
			}
		}
	}
}

// ToolNodeOptions configures a compiled TOOL node.
type ToolNodeOptions struct {
	// NodeID names the node in spans and errors.
	NodeID string
	// ExecuteAll runs every requested call instead of only the first.
	ExecuteAll bool
	// OutputKey, when set, receives the last tool result in the update.
	OutputKey string
}

// NewToolsNodeFunc compiles a TOOL node. The returned function reads the
// tool calls off the latest assistant message, executes the matching tools,
// and returns one tool message per executed call. With executeAll false
// only the first call runs.
func NewToolsNodeFunc(tools []tool.Tool, opts ToolNodeOptions) NodeFunc {
	byName := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		byName[t.Declaration().Name] = t
	}
	return func(ctx context.Context, state State) (State, error) {
		ctx, span := telemetry.Tracer.Start(ctx, "graph.node.tools",
			trace.WithAttributes(telemetry.StringAttr(telemetry.KeyNodeID, opts.NodeID)))
		defer span.End()

		messages := state.Messages()
		if len(messages) == 0 {
			return State{}, nil
		}
		calls := messages[len(messages)-1].ToolCalls
		if len(calls) == 0 {
			return State{}, nil
		}
		if !opts.ExecuteAll {
			calls = calls[:1]
		}

		results := make([]model.Message, 0, len(calls))
		var lastResult string
		for _, call := range calls {
			content, err := executeToolCall(ctx, byName, call)
			if err != nil {
				return nil, fmt.Errorf("tool node %s: %w", opts.NodeID, err)
			}
			results = append(results, model.NewToolMessage(call.ID, call.Function.Name, content))
			lastResult = content
		}

		update := State{StateKeyMessages: results}
		if opts.OutputKey != "" {
			update[opts.OutputKey] = lastResult
		}
		return update, nil
	}
}

func executeToolCall(ctx context.Context, tools map[string]tool.Tool, call model.ToolCall) (string, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "graph.tool.call",
		trace.WithAttributes(telemetry.StringAttr(telemetry.KeyToolName, call.Function.Name)))
	defer span.End()

	t, ok := tools[call.Function.Name]
	if !ok {
		return "", fmt.Errorf("tool %s not found", call.Function.Name)
	}
	callable, ok := t.(tool.CallableTool)
	if !ok {
		return "", fmt.Errorf("tool %s is not callable", call.Function.Name)
	}
	result, err := callable.Call(ctx, call.Function.Arguments)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", call.Function.Name, err)
	}
	return marshalToolResult(call.Function.Name, result), nil
}

// marshalToolResult renders a tool return value as message content.
// Strings pass through; everything else is JSON-encoded.
func marshalToolResult(name string, result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Warnf("Failed to marshal result of tool %s: %v", name, err)
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}

// NewRouterNodeFunc compiles a ROUTER node: a pure pass-through whose only
// purpose is to anchor conditional outgoing edges.
func NewRouterNodeFunc(nodeID string) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		return State{}, nil
	}
}
