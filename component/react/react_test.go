//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package react

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// loopingModel asks for the same tool on every call, never concluding.
type loopingModel struct {
	calls    int
	requests []*model.Request
}

func (m *loopingModel) Info() model.Info {
	return model.Info{Name: "looping"}
}

func (m *loopingModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	m.calls++
	m.requests = append(m.requests, req)
	ch := make(chan *model.Response, 1)
	ch <- &model.Response{
		Done: true,
		Choices: []model.Choice{{Message: model.Message{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{{
				ID:       "c1",
				Function: model.FunctionDefinitionParam{Name: "probe", Arguments: []byte(`{}`)},
			}},
		}}},
	}
	close(ch)
	return ch, nil
}

// answeringModel replies with plain text immediately.
type answeringModel struct {
	calls int
}

func (m *answeringModel) Info() model.Info {
	return model.Info{Name: "answering"}
}

func (m *answeringModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	m.calls++
	ch := make(chan *model.Response, 1)
	ch <- &model.Response{
		Done:    true,
		Choices: []model.Choice{{Message: model.NewAssistantMessage("direct answer")}},
	}
	close(ch)
	return ch, nil
}

type probeTool struct {
	calls int
}

func (t *probeTool) Declaration() *tool.Declaration {
	return &tool.Declaration{Name: "probe", Description: "probes"}
}

func (t *probeTool) Call(ctx context.Context, args []byte) (any, error) {
	t.calls++
	return "probed", nil
}

func factoryFor(m model.Model) model.Factory {
	return func(ctx context.Context, opts ...model.FactoryOption) (model.Model, error) {
		return m, nil
	}
}

func TestBuildGraphWithoutToolsIsSingleShot(t *testing.T) {
	m := &answeringModel{}
	g, err := New().BuildGraph(context.Background(), graph.Dependencies{
		ModelFactory: factoryFor(m),
	}, nil)
	require.NoError(t, err)

	_, hasToolsNode := g.Node(nodeTools)
	require.False(t, hasToolsNode)
	require.Equal(t, nodeAgent, g.EntryPoint())

	final, err := graph.NewExecutor(g).Invoke(context.Background(), graph.State{
		graph.StateKeyMessages: []model.Message{model.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.calls)

	messages := final.Messages()
	require.Equal(t, "direct answer", messages[len(messages)-1].Content)
}

func TestAgentToolLoopRunsToolsAndReturns(t *testing.T) {
	m := &answeringModel{}
	probe := &probeTool{}
	g, err := New().BuildGraph(context.Background(), graph.Dependencies{
		ModelFactory: factoryFor(m),
		Tools:        []tool.Tool{probe},
	}, nil)
	require.NoError(t, err)

	_, hasToolsNode := g.Node(nodeTools)
	require.True(t, hasToolsNode)

	final, err := graph.NewExecutor(g).Invoke(context.Background(), graph.State{
		graph.StateKeyMessages: []model.Message{model.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	// Answering model never calls tools, so the loop exits on the first turn.
	require.Zero(t, probe.calls)
	require.Equal(t, 1, m.calls)
	require.Equal(t, 1, final[StateKeyIterations])
}

func TestIterationCapTerminatesLoop(t *testing.T) {
	m := &loopingModel{}
	probe := &probeTool{}
	g, err := New().BuildGraph(context.Background(), graph.Dependencies{
		ModelFactory: factoryFor(m),
		Tools:        []tool.Tool{probe},
	}, map[string]any{"max_iterations": 2})
	require.NoError(t, err)

	final, err := graph.NewExecutor(g).Invoke(context.Background(), graph.State{
		graph.StateKeyMessages: []model.Message{model.NewUserMessage("research this")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, m.calls)
	require.Equal(t, 2, probe.calls)

	messages := final.Messages()
	require.Equal(t, maxIterationsContent, messages[len(messages)-1].Content)
	require.Equal(t, 2, final[StateKeyIterations])
}

func TestSystemPromptInjectedOnEveryCall(t *testing.T) {
	m := &loopingModel{}
	probe := &probeTool{}
	g, err := New().BuildGraph(context.Background(), graph.Dependencies{
		ModelFactory: factoryFor(m),
		Tools:        []tool.Tool{probe},
	}, map[string]any{"system_prompt": "Custom prompt.", "max_iterations": 2})
	require.NoError(t, err)

	_, err = graph.NewExecutor(g).Invoke(context.Background(), graph.State{
		graph.StateKeyMessages: []model.Message{model.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.requests)
	for _, req := range m.requests {
		require.Equal(t, model.RoleSystem, req.Messages[0].Role)
		require.Equal(t, "Custom prompt.", req.Messages[0].Content)
		for _, msg := range req.Messages[1:] {
			require.NotEqual(t, model.RoleSystem, msg.Role)
		}
	}
}

func TestParseOptionsDefaultsAndClamping(t *testing.T) {
	opts := parseOptions(nil)
	require.Equal(t, defaultSystemPrompt, opts.systemPrompt)
	require.Equal(t, defaultMaxIterations, opts.maxIterations)

	opts = parseOptions(map[string]any{
		"system_prompt":  "Hi.",
		"max_iterations": float64(500),
		"future_knob":    true,
	})
	require.Equal(t, "Hi.", opts.systemPrompt)
	require.Equal(t, maxIterationsCeiling, opts.maxIterations)

	opts = parseOptions(map[string]any{"max_iterations": 0})
	require.Equal(t, 1, opts.maxIterations)

	opts = parseOptions(map[string]any{"max_iterations": "ten"})
	require.Equal(t, defaultMaxIterations, opts.maxIterations)
}
