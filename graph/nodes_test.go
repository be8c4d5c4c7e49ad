//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// fakeModel records the request it receives and replies with a canned
// assistant message.
type fakeModel struct {
	name     string
	reply    model.Message
	err      error
	lastSeen *model.Request
}

func (m *fakeModel) Info() model.Info {
	return model.Info{Name: m.name}
}

func (m *fakeModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	m.lastSeen = req
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan *model.Response, 1)
	ch <- &model.Response{
		Done:    true,
		Choices: []model.Choice{{Message: m.reply}},
	}
	close(ch)
	return ch, nil
}

type recordingTool struct {
	decl     *tool.Declaration
	result   any
	err      error
	gotArgs  []byte
	numCalls int
}

func (t *recordingTool) Declaration() *tool.Declaration {
	return t.decl
}

func (t *recordingTool) Call(ctx context.Context, args []byte) (any, error) {
	t.numCalls++
	t.gotArgs = args
	return t.result, t.err
}

func TestLLMNodeReplacesSystemMessage(t *testing.T) {
	m := &fakeModel{name: "fake", reply: model.NewAssistantMessage("ok")}
	fn := NewLLMNodeFunc(m, LLMNodeOptions{NodeID: "agent", PromptTemplate: "P"})

	state := State{StateKeyMessages: []model.Message{
		model.NewSystemMessage("old"),
		model.NewUserMessage("hi"),
	}}
	update, err := fn(context.Background(), state)
	require.NoError(t, err)

	sent := m.lastSeen.Messages
	require.Len(t, sent, 2)
	require.Equal(t, model.RoleSystem, sent[0].Role)
	require.Equal(t, "P", sent[0].Content)
	require.Equal(t, model.RoleUser, sent[1].Role)
	require.Equal(t, "hi", sent[1].Content)

	messages, ok := update[StateKeyMessages].([]model.Message)
	require.True(t, ok)
	require.Len(t, messages, 1)
	require.Equal(t, "ok", messages[0].Content)
}

func TestLLMNodeEmptyTemplatePassesHistoryThrough(t *testing.T) {
	m := &fakeModel{name: "fake", reply: model.NewAssistantMessage("ok")}
	fn := NewLLMNodeFunc(m, LLMNodeOptions{NodeID: "agent"})

	state := State{StateKeyMessages: []model.Message{model.NewUserMessage("hi")}}
	_, err := fn(context.Background(), state)
	require.NoError(t, err)

	sent := m.lastSeen.Messages
	require.Len(t, sent, 1)
	require.Equal(t, model.RoleUser, sent[0].Role)
	require.Equal(t, "hi", sent[0].Content)
}

func TestLLMNodeWritesOutputKey(t *testing.T) {
	m := &fakeModel{name: "fake", reply: model.NewAssistantMessage("the answer")}
	fn := NewLLMNodeFunc(m, LLMNodeOptions{NodeID: "agent", OutputKey: "answer"})

	update, err := fn(context.Background(), State{})
	require.NoError(t, err)
	require.Equal(t, "the answer", update["answer"])
}

func TestLLMNodeBindsTools(t *testing.T) {
	echo := &recordingTool{decl: &tool.Declaration{Name: "echo", Description: "echoes"}}
	m := &fakeModel{name: "fake", reply: model.NewAssistantMessage("ok")}
	fn := NewLLMNodeFunc(m, LLMNodeOptions{NodeID: "agent", Tools: []tool.Tool{echo}})

	_, err := fn(context.Background(), State{})
	require.NoError(t, err)
	require.Contains(t, m.lastSeen.Tools, "echo")
}

func TestLLMNodePropagatesModelError(t *testing.T) {
	m := &fakeModel{name: "fake", err: errors.New("provider down")}
	fn := NewLLMNodeFunc(m, LLMNodeOptions{NodeID: "agent"})

	_, err := fn(context.Background(), State{})
	require.ErrorContains(t, err, "provider down")
}

func toolCallState(calls ...model.ToolCall) State {
	return State{StateKeyMessages: []model.Message{
		{Role: model.RoleAssistant, ToolCalls: calls},
	}}
}

func namedCall(id, name string, args string) model.ToolCall {
	return model.ToolCall{
		ID: id,
		Function: model.FunctionDefinitionParam{
			Name:      name,
			Arguments: []byte(args),
		},
	}
}

func TestToolsNodeExecutesAllCalls(t *testing.T) {
	first := &recordingTool{decl: &tool.Declaration{Name: "first"}, result: "r1"}
	second := &recordingTool{decl: &tool.Declaration{Name: "second"}, result: map[string]any{"v": 2}}
	fn := NewToolsNodeFunc([]tool.Tool{first, second}, ToolNodeOptions{
		NodeID:     "tools",
		ExecuteAll: true,
	})

	update, err := fn(context.Background(), toolCallState(
		namedCall("c1", "first", `{"q":"a"}`),
		namedCall("c2", "second", `{}`),
	))
	require.NoError(t, err)
	require.Equal(t, 1, first.numCalls)
	require.Equal(t, 1, second.numCalls)
	require.JSONEq(t, `{"q":"a"}`, string(first.gotArgs))

	messages, ok := update[StateKeyMessages].([]model.Message)
	require.True(t, ok)
	require.Len(t, messages, 2)
	require.Equal(t, model.RoleTool, messages[0].Role)
	require.Equal(t, "c1", messages[0].ToolID)
	require.Equal(t, "r1", messages[0].Content)
	require.JSONEq(t, `{"v":2}`, messages[1].Content)
}

func TestToolsNodeFirstCallOnly(t *testing.T) {
	first := &recordingTool{decl: &tool.Declaration{Name: "first"}, result: "r1"}
	second := &recordingTool{decl: &tool.Declaration{Name: "second"}, result: "r2"}
	fn := NewToolsNodeFunc([]tool.Tool{first, second}, ToolNodeOptions{NodeID: "tools"})

	update, err := fn(context.Background(), toolCallState(
		namedCall("c1", "first", `{}`),
		namedCall("c2", "second", `{}`),
	))
	require.NoError(t, err)
	require.Equal(t, 1, first.numCalls)
	require.Zero(t, second.numCalls)

	messages := update[StateKeyMessages].([]model.Message)
	require.Len(t, messages, 1)
}

func TestToolsNodeNoCallsIsNoOp(t *testing.T) {
	first := &recordingTool{decl: &tool.Declaration{Name: "first"}}
	fn := NewToolsNodeFunc([]tool.Tool{first}, ToolNodeOptions{NodeID: "tools"})

	update, err := fn(context.Background(), State{StateKeyMessages: []model.Message{
		model.NewAssistantMessage("done"),
	}})
	require.NoError(t, err)
	require.Empty(t, update)
}

func TestToolsNodeUnknownToolFails(t *testing.T) {
	fn := NewToolsNodeFunc(nil, ToolNodeOptions{NodeID: "tools"})

	_, err := fn(context.Background(), toolCallState(namedCall("c1", "ghost", `{}`)))
	require.ErrorContains(t, err, "not found")
}

func TestToolsNodePropagatesToolError(t *testing.T) {
	boom := &recordingTool{decl: &tool.Declaration{Name: "boom"}, err: errors.New("exploded")}
	fn := NewToolsNodeFunc([]tool.Tool{boom}, ToolNodeOptions{NodeID: "tools"})

	_, err := fn(context.Background(), toolCallState(namedCall("c1", "boom", `{}`)))
	require.ErrorContains(t, err, "exploded")
}
