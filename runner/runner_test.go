//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/weavegraph/weavegraph/component/builtin"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/session"
	"github.com/weavegraph/weavegraph/workflow"
)

// echoModel replies with the latest non-system message, prefixed.
type echoModel struct {
	calls int
}

func (m *echoModel) Info() model.Info {
	return model.Info{Name: "echo"}
}

func (m *echoModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	m.calls++
	last := req.Messages[len(req.Messages)-1]
	ch := make(chan *model.Response, 1)
	ch <- &model.Response{
		Done:    true,
		Choices: []model.Choice{{Message: model.NewAssistantMessage("echo: " + last.Content)}},
	}
	close(ch)
	return ch, nil
}

func echoFactory(m model.Model) model.Factory {
	return func(ctx context.Context, opts ...model.FactoryOption) (model.Model, error) {
		return m, nil
	}
}

func TestRunCreatesSessionAndPersistsHistory(t *testing.T) {
	r := New(WithModelFactory(echoFactory(&echoModel{})))
	key := session.Key{TenantID: "t1", UserID: "u1"}
	config := workflow.NewReActConfig(workflow.ReActOptions{})

	result, err := r.Run(context.Background(), key, config, "hello")
	require.NoError(t, err)
	require.Equal(t, "echo: hello", result.Reply)
	require.Len(t, result.Messages, 2)
	require.Equal(t, model.RoleUser, result.Messages[0].Role)
	require.Equal(t, model.RoleAssistant, result.Messages[1].Role)
}

func TestRunCarriesHistoryAcrossTurns(t *testing.T) {
	r := New(WithModelFactory(echoFactory(&echoModel{})))
	key := session.Key{TenantID: "t1", UserID: "u1", SessionID: "s1"}
	config := workflow.NewReActConfig(workflow.ReActOptions{})

	_, err := r.Run(context.Background(), key, config, "first")
	require.NoError(t, err)

	result, err := r.Run(context.Background(), key, config, "second")
	require.NoError(t, err)
	require.Equal(t, "echo: second", result.Reply)
	// Only this turn's messages are reported as appended.
	require.Len(t, result.Messages, 2)
	// The full history rode along in the state.
	require.Len(t, result.State.Messages(), 4)
}

func TestRunIsolatesTenants(t *testing.T) {
	r := New(WithModelFactory(echoFactory(&echoModel{})))
	config := workflow.NewReActConfig(workflow.ReActOptions{})

	_, err := r.Run(context.Background(),
		session.Key{TenantID: "t1", UserID: "u1", SessionID: "shared"}, config, "tenant one secret")
	require.NoError(t, err)

	result, err := r.Run(context.Background(),
		session.Key{TenantID: "t2", UserID: "u1", SessionID: "shared"}, config, "hello")
	require.NoError(t, err)
	require.Len(t, result.State.Messages(), 2)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	r := New(WithModelFactory(echoFactory(&echoModel{})))
	config := workflow.NewReActConfig(workflow.ReActOptions{})
	config.EntryPoint = "ghost"

	_, err := r.Run(context.Background(),
		session.Key{TenantID: "t1", UserID: "u1"}, config, "hello")
	require.Error(t, err)
}
