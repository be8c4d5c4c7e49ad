//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/session"
)

func TestCreateAssignsIDAndValidatesKey(t *testing.T) {
	svc := NewService()

	sess, err := svc.CreateSession(context.Background(), session.Key{TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, "t1", sess.TenantID)

	_, err = svc.CreateSession(context.Background(), session.Key{UserID: "u1"})
	require.ErrorIs(t, err, session.ErrTenantIDRequired)
	_, err = svc.CreateSession(context.Background(), session.Key{TenantID: "t1"})
	require.ErrorIs(t, err, session.ErrUserIDRequired)
}

func TestAppendMessagesAndSnapshot(t *testing.T) {
	svc := NewService()
	sess, err := svc.CreateSession(context.Background(), session.Key{TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)
	key := session.Key{TenantID: "t1", UserID: "u1", SessionID: sess.ID}

	err = svc.AppendMessages(context.Background(), key,
		[]model.Message{model.NewUserMessage("hi"), model.NewAssistantMessage("hello")},
		map[string]any{"final_report": "r1"})
	require.NoError(t, err)

	got, err := svc.GetSession(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "r1", got.State["final_report"])

	// Mutating the returned copy must not touch the store.
	got.Messages[0].Content = "mutated"
	got.State["final_report"] = "mutated"
	again, err := svc.GetSession(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "hi", again.Messages[0].Content)
	require.Equal(t, "r1", again.State["final_report"])
}

func TestTenantsAreIsolated(t *testing.T) {
	svc := NewService()
	sess, err := svc.CreateSession(context.Background(), session.Key{TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)

	_, err = svc.GetSession(context.Background(),
		session.Key{TenantID: "t2", UserID: "u1", SessionID: sess.ID})
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestListAndDelete(t *testing.T) {
	svc := NewService()
	first, err := svc.CreateSession(context.Background(), session.Key{TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)
	_, err = svc.CreateSession(context.Background(), session.Key{TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)

	listed, err := svc.ListSessions(context.Background(), "t1", "u1")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	err = svc.DeleteSession(context.Background(),
		session.Key{TenantID: "t1", UserID: "u1", SessionID: first.ID})
	require.NoError(t, err)

	listed, err = svc.ListSessions(context.Background(), "t1", "u1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// Deleting again is a no-op.
	err = svc.DeleteSession(context.Background(),
		session.Key{TenantID: "t1", UserID: "u1", SessionID: first.ID})
	require.NoError(t, err)
}
