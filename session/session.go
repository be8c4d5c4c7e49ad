//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package session defines the multi-tenant conversation store consumed by
// the runner. Backends implement Service; the inmemory subpackage is the
// builtin one.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/weavegraph/weavegraph/model"
)

var (
	// ErrTenantIDRequired is returned when a key has no tenant.
	ErrTenantIDRequired = errors.New("tenantID is required")
	// ErrUserIDRequired is returned when a key has no user.
	ErrUserIDRequired = errors.New("userID is required")
	// ErrSessionNotFound is returned when a session does not exist.
	ErrSessionNotFound = errors.New("session not found")
)

// Key addresses one session within one tenant's user space. SessionID may
// be empty on creation, in which case the service assigns one.
type Key struct {
	TenantID  string
	UserID    string
	SessionID string
}

// Validate checks the key's required parts. requireSession demands a
// session ID too.
func (k Key) Validate(requireSession bool) error {
	if k.TenantID == "" {
		return ErrTenantIDRequired
	}
	if k.UserID == "" {
		return ErrUserIDRequired
	}
	if requireSession && k.SessionID == "" {
		return ErrSessionNotFound
	}
	return nil
}

// Session is one conversation: its message history plus the last graph
// state snapshot for workflow fields that outlive a single invocation.
type Session struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantID"`
	UserID    string         `json:"userID"`
	Messages  []model.Message `json:"messages"`
	State     map[string]any `json:"state,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Service stores sessions. All methods are safe for concurrent use.
type Service interface {
	// CreateSession creates a session under the key's tenant and user,
	// assigning an ID when the key carries none.
	CreateSession(ctx context.Context, key Key) (*Session, error)
	// GetSession returns a copy of the session, or ErrSessionNotFound.
	GetSession(ctx context.Context, key Key) (*Session, error)
	// AppendMessages adds messages to the session history and replaces
	// the stored state snapshot when state is non-nil.
	AppendMessages(ctx context.Context, key Key, messages []model.Message, state map[string]any) error
	// ListSessions returns copies of the user's sessions, newest first.
	ListSessions(ctx context.Context, tenantID, userID string) ([]*Session, error)
	// DeleteSession removes the session. Deleting a missing session is
	// not an error.
	DeleteSession(ctx context.Context, key Key) error
}
