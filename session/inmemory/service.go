//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package inmemory provides the builtin session backend. It keeps every
// session in process memory, which suits tests and single-node
// deployments.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/session"
)

// Service implements session.Service over an in-process map.
type Service struct {
	mu sync.RWMutex
	// sessions is keyed tenant -> user -> session ID.
	sessions map[string]map[string]map[string]*session.Session
}

// NewService creates an empty in-memory session service.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]map[string]map[string]*session.Session),
	}
}

// CreateSession implements session.Service.
func (s *Service) CreateSession(ctx context.Context, key session.Key) (*session.Session, error) {
	if err := key.Validate(false); err != nil {
		return nil, err
	}
	if key.SessionID == "" {
		key.SessionID = uuid.NewString()
	}
	now := time.Now()
	sess := &session.Session{
		ID:        key.SessionID,
		TenantID:  key.TenantID,
		UserID:    key.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.sessions[key.TenantID]
	if !ok {
		users = make(map[string]map[string]*session.Session)
		s.sessions[key.TenantID] = users
	}
	byID, ok := users[key.UserID]
	if !ok {
		byID = make(map[string]*session.Session)
		users[key.UserID] = byID
	}
	byID[key.SessionID] = sess
	return cloneSession(sess), nil
}

// GetSession implements session.Service.
func (s *Service) GetSession(ctx context.Context, key session.Key) (*session.Session, error) {
	if err := key.Validate(true); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key.TenantID][key.UserID][key.SessionID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

// AppendMessages implements session.Service.
func (s *Service) AppendMessages(ctx context.Context, key session.Key, messages []model.Message, state map[string]any) error {
	if err := key.Validate(true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key.TenantID][key.UserID][key.SessionID]
	if !ok {
		return session.ErrSessionNotFound
	}
	sess.Messages = append(sess.Messages, messages...)
	if state != nil {
		snapshot := make(map[string]any, len(state))
		for k, v := range state {
			snapshot[k] = v
		}
		sess.State = snapshot
	}
	sess.UpdatedAt = time.Now()
	return nil
}

// ListSessions implements session.Service.
func (s *Service) ListSessions(ctx context.Context, tenantID, userID string) ([]*session.Session, error) {
	if err := (session.Key{TenantID: tenantID, UserID: userID}).Validate(false); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listed []*session.Session
	for _, sess := range s.sessions[tenantID][userID] {
		listed = append(listed, cloneSession(sess))
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].UpdatedAt.After(listed[j].UpdatedAt)
	})
	return listed, nil
}

// DeleteSession implements session.Service.
func (s *Service) DeleteSession(ctx context.Context, key session.Key) error {
	if err := key.Validate(true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions[key.TenantID][key.UserID], key.SessionID)
	return nil
}

// cloneSession copies a session so callers cannot mutate the store.
func cloneSession(sess *session.Session) *session.Session {
	copied := &session.Session{
		ID:        sess.ID,
		TenantID:  sess.TenantID,
		UserID:    sess.UserID,
		Messages:  make([]model.Message, len(sess.Messages)),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	copy(copied.Messages, sess.Messages)
	if sess.State != nil {
		copied.State = make(map[string]any, len(sess.State))
		for k, v := range sess.State {
			copied.State[k] = v
		}
	}
	return copied
}
