//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"github.com/weavegraph/weavegraph/model"
)

// Reserved state field keys, always present in a synthesized schema and not
// redefinable by custom state fields.
const (
	// StateKeyMessages is the ordered chat history channel every LLM and
	// tool node reads and writes.
	StateKeyMessages = "messages"
	// StateKeyExecutionContext carries caller-supplied identifiers
	// (user id, topic id, session id). Node logic treats it as read-only.
	StateKeyExecutionContext = "execution_context"
)

// State is the mutable value flowing through a graph invocation.
type State map[string]any

// Clone creates a shallow copy of the state.
func (s State) Clone() State {
	clone := make(State, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// Messages returns the message history stored in the state.
func (s State) Messages() []model.Message {
	if msgs, ok := s[StateKeyMessages].([]model.Message); ok {
		return msgs
	}
	return nil
}

// ExecutionContext returns the caller-supplied execution context map.
func (s State) ExecutionContext() map[string]any {
	if execCtx, ok := s[StateKeyExecutionContext].(map[string]any); ok {
		return execCtx
	}
	return nil
}

// Reducer merges a node's partial update for one field into running state.
type Reducer func(current, update any) any

// DefaultReducer implements last-write-wins. A nil update keeps the
// current value, so a node can return a sparse update without clearing
// fields it did not touch.
func DefaultReducer(current, update any) any {
	if update == nil {
		return current
	}
	return update
}

// MessageReducer appends new messages to the existing history. A node
// returns only the messages it produced; the reducer extends the channel.
func MessageReducer(current, update any) any {
	existing, _ := current.([]model.Message)
	switch incoming := update.(type) {
	case []model.Message:
		merged := make([]model.Message, 0, len(existing)+len(incoming))
		merged = append(merged, existing...)
		merged = append(merged, incoming...)
		return merged
	case model.Message:
		merged := make([]model.Message, 0, len(existing)+1)
		merged = append(merged, existing...)
		merged = append(merged, incoming)
		return merged
	default:
		return current
	}
}

// AppendReducer accumulates list values across updates.
func AppendReducer(current, update any) any {
	existing, _ := current.([]any)
	switch incoming := update.(type) {
	case []any:
		merged := make([]any, 0, len(existing)+len(incoming))
		merged = append(merged, existing...)
		merged = append(merged, incoming...)
		return merged
	default:
		merged := make([]any, 0, len(existing)+1)
		merged = append(merged, existing...)
		merged = append(merged, incoming)
		return merged
	}
}

// StateField declares one state slot: its default and merge behavior.
type StateField struct {
	// Default produces the field's value at invocation start.
	Default func() any
	// Reducer merges node updates into the field; nil means DefaultReducer.
	Reducer Reducer
}

// StateSchema declares the shape of a graph's state.
type StateSchema struct {
	fields map[string]StateField
}

// NewStateSchema creates an empty state schema.
func NewStateSchema() *StateSchema {
	return &StateSchema{
		fields: make(map[string]StateField),
	}
}

// AddField adds a field to the schema, replacing any previous declaration.
func (s *StateSchema) AddField(name string, field StateField) *StateSchema {
	s.fields[name] = field
	return s
}

// HasField reports whether the schema declares the named field.
func (s *StateSchema) HasField(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// ApplyDefaults returns a fresh state populated with each field's default.
func (s *StateSchema) ApplyDefaults() State {
	state := make(State, len(s.fields))
	for name, field := range s.fields {
		if field.Default != nil {
			state[name] = field.Default()
		}
	}
	return state
}

// ApplyUpdate merges a node's partial update into state using each field's
// reducer and returns the merged state. Fields absent from the schema use
// last-write-wins. The input state is not mutated.
func (s *StateSchema) ApplyUpdate(state, update State) State {
	merged := state.Clone()
	for key, value := range update {
		if field, ok := s.fields[key]; ok && field.Reducer != nil {
			merged[key] = field.Reducer(merged[key], value)
			continue
		}
		merged[key] = value
	}
	return merged
}

// MessagesStateSchema creates a schema with the two reserved fields every
// graph carries.
func MessagesStateSchema() *StateSchema {
	schema := NewStateSchema()
	schema.AddField(StateKeyMessages, StateField{
		Default: func() any { return []model.Message{} },
		Reducer: MessageReducer,
	})
	schema.AddField(StateKeyExecutionContext, StateField{
		Default: func() any { return map[string]any{} },
		Reducer: DefaultReducer,
	})
	return schema
}

// BuildStateSchema synthesizes the state schema for a GraphConfig: the
// reserved messages and execution_context fields plus one field per custom
// state entry, defaulted and reduced per its schema.
func BuildStateSchema(config *GraphConfig) (*StateSchema, error) {
	schema := MessagesStateSchema()
	for name, fieldSchema := range config.CustomStateFields {
		if name == StateKeyMessages || name == StateKeyExecutionContext {
			return nil, newConfigError(ErrReservedStateField, name,
				"custom state fields may not redefine reserved field")
		}
		schema.AddField(name, newStateField(fieldSchema))
	}
	return schema, nil
}

func newStateField(fieldSchema StateFieldSchema) StateField {
	field := StateField{Reducer: DefaultReducer}
	if fieldSchema.Reducer == ReducerAppend {
		field.Reducer = AppendReducer
	}
	defaultValue := fieldSchema.Default
	field.Default = func() any { return defaultValue }
	return field
}
