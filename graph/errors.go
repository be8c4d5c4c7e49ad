//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"errors"
	"fmt"
)

// Configuration error sentinels, raised at GraphBuilder construction.
// All are non-recoverable for that config instance: the caller must fix the
// GraphConfig and retry construction.
var (
	// ErrIncompatibleVersion indicates the config's version does not match
	// the builder's supported schema version.
	ErrIncompatibleVersion = errors.New("incompatible_version")
	// ErrDuplicateNodeID indicates two nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate_node_id")
	// ErrUnknownNodeReference indicates an edge references a node that is
	// neither declared nor a sentinel.
	ErrUnknownNodeReference = errors.New("unknown_node_reference")
	// ErrInvalidEntryPoint indicates the entry point names no declared node.
	ErrInvalidEntryPoint = errors.New("invalid_entry_point")
	// ErrNodeTypeConfigMismatch indicates a node's populated config
	// sub-object does not match its declared type.
	ErrNodeTypeConfigMismatch = errors.New("node_type_config_mismatch")
	// ErrReservedStateField indicates a custom state field redefines
	// "messages" or "execution_context".
	ErrReservedStateField = errors.New("reserved_state_field")
	// ErrInvalidCondition indicates an edge condition is malformed.
	ErrInvalidCondition = errors.New("invalid_condition")
)

// ErrMissingCapability is raised at component build time when a hard-required
// capability has no matching tool in the filtered set.
var ErrMissingCapability = errors.New("missing_required_capability")

// ConfigError wraps a configuration sentinel with the offending location.
type ConfigError struct {
	// Err is one of the configuration sentinels.
	Err error
	// Subject is the node ID, edge description, or field name at fault.
	Subject string
	// Detail is a human-readable explanation.
	Detail string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("%v: %s: %s", e.Err, e.Subject, e.Detail)
}

// Unwrap returns the configuration sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(sentinel error, subject, detail string) *ConfigError {
	return &ConfigError{
		Err:     sentinel,
		Subject: subject,
		Detail:  detail,
	}
}

// RoutingError is raised during invocation when a node's outgoing edges
// contain no matching conditional edge and no unconditional fallback. The
// run aborts; the partial state is preserved for diagnostics.
type RoutingError struct {
	// NodeID is the node with no matching route.
	NodeID string
	// State is the state at the moment routing failed.
	State State
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	return fmt.Sprintf("no matching route out of node %s", e.NodeID)
}
