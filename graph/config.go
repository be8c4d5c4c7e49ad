//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package graph provides a declarative, JSON-serializable workflow
// description and a builder that compiles it into an executable state
// machine with conditional routing, bounded loops, and component-based
// dependency injection.
package graph

import (
	"encoding/json"
	"fmt"
)

// SupportedVersion is the GraphConfig schema version this builder compiles.
const SupportedVersion = "1.0"

// Sentinel node IDs. Start and End are always valid edge endpoints and are
// never declared in GraphConfig.Nodes.
const (
	// Start is the virtual entry node of every graph.
	Start = "START"
	// End is the virtual terminal node of every graph.
	End = "END"
)

// NodeType is the closed set of node variants.
type NodeType string

// Node type constants.
const (
	// NodeTypeLLM is a model invocation node.
	NodeTypeLLM NodeType = "LLM"
	// NodeTypeTool executes the tool calls requested by the last assistant
	// message.
	NodeTypeTool NodeType = "TOOL"
	// NodeTypeComponent embeds an independently-versioned sub-workflow.
	NodeTypeComponent NodeType = "COMPONENT"
	// NodeTypeRouter is a pure routing node whose only job is to carry
	// outgoing conditional edges.
	NodeTypeRouter NodeType = "ROUTER"
)

// GraphConfig is the declarative workflow descriptor. It is a plain
// JSON-serializable value: once handed to a GraphBuilder it is treated as
// read-only and is safe to share across concurrent invocations.
type GraphConfig struct {
	// Version is the config schema version; must match SupportedVersion.
	Version string `json:"version"`

	// Nodes are the workflow steps. Node IDs must be unique.
	Nodes []*GraphNodeConfig `json:"nodes"`

	// Edges are the transitions between nodes.
	Edges []*GraphEdgeConfig `json:"edges"`

	// EntryPoint names the node that begins execution. When empty, the
	// target of the unconditional edge out of Start is used.
	EntryPoint string `json:"entry_point,omitempty"`

	// CustomStateFields declares workflow-specific state slots beyond the
	// reserved "messages" and "execution_context" fields.
	CustomStateFields map[string]StateFieldSchema `json:"custom_state_fields,omitempty"`

	// MaxExecutionTimeSeconds is a soft wall-clock budget for a full run.
	// It is carried for callers; the builder does not enforce it.
	MaxExecutionTimeSeconds int `json:"max_execution_time_seconds,omitempty"`

	// Metadata is free-form descriptive data (author, display name,
	// pattern tag). Never interpreted by the builder.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ParseConfig decodes a JSON GraphConfig. It only checks that the document
// is well-formed JSON; structural validation happens in NewGraphBuilder.
func ParseConfig(data []byte) (*GraphConfig, error) {
	var cfg GraphConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse graph config: %w", err)
	}
	return &cfg, nil
}

// GraphNodeConfig describes one step in the workflow. Exactly the config
// sub-object matching Type must be populated.
type GraphNodeConfig struct {
	// ID is the unique node key referenced by edges.
	ID string `json:"id"`
	// Name is the human-readable display name.
	Name string `json:"name,omitempty"`
	// Description explains what the node does.
	Description string `json:"description,omitempty"`
	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`

	// Type selects the node variant.
	Type NodeType `json:"type"`

	// LLMConfig is required when Type is LLM.
	LLMConfig *LLMNodeConfig `json:"llm_config,omitempty"`
	// ToolConfig is required when Type is TOOL.
	ToolConfig *ToolNodeConfig `json:"tool_config,omitempty"`
	// ComponentConfig is required when Type is COMPONENT.
	ComponentConfig *ComponentNodeConfig `json:"component_config,omitempty"`
}

// LLMNodeConfig configures a model invocation node.
type LLMNodeConfig struct {
	// PromptTemplate is injected as the single leading system message.
	// When empty, the message history is passed through unmodified.
	PromptTemplate string `json:"prompt_template,omitempty"`
	// OutputKey names a state field that receives the response text in
	// addition to the messages channel.
	OutputKey string `json:"output_key,omitempty"`
	// ToolsEnabled exposes the graph's tool set to the model.
	ToolsEnabled bool `json:"tools_enabled,omitempty"`
}

// ToolNodeConfig configures a tool-execution node.
type ToolNodeConfig struct {
	// ExecuteAll executes every tool call in the last assistant message;
	// when false only the first call is executed.
	ExecuteAll bool `json:"execute_all,omitempty"`
	// OutputKey names a state field that receives the last tool result in
	// addition to the messages channel.
	OutputKey string `json:"output_key,omitempty"`
}

// ComponentNodeConfig configures an embedded sub-workflow node.
type ComponentNodeConfig struct {
	// Component references the registered component to embed.
	Component ComponentReference `json:"component"`
	// ConfigOverrides is an open map merged into the component's runtime
	// configuration. Components ignore unrecognized keys.
	ConfigOverrides map[string]any `json:"config_overrides,omitempty"`
}

// ComponentReference names a component and its version constraint.
type ComponentReference struct {
	// Key is the component's stable identifier.
	Key string `json:"key"`
	// Version is a caret constraint like "^1.0" matched against the
	// registered component's version. Empty accepts any version.
	Version string `json:"version,omitempty"`
}

// ConditionType is the closed set of edge condition variants.
type ConditionType string

// Condition type constants.
const (
	// ConditionHasToolCalls matches when the last message carries tool
	// call requests.
	ConditionHasToolCalls ConditionType = "HAS_TOOL_CALLS"
	// ConditionNoToolCalls matches when the last message carries no tool
	// call requests.
	ConditionNoToolCalls ConditionType = "NO_TOOL_CALLS"
	// ConditionCustom evaluates an operator against a custom state field.
	ConditionCustom ConditionType = "CUSTOM"
)

// ConditionOperator is the operator applied by a custom condition.
type ConditionOperator string

// Custom condition operators.
const (
	OperatorTruthy    ConditionOperator = "TRUTHY"
	OperatorFalsy     ConditionOperator = "FALSY"
	OperatorEquals    ConditionOperator = "EQUALS"
	OperatorNotEquals ConditionOperator = "NOT_EQUALS"
	OperatorContains  ConditionOperator = "CONTAINS"
	OperatorGreater   ConditionOperator = "GT"
	OperatorLess      ConditionOperator = "LT"
)

// EdgeCondition guards a transition. Type selects the variant; Custom must
// be populated exactly when Type is ConditionCustom.
type EdgeCondition struct {
	Type   ConditionType    `json:"type"`
	Custom *CustomCondition `json:"custom,omitempty"`
}

// CustomCondition evaluates an operator against an arbitrary state field.
type CustomCondition struct {
	// StateKey names the state field to inspect.
	StateKey string `json:"state_key"`
	// Operator is the comparison applied to the field value.
	Operator ConditionOperator `json:"operator"`
	// Target is the comparison operand for binary operators.
	Target any `json:"target,omitempty"`
}

// GraphEdgeConfig is a directed transition between two nodes.
type GraphEdgeConfig struct {
	// FromNode is the source node ID (or Start).
	FromNode string `json:"from_node"`
	// ToNode is the target node ID (or End).
	ToNode string `json:"to_node"`
	// Condition guards the edge. Absent means the edge is unconditional
	// and acts as the default path.
	Condition *EdgeCondition `json:"condition,omitempty"`
	// Priority ranks conditional edges out of the same node: edges are
	// evaluated from the highest priority number down, so the most
	// urgent exits carry the highest numbers and the catch-all
	// continuation carries 0. Ties are broken by declaration order.
	Priority int `json:"priority,omitempty"`
	// Label is a human-readable description, carried for visualization.
	Label string `json:"label,omitempty"`
}

// ReducerPolicy selects how a node's partial update to a state field is
// merged into running state.
type ReducerPolicy string

// Reducer policies.
const (
	// ReducerReplace makes the last write win.
	ReducerReplace ReducerPolicy = "REPLACE"
	// ReducerAppend accumulates list values across updates.
	ReducerAppend ReducerPolicy = "APPEND"
)

// StateFieldSchema declares a custom state slot.
type StateFieldSchema struct {
	// Type is a semantic tag ("string", "bool", "list", "int", ...) used
	// for schema documentation, not a strict runtime type system.
	Type string `json:"type"`
	// Default is the field's value at graph start when the caller does
	// not supply one.
	Default any `json:"default,omitempty"`
	// Reducer selects the merge policy; empty means REPLACE.
	Reducer ReducerPolicy `json:"reducer,omitempty"`
}
