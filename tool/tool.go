//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package tool provides tool interfaces and implementations for the agent
// system.
package tool

import "context"

// Tool is the interface that all tools must implement.
type Tool interface {
	// Declaration returns the tool's declaration used to expose it to models.
	Declaration() *Declaration
}

// CallableTool is a tool that can be invoked directly with JSON arguments.
type CallableTool interface {
	Tool

	// Call executes the tool with the given JSON-encoded arguments and
	// returns the result.
	Call(ctx context.Context, jsonArgs []byte) (any, error)
}

// Declaration describes a tool to models and registries.
type Declaration struct {
	// Name is the stable tool name.
	Name string `json:"name"`
	// Description explains what the tool does.
	Description string `json:"description"`
	// InputSchema describes the tool's input arguments.
	InputSchema *Schema `json:"input_schema,omitempty"`
	// OutputSchema describes the tool's result.
	OutputSchema *Schema `json:"output_schema,omitempty"`
}

// DataType is the JSON-schema type of a Schema node.
type DataType string

// DataType constants mirror JSON-schema primitive types.
const (
	TypeObject  DataType = "object"
	TypeArray   DataType = "array"
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeInteger DataType = "integer"
	TypeBoolean DataType = "boolean"
	TypeNull    DataType = "null"
)

// Schema is a JSON-schema-shaped description of a value.
type Schema struct {
	Type        DataType           `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
}
