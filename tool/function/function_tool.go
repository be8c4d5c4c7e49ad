//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package function provides function-based tool implementations for the
// agent system.
package function

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/tool"
)

// FunctionTool implements the CallableTool interface for executing functions
// with JSON arguments. It provides a generic way to wrap any function as a
// tool that can be called by a model.
type FunctionTool[I, O any] struct {
	name         string
	description  string
	inputSchema  *tool.Schema
	outputSchema *tool.Schema
	capabilities []tool.Capability
	fn           func(context.Context, I) (O, error)
}

// Option is a function that configures a FunctionTool.
type Option func(*functionToolOptions)

// functionToolOptions holds the configuration options for FunctionTool.
type functionToolOptions struct {
	name         string
	description  string
	inputSchema  *tool.Schema
	outputSchema *tool.Schema
	capabilities []tool.Capability
}

// WithName sets the name of the function tool.
//
// Tool names must comply with LLM API requirements: use only English
// letters, numbers, underscores, and hyphens.
func WithName(name string) Option {
	return func(opts *functionToolOptions) {
		opts.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(opts *functionToolOptions) {
		opts.description = description
	}
}

// WithInputSchema sets a custom input schema for the function tool.
// When provided, the automatic schema generation will be skipped.
func WithInputSchema(schema *tool.Schema) Option {
	return func(opts *functionToolOptions) {
		opts.inputSchema = schema
	}
}

// WithOutputSchema sets a custom output schema for the function tool.
func WithOutputSchema(schema *tool.Schema) Option {
	return func(opts *functionToolOptions) {
		opts.outputSchema = schema
	}
}

// WithCapabilities attaches explicit capability metadata to the tool,
// overriding any name-based capability registry lookup.
func WithCapabilities(capabilities ...tool.Capability) Option {
	return func(opts *functionToolOptions) {
		opts.capabilities = capabilities
	}
}

// NewFunctionTool creates a new FunctionTool wrapping fn.
func NewFunctionTool[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	options := &functionToolOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.name == "" {
		log.Warnf("FunctionTool: name is empty")
	}
	if options.description == "" {
		log.Warnf("FunctionTool: description is empty")
	}

	inputSchema := options.inputSchema
	if inputSchema == nil {
		var emptyI I
		inputSchema = generateSchema(emptyI)
	}
	outputSchema := options.outputSchema
	if outputSchema == nil {
		var emptyO O
		outputSchema = generateSchema(emptyO)
	}

	return &FunctionTool[I, O]{
		name:         options.name,
		description:  options.description,
		inputSchema:  inputSchema,
		outputSchema: outputSchema,
		capabilities: options.capabilities,
		fn:           fn,
	}
}

// Call executes the function tool with the provided JSON arguments.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var input I
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &input); err != nil {
			return nil, fmt.Errorf("tool %s: unmarshal arguments: %w", ft.name, err)
		}
	}
	return ft.fn(ctx, input)
}

// Declaration returns the tool's declaration.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:         ft.name,
		Description:  ft.description,
		InputSchema:  ft.inputSchema,
		OutputSchema: ft.outputSchema,
	}
}

// Capabilities returns the explicit capability metadata attached to the tool,
// or nil when none was configured.
func (ft *FunctionTool[I, O]) Capabilities() []tool.Capability {
	return ft.capabilities
}
