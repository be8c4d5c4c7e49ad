//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package model provides interfaces and types for working with LLMs.
package model

import "context"

// Info describes a model instance.
type Info struct {
	// Name is the model identifier (e.g., "gpt-4o-mini").
	Name string
}

// Model is the interface for all language models.
type Model interface {
	// GenerateContent sends the request to the model and streams responses
	// on the returned channel. The channel is closed when generation is
	// finished. The final response carries Done=true.
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)

	// Info returns descriptive information about the model.
	Info() Info
}

// FactoryOption customizes a single factory invocation.
type FactoryOption func(*FactoryOptions)

// FactoryOptions carries per-invocation overrides for a model factory.
type FactoryOptions struct {
	// ModelName overrides the factory's default model name when non-empty.
	ModelName string
	// Temperature overrides the default sampling temperature when non-nil.
	Temperature *float64
}

// WithModelName overrides the model name for one factory call.
func WithModelName(name string) FactoryOption {
	return func(o *FactoryOptions) {
		o.ModelName = name
	}
}

// WithTemperature overrides the sampling temperature for one factory call.
func WithTemperature(temperature float64) FactoryOption {
	return func(o *FactoryOptions) {
		o.Temperature = &temperature
	}
}

// Factory produces a ready-to-invoke model, applying optional per-call
// overrides. Components call the factory lazily so that configuration
// overrides attached to a graph node can take effect per invocation.
type Factory func(ctx context.Context, opts ...FactoryOption) (Model, error)
