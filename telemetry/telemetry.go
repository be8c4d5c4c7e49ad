//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package telemetry exposes the tracer used by the graph executor and the
// model adapters. The tracer resolves against the globally-registered
// provider, so applications control exporting by installing their own
// TracerProvider before running graphs.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/weavegraph/weavegraph"

// Tracer is the tracer for graph and model spans.
var Tracer trace.Tracer = otel.Tracer(instrumentationName)

// Span attribute keys used across the module.
const (
	KeyGraphName     = "weavegraph.graph.name"
	KeyNodeID        = "weavegraph.node.id"
	KeyNodeType      = "weavegraph.node.type"
	KeyInvocationID  = "weavegraph.invocation.id"
	KeyModelName     = "weavegraph.model.name"
	KeyComponentKey  = "weavegraph.component.key"
	KeyToolName      = "weavegraph.tool.name"
	KeyIterationSpan = "weavegraph.iteration"
)

// StringAttr builds a string attribute with one of the Key* constants.
func StringAttr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// IntAttr builds an int attribute with one of the Key* constants.
func IntAttr(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}
