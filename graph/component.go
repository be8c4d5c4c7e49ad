//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"

	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// ComponentType classifies a component's execution shape.
type ComponentType string

const (
	// ComponentTypeAgent marks an autonomous, tool-looping component.
	ComponentTypeAgent ComponentType = "agent"
	// ComponentTypeWorkflow marks a fixed multi-step pipeline.
	ComponentTypeWorkflow ComponentType = "workflow"
	// ComponentTypeUtility marks a single-purpose helper component.
	ComponentTypeUtility ComponentType = "utility"
)

// ComponentMetadata describes a component for discovery and wiring.
type ComponentMetadata struct {
	// Key uniquely identifies the component, e.g. "react_agent".
	Key string `json:"key"`
	// Version is the component's semantic version.
	Version string `json:"version"`
	// Name is the human-readable name.
	Name string `json:"name"`
	// Description explains what the component does.
	Description string `json:"description,omitempty"`
	// Type classifies the component.
	Type ComponentType `json:"type"`
	// Tags aid discovery.
	Tags []string `json:"tags,omitempty"`
	// RequiredCapabilities lists the tool capabilities the component
	// needs. Injected tools are filtered to these before BuildGraph.
	RequiredCapabilities []tool.Capability `json:"required_capabilities,omitempty"`
	// ConfigSchema documents the accepted config override keys.
	ConfigSchema map[string]*tool.Schema `json:"config_schema,omitempty"`
	// InputSchema documents the state fields the component reads.
	InputSchema map[string]*tool.Schema `json:"input_schema,omitempty"`
	// OutputSchema documents the state fields the component writes.
	OutputSchema map[string]*tool.Schema `json:"output_schema,omitempty"`
}

// Dependencies carries the runtime resources injected into a component
// when its graph is built.
type Dependencies struct {
	// ModelFactory constructs models on demand.
	ModelFactory model.Factory
	// Tools are the capability-filtered tools available to the component.
	Tools []tool.Tool
	// Capabilities resolves capability metadata for tools that do not
	// carry their own. Nil selects the default registry.
	Capabilities *tool.CapabilityRegistry
}

// CapabilityRegistry returns the registry components use to classify
// their injected tools.
func (d Dependencies) CapabilityRegistry() *tool.CapabilityRegistry {
	if d.Capabilities != nil {
		return d.Capabilities
	}
	return tool.DefaultCapabilityRegistry
}

// Component is a reusable, self-describing subgraph. Implementations must
// be stateless: all per-invocation data lives in graph state so a single
// component instance can serve concurrent builds.
type Component interface {
	// Metadata returns the component's descriptor.
	Metadata() ComponentMetadata
	// BuildGraph compiles the component into an executable graph using
	// the injected dependencies and per-node config overrides.
	BuildGraph(ctx context.Context, deps Dependencies, config map[string]any) (*Graph, error)
}

// ComponentResolver looks components up by key and version constraint.
// The graph builder uses it to expand COMPONENT nodes.
type ComponentResolver interface {
	// Resolve returns the component matching key and the version
	// constraint. An empty constraint matches the latest registered
	// version; a "^"-prefixed constraint matches the highest version
	// with the same major version.
	Resolve(key, versionConstraint string) (Component, error)
}
