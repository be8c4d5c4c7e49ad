//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package tool

import "sync"

// Capability is a tag describing what kind of task a tool performs.
// Capabilities scope which tools a component receives when a graph is built.
type Capability string

// Builtin capability tags.
const (
	CapabilityWebSearch          Capability = "WEB_SEARCH"
	CapabilityKnowledgeRetrieval Capability = "KNOWLEDGE_RETRIEVAL"
	CapabilityMemory             Capability = "MEMORY"
	CapabilityImageGeneration    Capability = "IMAGE_GENERATION"
	CapabilityResearch           Capability = "RESEARCH"
	CapabilityThink              Capability = "THINK"
	CapabilityCodeExecution      Capability = "CODE_EXECUTION"
)

// CapabilityCarrier is implemented by tools that carry explicit capability
// metadata. Explicit metadata overrides any name-based registry lookup.
type CapabilityCarrier interface {
	Capabilities() []Capability
}

// CapabilityRegistry maps tool names to capability tags. Registrations are
// expected to happen at startup, before concurrent graph invocations begin.
type CapabilityRegistry struct {
	mu           sync.RWMutex
	capabilities map[string][]Capability
}

// NewCapabilityRegistry creates an empty capability registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		capabilities: make(map[string][]Capability),
	}
}

// Register associates the named tool with the given capability tags.
// Registering the same name again replaces the previous entry.
func (r *CapabilityRegistry) Register(toolName string, capabilities ...Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[toolName] = append([]Capability(nil), capabilities...)
}

// Lookup returns the registered capabilities for the named tool.
func (r *CapabilityRegistry) Lookup(toolName string) []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.capabilities[toolName]
}

// Capabilities returns the capability tags for a tool: explicit tool-attached
// metadata when present, otherwise the registry entry for the tool's name,
// otherwise nil.
func (r *CapabilityRegistry) Capabilities(t Tool) []Capability {
	if carrier, ok := t.(CapabilityCarrier); ok {
		if caps := carrier.Capabilities(); caps != nil {
			return caps
		}
	}
	declaration := t.Declaration()
	if declaration == nil {
		return nil
	}
	return r.Lookup(declaration.Name)
}

// FilterByCapabilities returns the subset of tools whose capability set
// intersects the required set. An empty requirement list returns the input
// unchanged: a component with no declared capabilities receives the entire
// available tool set.
func (r *CapabilityRegistry) FilterByCapabilities(tools []Tool, required []Capability) []Tool {
	if len(required) == 0 {
		return tools
	}
	requiredSet := make(map[Capability]struct{}, len(required))
	for _, capability := range required {
		requiredSet[capability] = struct{}{}
	}
	var result []Tool
	for _, t := range tools {
		for _, capability := range r.Capabilities(t) {
			if _, ok := requiredSet[capability]; ok {
				result = append(result, t)
				break
			}
		}
	}
	return result
}

// DefaultCapabilityRegistry is the registry used when no explicit registry
// is wired. Builtin name mappings register here at init time.
var DefaultCapabilityRegistry = NewCapabilityRegistry()

func init() {
	DefaultCapabilityRegistry.Register("web_search", CapabilityWebSearch)
	DefaultCapabilityRegistry.Register("web_fetch", CapabilityWebSearch)
	DefaultCapabilityRegistry.Register("knowledge_search", CapabilityKnowledgeRetrieval)
	DefaultCapabilityRegistry.Register("memory_search", CapabilityMemory)
	DefaultCapabilityRegistry.Register("memory_store", CapabilityMemory)
	DefaultCapabilityRegistry.Register("generate_image", CapabilityImageGeneration)
	DefaultCapabilityRegistry.Register("think_tool", CapabilityThink, CapabilityResearch)
	DefaultCapabilityRegistry.Register("research_complete", CapabilityResearch)
}
