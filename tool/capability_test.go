//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type declOnlyTool struct {
	name string
}

func (t *declOnlyTool) Declaration() *Declaration {
	return &Declaration{Name: t.name}
}

type taggedTool struct {
	declOnlyTool
	caps []Capability
}

func (t *taggedTool) Capabilities() []Capability {
	return t.caps
}

func TestCapabilityRegistryLookup(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register("searcher", CapabilityWebSearch)

	require.Equal(t, []Capability{CapabilityWebSearch}, registry.Lookup("searcher"))
	require.Nil(t, registry.Lookup("unknown"))
}

func TestCapabilityRegistryExplicitMetadataWins(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register("dual", CapabilityMemory)

	tagged := &taggedTool{declOnlyTool: declOnlyTool{name: "dual"}, caps: []Capability{CapabilityThink}}
	require.Equal(t, []Capability{CapabilityThink}, registry.Capabilities(tagged))

	// Without explicit metadata, the name lookup applies.
	plain := &declOnlyTool{name: "dual"}
	require.Equal(t, []Capability{CapabilityMemory}, registry.Capabilities(plain))
}

func TestFilterByCapabilitiesIntersection(t *testing.T) {
	registry := NewCapabilityRegistry()

	a := &taggedTool{declOnlyTool: declOnlyTool{name: "a"}, caps: []Capability{CapabilityWebSearch}}
	b := &taggedTool{declOnlyTool: declOnlyTool{name: "b"}, caps: []Capability{CapabilityMemory, CapabilityWebSearch}}
	c := &taggedTool{declOnlyTool: declOnlyTool{name: "c"}, caps: []Capability{}}

	filtered := registry.FilterByCapabilities([]Tool{a, b, c}, []Capability{CapabilityWebSearch})
	require.Len(t, filtered, 2)
	require.Same(t, a, filtered[0])
	require.Same(t, b, filtered[1])
}

func TestFilterByCapabilitiesEmptyRequirementPassthrough(t *testing.T) {
	registry := NewCapabilityRegistry()

	a := &declOnlyTool{name: "a"}
	b := &declOnlyTool{name: "b"}
	tools := []Tool{a, b}

	filtered := registry.FilterByCapabilities(tools, nil)
	require.Equal(t, tools, filtered)
}

func TestFilterByCapabilitiesNoMatches(t *testing.T) {
	registry := NewCapabilityRegistry()
	a := &taggedTool{declOnlyTool: declOnlyTool{name: "a"}, caps: []Capability{CapabilityMemory}}

	filtered := registry.FilterByCapabilities([]Tool{a}, []Capability{CapabilityImageGeneration})
	require.Empty(t, filtered)
}

func TestDefaultCapabilityRegistryBuiltins(t *testing.T) {
	require.Contains(t, DefaultCapabilityRegistry.Lookup("web_search"), CapabilityWebSearch)
	require.Contains(t, DefaultCapabilityRegistry.Lookup("think_tool"), CapabilityThink)
}
