//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package component

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/graph"
)

type stubComponent struct {
	key     string
	version string
}

func (c *stubComponent) Metadata() graph.ComponentMetadata {
	return graph.ComponentMetadata{
		Key:     c.key,
		Version: c.version,
		Type:    graph.ComponentTypeUtility,
	}
}

func (c *stubComponent) BuildGraph(ctx context.Context, deps graph.Dependencies, config map[string]any) (*graph.Graph, error) {
	return nil, nil
}

func TestRegistryRejectsDuplicateAndBadVersions(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubComponent{key: "echo", version: "1.0.0"}))
	require.Error(t, registry.Register(&stubComponent{key: "echo", version: "1.0.0"}))
	require.Error(t, registry.Register(&stubComponent{key: "echo", version: "1.0"}))
	require.Error(t, registry.Register(&stubComponent{key: "", version: "1.0.0"}))
}

func TestResolveExactVersion(t *testing.T) {
	registry := NewRegistry()
	v1 := &stubComponent{key: "echo", version: "1.0.0"}
	v2 := &stubComponent{key: "echo", version: "1.1.0"}
	registry.MustRegister(v1)
	registry.MustRegister(v2)

	resolved, err := registry.Resolve("echo", "1.0.0")
	require.NoError(t, err)
	require.Same(t, graph.Component(v1), resolved)

	_, err = registry.Resolve("echo", "3.0.0")
	require.Error(t, err)
	_, err = registry.Resolve("ghost", "")
	require.Error(t, err)
}

func TestResolveEmptyConstraintPicksLatest(t *testing.T) {
	registry := NewRegistry()
	latest := &stubComponent{key: "echo", version: "2.0.1"}
	registry.MustRegister(&stubComponent{key: "echo", version: "1.9.9"})
	registry.MustRegister(latest)

	resolved, err := registry.Resolve("echo", "")
	require.NoError(t, err)
	require.Same(t, graph.Component(latest), resolved)

	got, err := registry.Get("echo")
	require.NoError(t, err)
	require.Same(t, graph.Component(latest), got)

	_, err = registry.Get("missing")
	require.Error(t, err)
}

func TestResolveCaretConstraint(t *testing.T) {
	registry := NewRegistry()
	compatible := &stubComponent{key: "echo", version: "1.4.2"}
	registry.MustRegister(&stubComponent{key: "echo", version: "1.0.0"})
	registry.MustRegister(compatible)
	registry.MustRegister(&stubComponent{key: "echo", version: "2.0.0"})

	resolved, err := registry.Resolve("echo", "^1.2.0")
	require.NoError(t, err)
	require.Same(t, graph.Component(compatible), resolved)

	// Constraints may omit the patch segment.
	resolved, err = registry.Resolve("echo", "^1.0")
	require.NoError(t, err)
	require.Same(t, graph.Component(compatible), resolved)

	// Floor above every registered 1.x release.
	_, err = registry.Resolve("echo", "^1.5.0")
	require.Error(t, err)
}

func TestListIsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&stubComponent{key: "b", version: "1.0.0"})
	registry.MustRegister(&stubComponent{key: "a", version: "2.0.0"})
	registry.MustRegister(&stubComponent{key: "a", version: "1.0.0"})

	listed := registry.List()
	require.Len(t, listed, 3)
	require.Equal(t, "a", listed[0].Key)
	require.Equal(t, "1.0.0", listed[0].Version)
	require.Equal(t, "a", listed[1].Key)
	require.Equal(t, "2.0.0", listed[1].Version)
	require.Equal(t, "b", listed[2].Key)
}
