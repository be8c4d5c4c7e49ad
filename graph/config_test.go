//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`{
		"version": "1.0",
		"nodes": [{"id": "route", "type": "ROUTER"}],
		"edges": [{"from_node": "route", "to_node": "END"}],
		"entry_point": "route"
	}`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	require.Equal(t, SupportedVersion, cfg.Version)
	require.Len(t, cfg.Nodes, 1)
	require.Equal(t, NodeTypeRouter, cfg.Nodes[0].Type)
	require.Equal(t, End, cfg.Edges[0].ToNode)

	_, err = ParseConfig([]byte("{not json"))
	require.Error(t, err)
}
