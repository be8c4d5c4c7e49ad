//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package function

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavegraph/weavegraph/tool"
)

type addInput struct {
	A int `json:"a" description:"first operand"`
	B int `json:"b" description:"second operand"`
}

type addOutput struct {
	Sum int `json:"sum"`
}

func newAddTool() *FunctionTool[addInput, addOutput] {
	return NewFunctionTool(
		func(ctx context.Context, in addInput) (addOutput, error) {
			return addOutput{Sum: in.A + in.B}, nil
		},
		WithName("add"),
		WithDescription("Adds two integers."),
	)
}

func TestFunctionToolCall(t *testing.T) {
	addTool := newAddTool()

	result, err := addTool.Call(context.Background(), []byte(`{"a": 2, "b": 3}`))
	require.NoError(t, err)
	require.Equal(t, addOutput{Sum: 5}, result)
}

func TestFunctionToolCallBadArguments(t *testing.T) {
	addTool := newAddTool()

	_, err := addTool.Call(context.Background(), []byte(`{"a": "two"}`))
	require.Error(t, err)
}

func TestFunctionToolDeclaration(t *testing.T) {
	addTool := newAddTool()

	declaration := addTool.Declaration()
	require.Equal(t, "add", declaration.Name)
	require.Equal(t, tool.TypeObject, declaration.InputSchema.Type)
	require.Contains(t, declaration.InputSchema.Properties, "a")
	require.Contains(t, declaration.InputSchema.Properties, "b")
	require.Equal(t, tool.TypeInteger, declaration.InputSchema.Properties["a"].Type)
	require.Equal(t, "first operand", declaration.InputSchema.Properties["a"].Description)
	require.ElementsMatch(t, []string{"a", "b"}, declaration.InputSchema.Required)
}

func TestFunctionToolCapabilities(t *testing.T) {
	searchTool := NewFunctionTool(
		func(ctx context.Context, in struct {
			Query string `json:"query"`
		}) (string, error) {
			return "results for " + in.Query, nil
		},
		WithName("custom_search"),
		WithDescription("Searches the web."),
		WithCapabilities(tool.CapabilityWebSearch),
	)

	require.Equal(t, []tool.Capability{tool.CapabilityWebSearch}, searchTool.Capabilities())

	registry := tool.NewCapabilityRegistry()
	filtered := registry.FilterByCapabilities([]tool.Tool{searchTool}, []tool.Capability{tool.CapabilityWebSearch})
	require.Len(t, filtered, 1)
}

func TestGenerateSchemaNested(t *testing.T) {
	type query struct {
		Terms []string `json:"terms"`
		Limit int      `json:"limit,omitempty"`
	}
	schema := generateSchema(query{})
	require.Equal(t, tool.TypeArray, schema.Properties["terms"].Type)
	require.Equal(t, tool.TypeString, schema.Properties["terms"].Items.Type)
	require.Equal(t, []string{"terms"}, schema.Required)
}
