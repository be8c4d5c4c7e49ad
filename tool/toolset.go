//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package tool

import "context"

// ToolSet defines an interface for managing a set of tools.
// It provides methods to retrieve the current tools and to perform cleanup.
type ToolSet interface {
	// Tools returns the Tool instances available in the set.
	Tools(context.Context) []Tool

	// Close releases any resources held by the ToolSet.
	Close() error

	// Name returns the name of the ToolSet for identification and conflict
	// resolution.
	Name() string
}

// FilterFunc is a predicate over a tool used when filtering tool sets.
type FilterFunc func(ctx context.Context, tool Tool) bool

// FilterTools filters tools from a list of tools based on a filter function.
func FilterTools(ctx context.Context, tools []Tool, filter FilterFunc) []Tool {
	filtered := make([]Tool, 0, len(tools))
	for _, t := range tools {
		if filter(ctx, t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// FilterToolSet creates a new ToolSet that filters tools from the original
// ToolSet.
func FilterToolSet(toolset ToolSet, filter FilterFunc) ToolSet {
	return &filteredToolSet{
		original: toolset,
		filter:   filter,
	}
}

// filteredToolSet wraps a ToolSet to filter its tools.
type filteredToolSet struct {
	original ToolSet
	filter   FilterFunc
}

// Tools returns filtered tools from the original ToolSet.
func (f *filteredToolSet) Tools(ctx context.Context) []Tool {
	originalTools := f.original.Tools(ctx)
	if f.filter == nil {
		return originalTools
	}
	var result []Tool
	for _, t := range originalTools {
		if f.filter(ctx, t) {
			result = append(result, t)
		}
	}
	return result
}

// Close implements the ToolSet interface.
func (f *filteredToolSet) Close() error {
	return f.original.Close()
}

// Name implements the ToolSet interface.
func (f *filteredToolSet) Name() string {
	return f.original.Name()
}

// NewIncludeToolNamesFilter creates a FilterFunc that includes only the
// specified tool names.
func NewIncludeToolNamesFilter(names ...string) FilterFunc {
	allowedNames := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowedNames[name] = struct{}{}
	}
	return func(ctx context.Context, tool Tool) bool {
		declaration := tool.Declaration()
		if declaration == nil {
			return false
		}
		_, isAllowed := allowedNames[declaration.Name]
		return isAllowed
	}
}

// NewExcludeToolNamesFilter creates a FilterFunc that excludes the specified
// tool names.
func NewExcludeToolNamesFilter(names ...string) FilterFunc {
	excludedNames := make(map[string]struct{}, len(names))
	for _, name := range names {
		excludedNames[name] = struct{}{}
	}
	return func(ctx context.Context, tool Tool) bool {
		declaration := tool.Declaration()
		if declaration == nil {
			return false
		}
		_, isExcluded := excludedNames[declaration.Name]
		return !isExcluded
	}
}
