//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package workflow provides factories for the builtin graph configs. Each
// factory returns a fresh GraphConfig so callers can mutate or persist
// their copy without affecting later calls.
package workflow

import (
	"github.com/weavegraph/weavegraph/component/react"
	"github.com/weavegraph/weavegraph/component/research"
	"github.com/weavegraph/weavegraph/graph"
)

// ReActOptions tune the ReAct workflow factory.
type ReActOptions struct {
	// SystemPrompt overrides the agent's system prompt. Empty keeps the
	// component default.
	SystemPrompt string
	// MaxIterations overrides the loop cap. Zero keeps the component
	// default.
	MaxIterations int
}

// NewReActConfig returns the config for a single ReAct agent workflow:
// one COMPONENT node wrapping the react_agent component.
func NewReActConfig(opts ReActOptions) *graph.GraphConfig {
	overrides := map[string]any{}
	if opts.SystemPrompt != "" {
		overrides["system_prompt"] = opts.SystemPrompt
	}
	if opts.MaxIterations > 0 {
		overrides["max_iterations"] = opts.MaxIterations
	}
	return &graph.GraphConfig{
		Version: graph.SupportedVersion,
		Nodes: []*graph.GraphNodeConfig{
			{
				ID:   "agent",
				Name: "ReAct Agent",
				Type: graph.NodeTypeComponent,
				ComponentConfig: &graph.ComponentNodeConfig{
					Component: graph.ComponentReference{
						Key:     react.Key,
						Version: "^" + react.Version,
					},
					ConfigOverrides: overrides,
				},
			},
		},
		Edges: []*graph.GraphEdgeConfig{
			{FromNode: "agent", ToNode: graph.End},
		},
		EntryPoint: "agent",
		Metadata:   map[string]any{"name": "react"},
	}
}

// DeepResearchOptions tune the deep-research workflow factory.
type DeepResearchOptions struct {
	// AllowClarification includes the clarify phase. When false the
	// pipeline starts at the brief phase; the clarify node is absent
	// from the config, not skipped at runtime.
	AllowClarification bool
	// MaxIterations overrides the supervisor's planning round cap.
	// Zero keeps the component default.
	MaxIterations int
	// MaxConcurrentUnits overrides how many researchers run at once.
	// Zero keeps the component default.
	MaxConcurrentUnits int
	// MaxExecutionTimeSeconds sets the advisory wall-clock budget on the
	// config. Zero leaves it unset.
	MaxExecutionTimeSeconds int
}

// NewDeepResearchConfig returns the config for the multi-phase research
// pipeline: an optional clarify phase, then brief, supervisor, and final
// report.
func NewDeepResearchConfig(opts DeepResearchOptions) *graph.GraphConfig {
	supervisorOverrides := map[string]any{}
	if opts.MaxIterations > 0 {
		supervisorOverrides["max_iterations"] = opts.MaxIterations
	}
	if opts.MaxConcurrentUnits > 0 {
		supervisorOverrides["max_concurrent_units"] = opts.MaxConcurrentUnits
	}

	config := &graph.GraphConfig{
		Version: graph.SupportedVersion,
		Nodes: []*graph.GraphNodeConfig{
			componentNode("brief", "Research Brief", research.BriefKey, nil),
			componentNode("supervisor", "Research Supervisor", research.SupervisorKey, supervisorOverrides),
			componentNode("final_report", "Final Report", research.FinalReportKey, nil),
		},
		Edges: []*graph.GraphEdgeConfig{
			{FromNode: "brief", ToNode: "supervisor"},
			{FromNode: "supervisor", ToNode: "final_report"},
			{FromNode: "final_report", ToNode: graph.End},
		},
		EntryPoint: "brief",
		CustomStateFields: map[string]graph.StateFieldSchema{
			research.StateKeyResearchBrief:     {Type: "string", Default: ""},
			research.StateKeyNotes:             {Type: "list", Reducer: graph.ReducerReplace},
			research.StateKeyFinalReport:       {Type: "string", Default: ""},
			research.StateKeyNeedClarification: {Type: "boolean", Default: false},
			research.StateKeySkipResearch:      {Type: "boolean", Default: false},
		},
		MaxExecutionTimeSeconds: opts.MaxExecutionTimeSeconds,
		Metadata:                map[string]any{"name": "deep_research"},
	}

	if opts.AllowClarification {
		config.Nodes = append([]*graph.GraphNodeConfig{
			componentNode("clarify", "Clarify Request", research.ClarifyKey, nil),
		}, config.Nodes...)
		config.Edges = append([]*graph.GraphEdgeConfig{
			{
				FromNode: "clarify",
				ToNode:   graph.End,
				Priority: 2,
				Label:    "ask the user",
				Condition: truthyCondition(research.StateKeyNeedClarification),
			},
			{
				FromNode: "clarify",
				ToNode:   graph.End,
				Priority: 1,
				Label:    "no research needed",
				Condition: truthyCondition(research.StateKeySkipResearch),
			},
			{
				FromNode: "clarify",
				ToNode:   "brief",
				Priority: 0,
				Label:    "proceed",
				Condition: &graph.EdgeCondition{
					Type: graph.ConditionCustom,
					Custom: &graph.CustomCondition{
						StateKey: research.StateKeyNeedClarification,
						Operator: graph.OperatorFalsy,
					},
				},
			},
		}, config.Edges...)
		config.EntryPoint = "clarify"
	}
	return config
}

func componentNode(id, name, key string, overrides map[string]any) *graph.GraphNodeConfig {
	return &graph.GraphNodeConfig{
		ID:   id,
		Name: name,
		Type: graph.NodeTypeComponent,
		ComponentConfig: &graph.ComponentNodeConfig{
			Component: graph.ComponentReference{
				Key:     key,
				Version: "^" + research.Version,
			},
			ConfigOverrides: overrides,
		},
	}
}

func truthyCondition(stateKey string) *graph.EdgeCondition {
	return &graph.EdgeCondition{
		Type: graph.ConditionCustom,
		Custom: &graph.CustomCondition{
			StateKey: stateKey,
			Operator: graph.OperatorTruthy,
		},
	}
}
