//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package react provides the reason-and-act agent component: an LLM node
// looping through a tool node until the model stops requesting tools or
// the iteration cap fires.
package react

import (
	"context"
	"fmt"

	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// Key identifies the component in registries and component references.
const Key = "react_agent"

// Version is the component's semantic version.
const Version = "1.0.0"

const (
	nodeAgent = "agent"
	nodeTools = "tools"

	// StateKeyIterations counts agent node runs within one invocation.
	StateKeyIterations = "react_iterations"

	defaultSystemPrompt  = "You are a helpful assistant."
	defaultMaxIterations = 10
	maxIterationsCeiling = 100

	// maxIterationsContent is the terminal reply once the loop cap fires.
	// Hitting the cap is a designed stop, not a failure.
	maxIterationsContent = "I reached the maximum number of reasoning iterations. " +
		"Here is my best answer based on the work so far."
)

// options are the recognized config keys with their defaults applied.
type options struct {
	systemPrompt  string
	maxIterations int
}

// parseOptions decodes the config map. Unrecognized keys and malformed
// values are logged and ignored so configs written against newer component
// revisions still build.
func parseOptions(config map[string]any) options {
	opts := options{
		systemPrompt:  defaultSystemPrompt,
		maxIterations: defaultMaxIterations,
	}
	for key, value := range config {
		switch key {
		case "system_prompt":
			s, ok := value.(string)
			if !ok {
				log.Warnf("react: system_prompt is %T, want string; using default", value)
				continue
			}
			opts.systemPrompt = s
		case "max_iterations":
			n, ok := intValue(value)
			if !ok {
				log.Warnf("react: max_iterations is %T, want int; using default", value)
				continue
			}
			if n < 1 {
				n = 1
			}
			if n > maxIterationsCeiling {
				n = maxIterationsCeiling
			}
			opts.maxIterations = n
		default:
			log.Warnf("react: ignoring unrecognized config key %q", key)
		}
	}
	return opts
}

func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Component implements graph.Component. It is stateless; every
// per-invocation datum lives in graph state.
type Component struct{}

// New creates the ReAct component.
func New() *Component {
	return &Component{}
}

// Metadata implements graph.Component.
func (c *Component) Metadata() graph.ComponentMetadata {
	return graph.ComponentMetadata{
		Key:         Key,
		Version:     Version,
		Name:        "ReAct Agent",
		Description: "Reasoning loop that alternates model calls with tool execution.",
		Type:        graph.ComponentTypeAgent,
		Tags:        []string{"agent", "tools"},
		ConfigSchema: map[string]*tool.Schema{
			"system_prompt": {
				Type:        tool.TypeString,
				Description: "System message injected before every model call.",
				Default:     defaultSystemPrompt,
			},
			"max_iterations": {
				Type:        tool.TypeInteger,
				Description: "Upper bound on agent loop iterations, 1 to 100.",
				Default:     defaultMaxIterations,
			},
		},
	}
}

// BuildGraph implements graph.Component. With tools present the graph is
// the agent/tools loop; with none it degenerates to a single model call.
func (c *Component) BuildGraph(ctx context.Context, deps graph.Dependencies, config map[string]any) (*graph.Graph, error) {
	if deps.ModelFactory == nil {
		return nil, fmt.Errorf("react: no model factory supplied")
	}
	m, err := deps.ModelFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("react: model factory: %w", err)
	}
	opts := parseOptions(config)

	schema := graph.MessagesStateSchema()
	schema.AddField(StateKeyIterations, graph.StateField{
		Default: func() any { return 0 },
		Reducer: graph.DefaultReducer,
	})

	sg := graph.NewStateGraph(Key, schema).
		AddNode(nodeAgent, graph.NodeTypeLLM, newAgentNodeFunc(m, deps.Tools, opts)).
		SetEntryPoint(nodeAgent)

	if len(deps.Tools) == 0 {
		sg.AddEdge(nodeAgent, graph.End)
		return sg.Compile()
	}

	sg.AddNode(nodeTools, graph.NodeTypeTool, graph.NewToolsNodeFunc(deps.Tools, graph.ToolNodeOptions{
		NodeID:     nodeTools,
		ExecuteAll: true,
	}))
	sg.AddConditionalEdge(nodeAgent, nodeTools, &graph.EdgeCondition{Type: graph.ConditionHasToolCalls}, 1)
	sg.AddConditionalEdge(nodeAgent, graph.End, &graph.EdgeCondition{Type: graph.ConditionNoToolCalls}, 0)
	sg.AddEdge(nodeTools, nodeAgent)
	return sg.Compile()
}

// newAgentNodeFunc wraps the plain LLM node with the iteration cap. The
// counter rides in state so concurrent invocations of one compiled graph
// cannot interfere.
func newAgentNodeFunc(m model.Model, tools []tool.Tool, opts options) graph.NodeFunc {
	llm := graph.NewLLMNodeFunc(m, graph.LLMNodeOptions{
		NodeID:         nodeAgent,
		PromptTemplate: opts.systemPrompt,
		Tools:          tools,
	})
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		iteration, _ := intValue(state[StateKeyIterations])
		if iteration >= opts.maxIterations {
			log.Debugf("react: iteration cap %d reached, finishing", opts.maxIterations)
			return graph.State{
				graph.StateKeyMessages: []model.Message{model.NewAssistantMessage(maxIterationsContent)},
			}, nil
		}
		update, err := llm(ctx, state)
		if err != nil {
			return nil, err
		}
		update[StateKeyIterations] = iteration + 1
		return update, nil
	}
}
