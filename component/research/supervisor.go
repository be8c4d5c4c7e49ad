//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

const (
	defaultSupervisorIterations = 6
	supervisorIterationsCeiling = 20
	defaultConcurrentUnits      = 5
	concurrentUnitsCeiling      = 20
	// researcherIterations bounds each delegated researcher's own
	// search loop.
	researcherIterations = 5
)

// supervisorOptions are the recognized config keys with defaults applied.
type supervisorOptions struct {
	maxIterations      int
	maxConcurrentUnits int
}

func parseSupervisorOptions(config map[string]any) supervisorOptions {
	opts := supervisorOptions{
		maxIterations:      defaultSupervisorIterations,
		maxConcurrentUnits: defaultConcurrentUnits,
	}
	warnUnknownKeys("supervisor", config, "max_iterations", "max_concurrent_units")
	if n, ok := configInt(config["max_iterations"]); ok {
		opts.maxIterations = clamp(n, 1, supervisorIterationsCeiling)
	}
	if n, ok := configInt(config["max_concurrent_units"]); ok {
		opts.maxConcurrentUnits = clamp(n, 1, concurrentUnitsCeiling)
	}
	return opts
}

func configInt(value any) (int, bool) {
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

func clamp(n, low, high int) int {
	if n < low {
		return low
	}
	if n > high {
		return high
	}
	return n
}

// SupervisorComponent runs the research phase: a planning model delegates
// topics to researchers, which fan out concurrently, and their findings
// accumulate as notes for the report phase. The loop is opaque to the
// outer graph; the component either succeeds or returns the error.
type SupervisorComponent struct{}

// NewSupervisor creates the supervisor component.
func NewSupervisor() *SupervisorComponent {
	return &SupervisorComponent{}
}

// Metadata implements graph.Component.
func (c *SupervisorComponent) Metadata() graph.ComponentMetadata {
	return graph.ComponentMetadata{
		Key:         SupervisorKey,
		Version:     Version,
		Name:        "Research Supervisor",
		Description: "Plans research, delegates topics to concurrent researchers, and gathers notes.",
		Type:        graph.ComponentTypeAgent,
		Tags:        []string{"research", "agent"},
		RequiredCapabilities: []tool.Capability{
			tool.CapabilityWebSearch,
			tool.CapabilityResearch,
			tool.CapabilityThink,
		},
		ConfigSchema: map[string]*tool.Schema{
			"max_iterations": {
				Type:        tool.TypeInteger,
				Description: "Upper bound on supervisor planning rounds.",
				Default:     defaultSupervisorIterations,
			},
			"max_concurrent_units": {
				Type:        tool.TypeInteger,
				Description: "Upper bound on researchers running at once.",
				Default:     defaultConcurrentUnits,
			},
		},
		InputSchema: map[string]*tool.Schema{
			StateKeyResearchBrief: {Type: tool.TypeString},
		},
		OutputSchema: map[string]*tool.Schema{
			StateKeyNotes: {Type: tool.TypeArray},
		},
	}
}

// BuildGraph implements graph.Component. Research is impossible without a
// web-search tool, so its absence fails the build rather than the first
// invocation.
func (c *SupervisorComponent) BuildGraph(ctx context.Context, deps graph.Dependencies, config map[string]any) (*graph.Graph, error) {
	if deps.ModelFactory == nil {
		return nil, fmt.Errorf("supervisor: no model factory supplied")
	}
	searchTools := deps.CapabilityRegistry().FilterByCapabilities(deps.Tools, []tool.Capability{tool.CapabilityWebSearch})
	if len(searchTools) == 0 {
		return nil, fmt.Errorf("supervisor: %w: %s", graph.ErrMissingCapability, tool.CapabilityWebSearch)
	}
	m, err := deps.ModelFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("supervisor: model factory: %w", err)
	}
	opts := parseSupervisorOptions(config)

	loop := &supervisorLoop{
		model:       m,
		searchTools: searchTools,
		opts:        opts,
	}
	sg := graph.NewStateGraph(SupervisorKey, researchStateSchema()).
		AddNode("supervisor", graph.NodeTypeLLM, loop.run).
		SetEntryPoint("supervisor").
		AddEdge("supervisor", graph.End)
	return sg.Compile()
}

type supervisorLoop struct {
	model       model.Model
	searchTools []tool.Tool
	opts        supervisorOptions
}

// run drives the planning loop until the model declares research complete
// or the round cap fires. All accumulated findings land in the notes
// state field.
func (l *supervisorLoop) run(ctx context.Context, state graph.State) (graph.State, error) {
	brief, _ := state[StateKeyResearchBrief].(string)
	supervisorTools := []tool.Tool{newConductResearchTool(), newResearchCompleteTool(), newThinkTool()}

	messages := []model.Message{
		model.NewSystemMessage(fmt.Sprintf(supervisorPrompt, brief)),
		model.NewUserMessage("Begin planning the research."),
	}
	var notes []any

	for round := 0; round < l.opts.maxIterations; round++ {
		reply, err := invokeOnce(ctx, l.model, messages, supervisorTools)
		if err != nil {
			return nil, fmt.Errorf("supervisor: %w", err)
		}
		messages = append(messages, *reply)

		if len(reply.ToolCalls) == 0 {
			// The model stopped delegating without the explicit signal;
			// treat its reply as the end of planning.
			break
		}
		toolMessages, findings, done := l.handleToolCalls(ctx, reply.ToolCalls)
		messages = append(messages, toolMessages...)
		for _, finding := range findings {
			notes = append(notes, finding)
		}
		if done {
			break
		}
	}

	existing, _ := state[StateKeyNotes].([]any)
	return graph.State{StateKeyNotes: append(existing, notes...)}, nil
}

// handleToolCalls executes one round of supervisor tool calls. The
// conduct_research calls fan out on a worker pool bounded by the
// concurrency config; think and completion calls run inline.
func (l *supervisorLoop) handleToolCalls(ctx context.Context, calls []model.ToolCall) ([]model.Message, []string, bool) {
	var delegations []model.ToolCall
	var toolMessages []model.Message
	done := false

	for _, call := range calls {
		switch call.Function.Name {
		case "conduct_research":
			delegations = append(delegations, call)
		case "research_complete":
			done = true
			toolMessages = append(toolMessages,
				model.NewToolMessage(call.ID, call.Function.Name, "Research marked complete."))
		case "think_tool":
			var in thinkInput
			if err := json.Unmarshal(call.Function.Arguments, &in); err != nil {
				log.Warnf("supervisor: bad think_tool arguments: %v", err)
			}
			toolMessages = append(toolMessages,
				model.NewToolMessage(call.ID, call.Function.Name, in.Reflection))
		default:
			toolMessages = append(toolMessages,
				model.NewToolMessage(call.ID, call.Function.Name,
					fmt.Sprintf("Unknown tool %s.", call.Function.Name)))
		}
	}

	findings := make([]string, len(delegations))
	if len(delegations) > 0 {
		pool, err := ants.NewPool(l.opts.maxConcurrentUnits)
		if err != nil {
			// Pool creation only fails on a non-positive size; fall back
			// to serial execution.
			log.Warnf("supervisor: worker pool unavailable, researching serially: %v", err)
			for i, call := range delegations {
				findings[i] = l.research(ctx, call)
			}
		} else {
			var wg sync.WaitGroup
			for i, call := range delegations {
				wg.Add(1)
				i, call := i, call
				if err := pool.Submit(func() {
					defer wg.Done()
					findings[i] = l.research(ctx, call)
				}); err != nil {
					findings[i] = fmt.Sprintf("Research unit could not start: %v.", err)
					wg.Done()
				}
			}
			wg.Wait()
			pool.Release()
		}
	}
	for i, call := range delegations {
		toolMessages = append(toolMessages,
			model.NewToolMessage(call.ID, call.Function.Name, findings[i]))
	}
	return toolMessages, findings, done
}

// research runs one delegated unit. Failures become status text instead
// of aborting the round, so one bad unit cannot lose the findings of the
// others.
func (l *supervisorLoop) research(ctx context.Context, call model.ToolCall) string {
	var in conductResearchInput
	if err := json.Unmarshal(call.Function.Arguments, &in); err != nil {
		return fmt.Sprintf("Research unit received undecodable arguments: %v.", err)
	}
	findings, err := l.runResearcher(ctx, in.Topic)
	if err != nil {
		log.Warnf("supervisor: research unit failed on topic %q: %v", in.Topic, err)
		return fmt.Sprintf("Research unit failed: %v.", err)
	}
	return findings
}

// runResearcher is the inner search loop of one research unit: the model
// calls the web tools until it has enough, then writes up findings.
func (l *supervisorLoop) runResearcher(ctx context.Context, topic string) (string, error) {
	researcherTools := append([]tool.Tool{newThinkTool()}, l.searchTools...)
	byName := make(map[string]tool.Tool, len(researcherTools))
	for _, t := range researcherTools {
		byName[t.Declaration().Name] = t
	}

	messages := []model.Message{
		model.NewSystemMessage(fmt.Sprintf(researcherPrompt, topic)),
		model.NewUserMessage("Research the topic and report your findings."),
	}
	for i := 0; i < researcherIterations; i++ {
		reply, err := invokeOnce(ctx, l.model, messages, researcherTools)
		if err != nil {
			return "", err
		}
		messages = append(messages, *reply)
		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}
		for _, call := range reply.ToolCalls {
			messages = append(messages,
				model.NewToolMessage(call.ID, call.Function.Name, l.callResearcherTool(ctx, byName, call)))
		}
	}

	// The loop cap fired mid-search; ask for a write-up of what exists.
	messages = append(messages, model.NewUserMessage("Stop searching and write up your findings now."))
	reply, err := invokeOnce(ctx, l.model, messages, nil)
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

func (l *supervisorLoop) callResearcherTool(ctx context.Context, tools map[string]tool.Tool, call model.ToolCall) string {
	t, ok := tools[call.Function.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool %s.", call.Function.Name)
	}
	callable, ok := t.(tool.CallableTool)
	if !ok {
		return fmt.Sprintf("Tool %s cannot be executed here.", call.Function.Name)
	}
	result, err := callable.Call(ctx, call.Function.Arguments)
	if err != nil {
		return fmt.Sprintf("Tool %s failed: %v.", call.Function.Name, err)
	}
	if s, ok := result.(string); ok {
		return s
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
