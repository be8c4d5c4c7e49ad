//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// FinalReportComponent writes the final report from the research brief and
// the notes gathered by the supervisor phase.
type FinalReportComponent struct{}

// NewFinalReport creates the final-report component.
func NewFinalReport() *FinalReportComponent {
	return &FinalReportComponent{}
}

// Metadata implements graph.Component.
func (c *FinalReportComponent) Metadata() graph.ComponentMetadata {
	return graph.ComponentMetadata{
		Key:         FinalReportKey,
		Version:     Version,
		Name:        "Final Report Writer",
		Description: "Writes the final research report from the brief and collected notes.",
		Type:        graph.ComponentTypeUtility,
		Tags:        []string{"research"},
		InputSchema: map[string]*tool.Schema{
			StateKeyResearchBrief: {Type: tool.TypeString},
			StateKeyNotes:         {Type: tool.TypeArray},
		},
		OutputSchema: map[string]*tool.Schema{
			StateKeyFinalReport: {Type: tool.TypeString},
		},
	}
}

// BuildGraph implements graph.Component.
func (c *FinalReportComponent) BuildGraph(ctx context.Context, deps graph.Dependencies, config map[string]any) (*graph.Graph, error) {
	if deps.ModelFactory == nil {
		return nil, fmt.Errorf("final report: no model factory supplied")
	}
	m, err := deps.ModelFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("final report: model factory: %w", err)
	}
	warnUnknownKeys("final report", config)

	fn := func(ctx context.Context, state graph.State) (graph.State, error) {
		brief, _ := state[StateKeyResearchBrief].(string)
		prompt := fmt.Sprintf(finalReportPrompt, brief, notesText(state))
		reply, err := invokeOnce(ctx, m, []model.Message{model.NewUserMessage(prompt)}, nil)
		if err != nil {
			return nil, fmt.Errorf("final report: %w", err)
		}
		return graph.State{
			StateKeyFinalReport:    reply.Content,
			graph.StateKeyMessages: []model.Message{model.NewAssistantMessage(reply.Content)},
		}, nil
	}

	sg := graph.NewStateGraph(FinalReportKey, researchStateSchema()).
		AddNode("final_report", graph.NodeTypeLLM, fn).
		SetEntryPoint("final_report").
		AddEdge("final_report", graph.End)
	return sg.Compile()
}

func notesText(state graph.State) string {
	notes, _ := state[StateKeyNotes].([]any)
	if len(notes) == 0 {
		return "(no notes were gathered)"
	}
	var b strings.Builder
	for i, note := range notes {
		fmt.Fprintf(&b, "%d. %v\n", i+1, note)
	}
	return b.String()
}
