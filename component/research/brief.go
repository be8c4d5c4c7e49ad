//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package research

import (
	"context"
	"fmt"

	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// BriefComponent condenses the conversation into a self-contained research
// brief that downstream phases work from.
type BriefComponent struct{}

// NewBrief creates the brief component.
func NewBrief() *BriefComponent {
	return &BriefComponent{}
}

// Metadata implements graph.Component.
func (c *BriefComponent) Metadata() graph.ComponentMetadata {
	return graph.ComponentMetadata{
		Key:         BriefKey,
		Version:     Version,
		Name:        "Research Brief Writer",
		Description: "Turns the conversation into a focused research brief.",
		Type:        graph.ComponentTypeUtility,
		Tags:        []string{"research"},
		OutputSchema: map[string]*tool.Schema{
			StateKeyResearchBrief: {Type: tool.TypeString},
		},
	}
}

// BuildGraph implements graph.Component.
func (c *BriefComponent) BuildGraph(ctx context.Context, deps graph.Dependencies, config map[string]any) (*graph.Graph, error) {
	if deps.ModelFactory == nil {
		return nil, fmt.Errorf("brief: no model factory supplied")
	}
	m, err := deps.ModelFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("brief: model factory: %w", err)
	}
	warnUnknownKeys("brief", config)

	fn := func(ctx context.Context, state graph.State) (graph.State, error) {
		prompt := fmt.Sprintf(briefPrompt, conversationText(state.Messages()))
		reply, err := invokeOnce(ctx, m, []model.Message{model.NewUserMessage(prompt)}, nil)
		if err != nil {
			return nil, fmt.Errorf("brief: %w", err)
		}
		return graph.State{StateKeyResearchBrief: reply.Content}, nil
	}

	sg := graph.NewStateGraph(BriefKey, researchStateSchema()).
		AddNode("brief", graph.NodeTypeLLM, fn).
		SetEntryPoint("brief").
		AddEdge("brief", graph.End)
	return sg.Compile()
}
