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
	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// clarifyDecision is the JSON shape the clarify model is prompted for.
type clarifyDecision struct {
	NeedClarification bool   `json:"need_clarification"`
	SkipResearch      bool   `json:"skip_research"`
	Question          string `json:"question"`
	Verification      string `json:"verification"`
}

// ClarifyComponent decides whether the user's request needs a clarifying
// question before research starts, and whether research can be skipped
// entirely for follow-up requests.
type ClarifyComponent struct{}

// NewClarify creates the clarify component.
func NewClarify() *ClarifyComponent {
	return &ClarifyComponent{}
}

// Metadata implements graph.Component.
func (c *ClarifyComponent) Metadata() graph.ComponentMetadata {
	return graph.ComponentMetadata{
		Key:         ClarifyKey,
		Version:     Version,
		Name:        "Research Clarifier",
		Description: "Decides whether to ask a clarifying question before researching.",
		Type:        graph.ComponentTypeUtility,
		Tags:        []string{"research"},
		OutputSchema: map[string]*tool.Schema{
			StateKeyNeedClarification: {Type: tool.TypeBoolean},
			StateKeySkipResearch:      {Type: tool.TypeBoolean},
		},
	}
}

// BuildGraph implements graph.Component.
func (c *ClarifyComponent) BuildGraph(ctx context.Context, deps graph.Dependencies, config map[string]any) (*graph.Graph, error) {
	if deps.ModelFactory == nil {
		return nil, fmt.Errorf("clarify: no model factory supplied")
	}
	m, err := deps.ModelFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("clarify: model factory: %w", err)
	}
	warnUnknownKeys("clarify", config)

	sg := graph.NewStateGraph(ClarifyKey, researchStateSchema()).
		AddNode("clarify", graph.NodeTypeLLM, newClarifyNodeFunc(m)).
		SetEntryPoint("clarify").
		AddEdge("clarify", graph.End)
	return sg.Compile()
}

func newClarifyNodeFunc(m model.Model) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		prompt := fmt.Sprintf(clarifyPrompt, conversationText(state.Messages()))
		reply, err := invokeOnce(ctx, m, []model.Message{model.NewUserMessage(prompt)}, nil)
		if err != nil {
			return nil, fmt.Errorf("clarify: %w", err)
		}

		var decision clarifyDecision
		if err := decodeModelJSON(reply.Content, &decision); err != nil {
			// An unparseable reply means no reliable signal; proceed to
			// research rather than blocking the run.
			log.Warnf("clarify: undecodable model reply, proceeding without clarification: %v", err)
			return graph.State{
				StateKeyNeedClarification: false,
				StateKeySkipResearch:      false,
			}, nil
		}

		response := decision.Verification
		if decision.NeedClarification {
			response = decision.Question
		}
		update := graph.State{
			StateKeyNeedClarification: decision.NeedClarification,
			StateKeySkipResearch:      decision.SkipResearch,
		}
		if response != "" {
			update[graph.StateKeyMessages] = []model.Message{model.NewAssistantMessage(response)}
		}
		return update, nil
	}
}
