//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package research

import (
	"context"

	"github.com/weavegraph/weavegraph/tool"
	"github.com/weavegraph/weavegraph/tool/function"
)

// The research loop's synthetic tools. They are injected by the
// supervisor component only and tagged with the research capabilities so
// the capability filter keeps them away from ordinary agents.

type thinkInput struct {
	// Reflection is the reasoning text to record.
	Reflection string `json:"reflection" description:"Your reasoning about research progress and gaps."`
}

type thinkOutput struct {
	Recorded string `json:"recorded"`
}

// newThinkTool returns the strategic-reflection tool. It only echoes the
// reasoning back; its value is forcing an explicit deliberation step
// between searches.
func newThinkTool() tool.CallableTool {
	return function.NewFunctionTool(
		func(ctx context.Context, in thinkInput) (thinkOutput, error) {
			return thinkOutput{Recorded: in.Reflection}, nil
		},
		function.WithName("think_tool"),
		function.WithDescription("Record strategic reflection on research progress before deciding the next step."),
		function.WithCapabilities(tool.CapabilityThink, tool.CapabilityResearch),
	)
}

type researchCompleteInput struct {
	Summary string `json:"summary,omitempty" description:"Optional one-line summary of why research is complete."`
}

type researchCompleteOutput struct {
	Acknowledged bool `json:"acknowledged"`
}

// newResearchCompleteTool returns the completion-signal tool. The
// supervisor loop watches for calls to it rather than for its output.
func newResearchCompleteTool() tool.CallableTool {
	return function.NewFunctionTool(
		func(ctx context.Context, in researchCompleteInput) (researchCompleteOutput, error) {
			return researchCompleteOutput{Acknowledged: true}, nil
		},
		function.WithName("research_complete"),
		function.WithDescription("Declare that the gathered notes are sufficient to answer the research brief."),
		function.WithCapabilities(tool.CapabilityResearch),
	)
}

type conductResearchInput struct {
	// Topic must stand alone; the researcher sees nothing else.
	Topic string `json:"topic" description:"A complete, self-contained description of one research topic."`
}

// declarationTool binds a declaration on model requests without a local
// execution path. The supervisor loop intercepts calls to it.
type declarationTool struct {
	decl *tool.Declaration
}

func (t *declarationTool) Declaration() *tool.Declaration {
	return t.decl
}

// newConductResearchTool describes the delegation tool the supervisor
// calls. Execution is handled by the supervisor loop itself, which fans
// the calls out to researchers, so no standalone callable is registered.
func newConductResearchTool() tool.Tool {
	return &declarationTool{decl: &tool.Declaration{
		Name:        "conduct_research",
		Description: "Delegate one self-contained research topic to a dedicated researcher.",
		InputSchema: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"topic": {
					Type:        tool.TypeString,
					Description: "A complete, self-contained description of one research topic.",
				},
			},
			Required: []string{"topic"},
		},
	}}
}
