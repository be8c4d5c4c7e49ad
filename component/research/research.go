//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package research provides the deep-research pipeline components:
// clarify, brief, supervisor, and final report. Each is an independently
// registered component; the workflow package assembles them into the full
// pipeline config.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/weavegraph/weavegraph/graph"
	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/tool"
)

// Component keys and the shared version.
const (
	ClarifyKey     = "research_clarify"
	BriefKey       = "research_brief"
	SupervisorKey  = "research_supervisor"
	FinalReportKey = "research_final_report"

	Version = "1.0.0"
)

// State fields the pipeline introduces on top of the reserved ones.
const (
	StateKeyResearchBrief     = "research_brief"
	StateKeyNotes             = "notes"
	StateKeyFinalReport       = "final_report"
	StateKeyNeedClarification = "need_clarification"
	StateKeySkipResearch      = "skip_research"
)

// researchStateSchema returns the message schema extended with the
// pipeline's fields. Notes use REPLACE; components manage append
// semantics themselves.
func researchStateSchema() *graph.StateSchema {
	schema := graph.MessagesStateSchema()
	schema.AddField(StateKeyResearchBrief, graph.StateField{
		Default: func() any { return "" },
		Reducer: graph.DefaultReducer,
	})
	schema.AddField(StateKeyNotes, graph.StateField{
		Default: func() any { return []any{} },
		Reducer: graph.DefaultReducer,
	})
	schema.AddField(StateKeyFinalReport, graph.StateField{
		Default: func() any { return "" },
		Reducer: graph.DefaultReducer,
	})
	schema.AddField(StateKeyNeedClarification, graph.StateField{
		Default: func() any { return false },
		Reducer: graph.DefaultReducer,
	})
	schema.AddField(StateKeySkipResearch, graph.StateField{
		Default: func() any { return false },
		Reducer: graph.DefaultReducer,
	})
	return schema
}

// decodeModelJSON parses a JSON object out of a model reply, tolerating
// markdown code fences around the payload.
func decodeModelJSON(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	return json.Unmarshal([]byte(trimmed), out)
}

// invokeOnce sends one request and waits for the final reply.
func invokeOnce(ctx context.Context, m model.Model, messages []model.Message, tools []tool.Tool) (*model.Message, error) {
	request := &model.Request{Messages: messages}
	if len(tools) > 0 {
		request.Tools = make(map[string]tool.Tool, len(tools))
		for _, t := range tools {
			request.Tools[t.Declaration().Name] = t
		}
	}
	responses, err := m.GenerateContent(ctx, request)
	if err != nil {
		return nil, err
	}
	var final *model.Response
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case rsp, ok := <-responses:
			if !ok {
				if final == nil {
					return nil, errors.New("model returned no response")
				}
				if final.Error != nil {
					return nil, final.Error
				}
				if len(final.Choices) == 0 {
					return nil, errors.New("model response has no choices")
				}
				msg := final.Choices[0].Message
				return &msg, nil
			}
			if rsp.Error != nil {
				return nil, rsp.Error
			}
			if !rsp.IsPartial {
				final = rsp
			}
		}
	}
}

// warnUnknownKeys logs config keys a component does not recognize.
// Unknown keys never fail a build.
func warnUnknownKeys(component string, config map[string]any, known ...string) {
	for key := range config {
		recognized := false
		for _, k := range known {
			if key == k {
				recognized = true
				break
			}
		}
		if !recognized {
			log.Warnf("%s: ignoring unrecognized config key %q", component, key)
		}
	}
}

// conversationText renders the running history for prompt interpolation.
func conversationText(messages []model.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.Role == model.RoleSystem || msg.Content == "" {
			continue
		}
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
