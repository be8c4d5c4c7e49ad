//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package openai provides OpenAI-compatible model implementations.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/telemetry"
	"github.com/weavegraph/weavegraph/tool"
)

const functionToolType = "function"

// Model implements model.Model backed by the OpenAI chat completions API.
// It also works against OpenAI-compatible endpoints via WithBaseURL.
type Model struct {
	client            openai.Client
	name              string
	channelBufferSize int
	temperature       *float64
}

var _ model.Model = (*Model)(nil)

// New creates a new OpenAI model with the given name.
func New(name string, opts ...Option) *Model {
	o := options{
		channelBufferSize: defaultChannelBufferSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	clientOpts = append(clientOpts, o.extraOptions...)

	return &Model{
		client:            openai.NewClient(clientOpts...),
		name:              name,
		channelBufferSize: o.channelBufferSize,
		temperature:       o.temperature,
	}
}

// NewFactory returns a model.Factory producing OpenAI models. Factory
// options override the configured model name and temperature per call.
func NewFactory(name string, opts ...Option) model.Factory {
	return func(_ context.Context, factoryOpts ...model.FactoryOption) (model.Model, error) {
		var fo model.FactoryOptions
		for _, opt := range factoryOpts {
			opt(&fo)
		}
		modelName := name
		if fo.ModelName != "" {
			modelName = fo.ModelName
		}
		effective := opts
		if fo.Temperature != nil {
			effective = append(append([]Option{}, opts...), WithDefaultTemperature(*fo.Temperature))
		}
		return New(modelName, effective...), nil
	}
}

// Info returns descriptive information about the model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name}
}

// GenerateContent sends the request to the OpenAI API and streams responses
// on the returned channel.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (<-chan *model.Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	chatRequest := m.buildChatRequest(request)
	responseChan := make(chan *model.Response, m.channelBufferSize)

	go func() {
		defer close(responseChan)
		ctx, span := telemetry.Tracer.Start(ctx, "llm.generate_content")
		span.SetAttributes(telemetry.StringAttr(telemetry.KeyModelName, m.name))
		defer span.End()

		if request.Stream {
			m.handleStreamingResponse(ctx, chatRequest, responseChan)
			return
		}
		m.handleResponse(ctx, chatRequest, responseChan)
	}()

	return responseChan, nil
}

// buildChatRequest converts our Request to OpenAI request params.
func (m *Model) buildChatRequest(request *model.Request) openai.ChatCompletionNewParams {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(request.Messages),
		Tools:    convertTools(request.Tools),
	}

	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	switch {
	case request.Temperature != nil:
		chatRequest.Temperature = openai.Float(*request.Temperature)
	case m.temperature != nil:
		chatRequest.Temperature = openai.Float(*m.temperature)
	}
	if request.TopP != nil {
		chatRequest.TopP = openai.Float(*request.TopP)
	}
	if len(request.Stop) > 0 {
		chatRequest.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: request.Stop,
		}
	}
	if request.PresencePenalty != nil {
		chatRequest.PresencePenalty = openai.Float(*request.PresencePenalty)
	}
	if request.FrequencyPenalty != nil {
		chatRequest.FrequencyPenalty = openai.Float(*request.FrequencyPenalty)
	}
	return chatRequest
}

// convertMessages converts our Message format to OpenAI's format.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		case model.RoleAssistant:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCalls: convertToolCalls(msg.ToolCalls),
				},
			}
		case model.RoleTool:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfTool: &openai.ChatCompletionToolMessageParam{
					Content: openai.ChatCompletionToolMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCallID: msg.ToolID,
				},
			}
		default:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		}
	}
	return result
}

// convertToolCalls converts assistant tool calls to OpenAI's format.
func convertToolCalls(toolCalls []model.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	var result []openai.ChatCompletionMessageToolCallParam
	for _, toolCall := range toolCalls {
		result = append(result, openai.ChatCompletionMessageToolCallParam{
			ID: toolCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      toolCall.Function.Name,
				Arguments: string(toolCall.Function.Arguments),
			},
		})
	}
	return result
}

// convertTools converts the tool map to OpenAI tool params.
func convertTools(tools map[string]tool.Tool) []openai.ChatCompletionToolParam {
	var result []openai.ChatCompletionToolParam
	for _, t := range tools {
		declaration := t.Declaration()
		schemaBytes, err := json.Marshal(declaration.InputSchema)
		if err != nil {
			log.Errorf("failed to marshal tool schema for %s: %v", declaration.Name, err)
			continue
		}
		var parameters shared.FunctionParameters
		if err := json.Unmarshal(schemaBytes, &parameters); err != nil {
			log.Errorf("failed to unmarshal tool schema for %s: %v", declaration.Name, err)
			continue
		}
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        declaration.Name,
				Description: openai.String(declaration.Description),
				Parameters:  parameters,
			},
		})
	}
	return result
}

// handleResponse handles a non-streaming chat completion.
func (m *Model) handleResponse(ctx context.Context, chatRequest openai.ChatCompletionNewParams, responseChan chan<- *model.Response) {
	completion, err := m.client.Chat.Completions.New(ctx, chatRequest)
	if err != nil {
		m.sendError(ctx, responseChan, err)
		return
	}

	response := &model.Response{
		ID:        completion.ID,
		Object:    model.ObjectTypeChatCompletion,
		Created:   completion.Created,
		Model:     completion.Model,
		Timestamp: time.Now(),
		Done:      true,
	}
	for _, choice := range completion.Choices {
		finishReason := string(choice.FinishReason)
		response.Choices = append(response.Choices, model.Choice{
			Index: int(choice.Index),
			Message: model.Message{
				Role:      model.RoleAssistant,
				Content:   choice.Message.Content,
				ToolCalls: extractToolCalls(choice.Message.ToolCalls),
			},
			FinishReason: &finishReason,
		})
	}
	response.Usage = &model.Usage{
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}

	select {
	case responseChan <- response:
	case <-ctx.Done():
	}
}

// handleStreamingResponse handles streaming chat completion responses.
func (m *Model) handleStreamingResponse(ctx context.Context, chatRequest openai.ChatCompletionNewParams, responseChan chan<- *model.Response) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, chatRequest)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		partial := &model.Response{
			ID:        chunk.ID,
			Object:    model.ObjectTypeChatCompletionChunk,
			Created:   chunk.Created,
			Model:     chunk.Model,
			Timestamp: time.Now(),
			IsPartial: true,
			Choices: []model.Choice{{
				Index: int(chunk.Choices[0].Index),
				Delta: model.Message{
					Role:    model.RoleAssistant,
					Content: chunk.Choices[0].Delta.Content,
				},
			}},
		}
		select {
		case responseChan <- partial:
		case <-ctx.Done():
			return
		}
	}
	if err := stream.Err(); err != nil {
		m.sendError(ctx, responseChan, err)
		return
	}
	if len(acc.Choices) == 0 {
		m.sendError(ctx, responseChan, fmt.Errorf("no choices received from model"))
		return
	}

	final := &model.Response{
		ID:        acc.ID,
		Object:    model.ObjectTypeChatCompletion,
		Created:   acc.Created,
		Model:     acc.Model,
		Timestamp: time.Now(),
		Done:      true,
	}
	finishReason := string(acc.Choices[0].FinishReason)
	final.Choices = []model.Choice{{
		Index: int(acc.Choices[0].Index),
		Message: model.Message{
			Role:      model.RoleAssistant,
			Content:   acc.Choices[0].Message.Content,
			ToolCalls: extractToolCalls(acc.Choices[0].Message.ToolCalls),
		},
		FinishReason: &finishReason,
	}}
	if acc.Usage.TotalTokens > 0 {
		final.Usage = &model.Usage{
			PromptTokens:     int(acc.Usage.PromptTokens),
			CompletionTokens: int(acc.Usage.CompletionTokens),
			TotalTokens:      int(acc.Usage.TotalTokens),
		}
	}

	select {
	case responseChan <- final:
	case <-ctx.Done():
	}
}

// extractToolCalls converts OpenAI tool calls to our format.
func extractToolCalls(toolCalls []openai.ChatCompletionMessageToolCall) []model.ToolCall {
	var result []model.ToolCall
	for _, tc := range toolCalls {
		// Accumulator may yield empty placeholder entries for index 0.
		if tc.ID == "" && tc.Function.Name == "" {
			continue
		}
		result = append(result, model.ToolCall{
			Type: functionToolType,
			ID:   tc.ID,
			Function: model.FunctionDefinitionParam{
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			},
		})
	}
	return result
}

// sendError sends an API-level error response.
func (m *Model) sendError(ctx context.Context, responseChan chan<- *model.Response, err error) {
	response := &model.Response{
		Object:    model.ObjectTypeChatCompletion,
		Model:     m.name,
		Timestamp: time.Now(),
		Done:      true,
		Error: &model.ResponseError{
			Message: err.Error(),
			Type:    "api_error",
		},
	}
	select {
	case responseChan <- response:
	case <-ctx.Done():
	}
}
