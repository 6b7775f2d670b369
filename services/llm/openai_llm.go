// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// DefaultChatModel is the chat completion model used when none is configured.
const DefaultChatModel = "gpt-4o-mini"

// OpenAIClient implements LLMClient on top of the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed LLM client.
//
// # Inputs
//
//   - apiKey: OpenAI API key. Must not be empty.
//   - model: Chat model name. Empty defaults to DefaultChatModel.
//
// # Outputs
//
//   - *OpenAIClient: Ready-to-use client.
//   - error: Non-nil if the API key is missing.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	if model == "" {
		model = DefaultChatModel
		slog.Warn("OpenAI model not set, using default", "model", DefaultChatModel)
	}
	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate implements the LLMClient interface.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	result, err := o.Chat(ctx, []datatypes.Message{datatypes.NewUserText(prompt)}, params)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// Chat implements the LLMClient interface.
//
// # Description
//
// Converts the conversation to the OpenAI wire format, including multimodal
// image parts, assistant tool call requests, and tool result messages, then
// performs a single chat completion.
//
// # Limitations
//
//   - No streaming; the full completion is awaited.
//   - Tool choice is left to the model ("auto") whenever tools are supplied.
func (o *OpenAIClient) Chat(ctx context.Context, messages []datatypes.Message, params GenerationParams) (*ChatResult, error) {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(messages),
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}
	for _, tool := range params.Tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices")
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	choice := resp.Choices[0]
	slog.Debug("Received response from OpenAI", "finish_reason", choice.FinishReason)

	result := &ChatResult{Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, datatypes.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: datatypes.ToolFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return result, nil
}

// toOpenAIMessages converts internal messages to the OpenAI wire format.
func toOpenAIMessages(messages []datatypes.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			ToolCallID: m.ToolCallID,
		}

		if len(m.Parts) > 0 {
			for _, p := range m.Parts {
				switch p.Type {
				case datatypes.PartTypeImageURL:
					msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: p.ImageURL},
					})
				default:
					msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeText,
						Text: p.Text,
					})
				}
			}
		} else {
			msg.Content = m.Content
		}

		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolType(tc.Type),
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		out = append(out, msg)
	}
	return out
}

var _ LLMClient = (*OpenAIClient)(nil)
