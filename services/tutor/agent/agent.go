// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agent implements the conversational RAG loop for the tutor.
//
// One Invoke call is one chat turn: load the thread, append the user
// message, bound the history, let the model call the retrieval tool as
// needed, and persist the result.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/hangeul/services/llm"
	"github.com/AleutianAI/hangeul/services/tutor/conversation"
	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/observability"
	"github.com/AleutianAI/hangeul/services/tutor/retrieval"
)

var tracer = otel.Tracer("hangeul.tutor.agent")

// DefaultMaxToolRounds bounds the tool call loop per turn. After the cap
// the model is called once more with tools disabled.
const DefaultMaxToolRounds = 5

// DefaultTemperature is the sampling temperature for chat turns.
const DefaultTemperature float32 = 0.7

// DocumentRetriever is the retrieval dependency of the agent.
type DocumentRetriever interface {
	// Retrieve returns the serialized passage block and the raw hits
	// for a query. An empty index yields ("", empty, nil).
	Retrieve(ctx context.Context, query string) (string, []datatypes.RetrievedDocument, error)
}

// Config tunes the agent loop.
//
// # Fields
//
//   - KeepMessages: Sliding window size for history trimming.
//     Default: DefaultKeepMessages.
//   - MaxToolRounds: Tool call rounds before a forced plain completion.
//     Default: DefaultMaxToolRounds.
//   - Temperature: Sampling temperature. Default: DefaultTemperature.
type Config struct {
	KeepMessages  int
	MaxToolRounds int
	Temperature   float32
}

// DefaultConfig returns the production agent defaults.
func DefaultConfig() Config {
	return Config{
		KeepMessages:  DefaultKeepMessages,
		MaxToolRounds: DefaultMaxToolRounds,
		Temperature:   DefaultTemperature,
	}
}

// Agent runs chat turns against one conversation store, one LLM backend,
// and one lesson retriever.
//
// # Thread Safety
//
// Safe for concurrent use. Turns on the same thread id are serialized by
// a per-thread lock; turns on different threads run concurrently.
type Agent struct {
	llm       llm.LLMClient
	retriever DocumentRetriever
	store     conversation.Store
	config    Config
	metrics   *observability.TutorMetrics

	mu      sync.Mutex
	threads map[string]*sync.Mutex
}

// New creates an agent.
//
// # Inputs
//
//   - client: LLM backend. Must not be nil.
//   - retriever: Lesson retriever. May be nil; turns then run without
//     the retrieval tool.
//   - store: Thread persistence. Must not be nil.
//   - config: Agent configuration. Zero values use defaults.
//   - metrics: Tutor metrics. May be nil to disable recording.
func New(client llm.LLMClient, retriever DocumentRetriever, store conversation.Store,
	config Config, metrics *observability.TutorMetrics) *Agent {

	defaults := DefaultConfig()
	if config.KeepMessages < 1 {
		config.KeepMessages = defaults.KeepMessages
	}
	if config.MaxToolRounds < 1 {
		config.MaxToolRounds = defaults.MaxToolRounds
	}
	if config.Temperature <= 0 {
		config.Temperature = defaults.Temperature
	}

	return &Agent{
		llm:       client,
		retriever: retriever,
		store:     store,
		config:    config,
		metrics:   metrics,
		threads:   make(map[string]*sync.Mutex),
	}
}

// Invoke runs one chat turn and returns the assistant's answer.
//
// # Description
//
// The turn sequence is: lock the thread, load its state (seeding the
// persona on first contact), append the user message, trim, then run the
// model with the retrieve_docs tool until it produces plain text or the
// round cap forces a plain completion. The replaced history is persisted
// only after the turn succeeds; a failed turn commits nothing.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - threadID: The user's thread (the user id).
//   - userMsg: The user message for this turn.
//
// # Outputs
//
//   - string: The assistant's final text.
//   - error: Non-nil if the store, retriever, or model fails.
func (a *Agent) Invoke(ctx context.Context, threadID string, userMsg datatypes.Message) (string, error) {
	ctx, span := tracer.Start(ctx, "agent.Invoke")
	defer span.End()
	span.SetAttributes(attribute.String("thread_id", threadID))

	lock := a.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	msgs, err := a.store.GetState(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("failed to load thread state: %w", err)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, datatypes.NewSystemText(SystemPrompt))
	}
	msgs = append(msgs, userMsg)

	msgs, trimmed := applyTrim(msgs, a.config.KeepMessages)
	if trimmed && a.metrics != nil {
		a.metrics.RecordTrim()
	}

	msgs, rounds, err := a.runToolLoop(ctx, msgs)
	if err != nil {
		return "", err
	}
	if a.metrics != nil {
		a.metrics.RecordToolRounds(rounds)
	}

	if err := a.store.UpdateState(ctx, threadID, msgs); err != nil {
		return "", fmt.Errorf("failed to persist thread state: %w", err)
	}

	final := msgs[len(msgs)-1]
	return final.Content, nil
}

// ClearHistory resets the thread to a single assistant message carrying
// the persona, mirroring what a fresh thread sees.
func (a *Agent) ClearHistory(ctx context.Context, threadID string) error {
	ctx, span := tracer.Start(ctx, "agent.ClearHistory")
	defer span.End()

	lock := a.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	seed := datatypes.NewAssistantText(SystemPrompt)
	if err := a.store.Clear(ctx, threadID, seed); err != nil {
		return fmt.Errorf("failed to clear thread %s: %w", threadID, err)
	}
	slog.Info("Cleared chat history", "thread_id", threadID)
	return nil
}

// runToolLoop drives the model until it answers in plain text.
//
// # Description
//
// Each round offers the retrieve_docs tool. Requested calls are executed
// and their results appended as paired tool messages. After MaxToolRounds
// the model is called once more with no tools, which forces an answer.
//
// # Outputs
//
//   - []datatypes.Message: History including the final assistant message.
//   - int: Tool rounds used.
//   - error: Non-nil if a model call or retrieval fails.
func (a *Agent) runToolLoop(ctx context.Context, msgs []datatypes.Message) ([]datatypes.Message, int, error) {
	temp := a.config.Temperature

	// No retriever configured: single plain completion.
	if a.retriever == nil {
		result, err := a.llm.Chat(ctx, msgs, llm.GenerationParams{Temperature: &temp})
		if err != nil {
			return nil, 0, fmt.Errorf("model call failed: %w", err)
		}
		return append(msgs, datatypes.NewAssistantText(result.Content)), 0, nil
	}

	withTools := llm.GenerationParams{
		Temperature: &temp,
		Tools:       []datatypes.ToolDefinition{retrieval.ToolDefinition()},
	}

	for round := 0; round < a.config.MaxToolRounds; round++ {
		result, err := a.llm.Chat(ctx, msgs, withTools)
		if err != nil {
			return nil, round, fmt.Errorf("model call failed: %w", err)
		}

		if len(result.ToolCalls) == 0 {
			msgs = append(msgs, datatypes.NewAssistantText(result.Content))
			return msgs, round, nil
		}

		msgs = append(msgs, datatypes.NewAssistantToolCalls(result.Content, result.ToolCalls))

		for _, call := range result.ToolCalls {
			output, err := a.executeTool(ctx, call)
			if err != nil {
				return nil, round, err
			}
			msgs = append(msgs, datatypes.NewToolResult(call.ID, output))
		}
	}

	// Round cap reached: force a plain completion.
	slog.Warn("Tool round cap reached, forcing plain completion",
		"max_rounds", a.config.MaxToolRounds)
	noTools := llm.GenerationParams{Temperature: &temp}
	result, err := a.llm.Chat(ctx, msgs, noTools)
	if err != nil {
		return nil, a.config.MaxToolRounds, fmt.Errorf("forced completion failed: %w", err)
	}
	msgs = append(msgs, datatypes.NewAssistantText(result.Content))
	return msgs, a.config.MaxToolRounds, nil
}

// executeTool dispatches one tool call.
func (a *Agent) executeTool(ctx context.Context, call datatypes.ToolCall) (string, error) {
	if call.Function.Name != retrieval.ToolName {
		slog.Warn("Model requested unknown tool", "tool", call.Function.Name)
		return fmt.Sprintf("unknown tool: %s", call.Function.Name), nil
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse retrieve_docs arguments: %w", err)
	}

	serialized, docs, err := a.retriever.Retrieve(ctx, args.Query)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}
	slog.Debug("Executed retrieve_docs", "query_bytes", len(args.Query), "docs", len(docs))
	return serialized, nil
}

// threadLock returns the mutex serializing turns for a thread.
func (a *Agent) threadLock(threadID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.threads[threadID]
	if !ok {
		lock = &sync.Mutex{}
		a.threads[threadID] = lock
	}
	return lock
}
