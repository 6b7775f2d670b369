// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Generic GraphQL Response Parser
// =============================================================================

// ParseGraphQLResponse parses a Weaviate GraphQL response into the target type.
//
// # Description
//
// This generic function encapsulates the marshal/unmarshal pattern required to
// convert Weaviate's dynamic response (map[string]models.JSONObject) into a
// strongly-typed Go struct. The target type T must have json tags matching
// the expected response shape.
//
// # Type Parameters
//
//   - T: The target struct type with json tags matching the response shape.
//
// # Inputs
//
//   - resp: The GraphQL response from Weaviate client's Do() method.
//
// # Outputs
//
//   - *T: Pointer to the parsed struct.
//   - error: Non-nil if response is nil or parsing fails.
//
// # Example
//
//	resp, err := client.GraphQL().Get().WithClassName("Lesson").Do(ctx)
//	if err != nil { ... }
//
//	parsed, err := ParseGraphQLResponse[LessonQueryResponse](resp)
//	if err != nil { ... }
//
//	for _, l := range parsed.Get.Lesson {
//	    fmt.Println(l.Content)
//	}
//
// # Limitations
//
//   - Requires the target type to exactly match the expected response structure.
//   - Type mismatches will result in zero values, not errors.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// =============================================================================
// Query Response Types
// =============================================================================

// LessonQueryResponse represents the response from querying the Lesson class.
type LessonQueryResponse struct {
	Get struct {
		Lesson []LessonResult `json:"Lesson"`
	} `json:"Get"`
}

// LessonResult represents a single lesson chunk from a query.
type LessonResult struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	ChunkIndex *int   `json:"chunk_index"`
	Additional struct {
		ID    string   `json:"id"`
		Score *float64 `json:"score,string"`
	} `json:"_additional"`
}

// ThreadMessageQueryResponse represents the response from querying the
// ThreadMessage class.
type ThreadMessageQueryResponse struct {
	Get struct {
		ThreadMessage []ThreadMessageResult `json:"ThreadMessage"`
	} `json:"Get"`
}

// ThreadMessageResult represents a single stored message from a query.
type ThreadMessageResult struct {
	ThreadID   string  `json:"thread_id"`
	Position   int     `json:"position"`
	Role       string  `json:"role"`
	Content    string  `json:"content"`
	Metadata   string  `json:"metadata"`
	Timestamp  float64 `json:"timestamp"`
	Additional struct {
		ID string `json:"id"`
	} `json:"_additional"`
}

// =============================================================================
// Property Structs
// =============================================================================

// LessonProperties represents the properties for creating a Lesson object.
type LessonProperties struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	IngestedAt int64  `json:"ingested_at"`
}

// ToMap converts LessonProperties to map[string]interface{} for Weaviate.
func (p *LessonProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"content":     p.Content,
		"source":      p.Source,
		"chunk_index": p.ChunkIndex,
		"ingested_at": p.IngestedAt,
	}
}

// ThreadMessageProperties represents the properties for creating a
// ThreadMessage object.
type ThreadMessageProperties struct {
	ThreadID  string `json:"thread_id"`
	Position  int    `json:"position"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Metadata  string `json:"metadata"`
	Timestamp int64  `json:"timestamp"`
}

// ToMap converts ThreadMessageProperties to map[string]interface{} for Weaviate.
//
// # Example
//
//	props := ThreadMessageProperties{ThreadID: "42", Position: 0, Role: "user"}
//	client.Data().Creator().WithProperties(props.ToMap()).Do(ctx)
func (p *ThreadMessageProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"thread_id": p.ThreadID,
		"position":  p.Position,
		"role":      p.Role,
		"content":   p.Content,
		"metadata":  p.Metadata,
		"timestamp": p.Timestamp,
	}
}
