// Package provider implements completion API provider interfaces and clients.
package provider

import (
	"context"
)

// CompletionProvider is the interface for chat-completion API clients.
type CompletionProvider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	// DefaultModel returns the configured default model.
	DefaultModel() string
}

// CompletionRequest contains the parameters for a chat completion request.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
}

// CompletionResponse contains the response from a chat completion request.
type CompletionResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
