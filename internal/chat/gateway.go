package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrRateLimited indicates the gateway rejected the request with 429.
	ErrRateLimited = errors.New("assistant is receiving too many requests")

	// ErrPaymentRequired indicates the gateway rejected the request with 402.
	ErrPaymentRequired = errors.New("assistant service is temporarily unavailable")

	// ErrGateway covers every other gateway failure.
	ErrGateway = errors.New("assistant service error")
)

// GatewayMessage is one turn on the gateway wire format.
type GatewayMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a structured function invocation requested by the model.
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// Tool describes one function the model may call.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is the schema half of a Tool.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CompletionRequest is the payload sent to the gateway.
type CompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []GatewayMessage `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
	Tools       []Tool           `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"`
}

// CompletionResponse is the subset of the gateway reply the service reads.
type CompletionResponse struct {
	Choices []struct {
		Message GatewayMessage `json:"message"`
	} `json:"choices"`
}

// Completer produces a model completion for a prepared request.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// GatewayClient talks to an OpenAI-compatible chat completions endpoint.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGatewayClient constructs a client for the configured gateway.
func NewGatewayClient(baseURL, apiKey string, timeout time.Duration) *GatewayClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GatewayClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete posts the request to /v1/chat/completions and decodes the reply.
func (c *GatewayClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return CompletionResponse{}, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return CompletionResponse{}, ErrPaymentRequired
	case resp.StatusCode != http.StatusOK:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return CompletionResponse{}, fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, detail)
	}

	var out CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: decode reply: %v", ErrGateway, err)
	}
	if len(out.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("%w: empty reply", ErrGateway)
	}
	return out, nil
}
