// Package llm provides an OpenAI-compatible chat-completions provider.
// It works against any server exposing /v1/chat/completions (OpenAI,
// Ollama's /v1 facade, vLLM, LiteLLM and friends).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opencontratos/secop"
)

const defaultBaseURL = "https://api.openai.com"

// OpenAI implements secop.LLMProvider.
type OpenAI struct {
	BaseURL     string // base URL; /v1/chat/completions is appended when missing
	Model       string
	APIKey      string  // optional for keyless local servers
	Temperature float64 // 0 is sent as-is: deterministic synthesis is wanted

	// Per-token prices in dollars; zero disables cost accounting.
	CostPerInputToken  float64
	CostPerOutputToken float64

	client *http.Client
}

// Option configures an OpenAI provider.
type Option func(*OpenAI)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *OpenAI) { o.client = client }
}

// WithCosts sets per-token prices so reports can accumulate spend.
func WithCosts(inputPerToken, outputPerToken float64) Option {
	return func(o *OpenAI) {
		o.CostPerInputToken = inputPerToken
		o.CostPerOutputToken = outputPerToken
	}
}

// New constructs a provider for the given endpoint and model.
func New(baseURL, model, apiKey string, opts ...Option) *OpenAI {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	o := &OpenAI{
		BaseURL:     baseURL,
		Model:       model,
		APIKey:      apiKey,
		Temperature: 0.1,
		client:      &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate sends one chat completion and returns the text with its cost.
func (o *OpenAI) Generate(ctx context.Context, systemPrompt, userPrompt string) (secop.LLMResponse, error) {
	if strings.TrimSpace(o.Model) == "" {
		return secop.LLMResponse{}, errors.New("llm: model is not set")
	}

	reqBody := chatRequest{
		Model: o.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: o.Temperature,
	}

	body, err := o.post(ctx, reqBody)
	if err != nil {
		return secop.LLMResponse{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return secop.LLMResponse{}, fmt.Errorf("llm: failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return secop.LLMResponse{}, errors.New("llm: response contained no choices")
	}

	cost := float64(parsed.Usage.PromptTokens)*o.CostPerInputToken +
		float64(parsed.Usage.CompletionTokens)*o.CostPerOutputToken

	return secop.LLMResponse{
		Text: strings.TrimSpace(parsed.Choices[0].Message.Content),
		Cost: cost,
	}, nil
}

// endpoint appends /v1/chat/completions unless the base URL already
// carries a completions path.
func (o *OpenAI) endpoint() string {
	u := strings.TrimRight(o.BaseURL, "/")
	if strings.HasSuffix(u, "/chat/completions") {
		return u
	}
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u + "/chat/completions"
}

// post sends the request, retrying on 429 and 504 with doubling delay.
func (o *OpenAI) post(ctx context.Context, reqBody chatRequest) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("llm: failed to marshal request: %w", err)
	}

	const maxRetries = 5
	delay := 1 * time.Second

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint(), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if o.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+o.APIKey)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("llm: request failed: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("llm: failed to read response: %w", err)
			}
			return body, nil
		}

		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusGatewayTimeout
		if !retryable || attempt >= maxRetries {
			return nil, fmt.Errorf("llm: api error: %s - %s", resp.Status, string(errBody))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
