// Package openai wraps the chat-completion API used by the virtual mentor.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	gopenai "github.com/sashabaranov/go-openai"
)

var (
	ErrNotConfigured = errors.New("openai: API key is not configured")
	ErrNoChoices     = errors.New("openai: no response choices returned")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	// Model falls back to the client's default when empty
	Model       string
	Messages    []Message
	Temperature float32
	// JSONObject constrains the reply to a single JSON object
	JSONObject bool
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	api     *gopenai.Client
	model   string
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	c := &Client{
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if cfg.APIKey == "" {
		return c
	}

	apiConfig := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	c.api = gopenai.NewClientWithConfig(apiConfig)
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

func (c *Client) DefaultModel() string {
	return c.model
}

// Complete sends one chat-completion request and returns the content of the
// first choice. It does not retry.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]gopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, gopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	chatReq := gopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSONObject {
		chatReq.ResponseFormat = &gopenai.ChatCompletionResponseFormat{
			Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(timeoutCtx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
