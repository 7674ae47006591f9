package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"airdrop-go/internal/model"
)

var ErrRemoteCall = errors.New("remote model call failed")

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// Client sends chat completions to an OpenAI-compatible endpoint.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	name := opts.Model
	if name == "" {
		name = openai.GPT4o
	}
	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       name,
		temperature: opts.Temperature,
	}
}

func (c *Client) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRemoteCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrRemoteCall)
	}
	return resp.Choices[0].Message.Content, nil
}
