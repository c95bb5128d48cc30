package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docaudit/internal/config"
)

// Client wraps the chat model behind a single-prompt call. The detector and
// report synthesizer both talk to the model through it.
type Client struct {
	llm llms.Model
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	var (
		llm llms.Model
		err error
	)
	switch cfg.Provider {
	case "ollama":
		llm, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	case "openai", "":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// Invoke sends a single user prompt and returns the model's text content.
// An empty result with a nil error means the provider answered with no
// content; callers decide whether that is fatal.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", nil
	}
	return res.Choices[0].Content, nil
}
