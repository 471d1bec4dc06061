package ollama

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Client wraps a local Ollama model behind the narrow completion contract
// the classifier and answer engine consume. Temperature is pinned to zero
// for reproducible routing decisions.
type Client struct {
	llm   *ollama.LLM
	model string
}

func New(baseURL, model string) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, model: model}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "requesting completion", "model", c.model, "prompt_length", len(prompt))
	return llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(0))
}
