// Package llm contains the OpenAI-backed prompt generator adapter.
package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const systemRole = "You are an expert prompt engineer analyzing AI agent failures."

// OpenAIGenerator implements secondary.PromptGenerator with the OpenAI chat
// completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator for the given API key and model. An
// empty model falls back to DefaultModel.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate sends the instruction as a single-turn chat completion and
// returns the raw completion text.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRole},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", &review.ExternalDependencyError{System: "openai", Op: "completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &review.ExternalDependencyError{
			System: "openai",
			Op:     "completion",
			Err:    fmt.Errorf("response contained no choices"),
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// Ensure OpenAIGenerator implements the interface.
var _ secondary.PromptGenerator = (*OpenAIGenerator)(nil)
