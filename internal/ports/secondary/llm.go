package secondary

import "context"

// PromptGenerator defines the secondary port for the text-generation
// collaborator used by prompt improvement. It is a stateless call: prompt
// in, raw completion text out.
type PromptGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
