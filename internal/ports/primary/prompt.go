package primary

import "context"

// PromptService defines the primary port for prompt improvement: resolving
// target failure tags into grounded context and asking the text-generation
// collaborator for rewritten system prompts.
type PromptService interface {
	SuggestImprovements(ctx context.Context, req SuggestPromptRequest) (*SuggestPromptResponse, error)
}

// SuggestPromptRequest contains parameters for a suggestion run.
type SuggestPromptRequest struct {
	CurrentPrompt     string
	TargetTagIDs      []string
	AdditionalContext string
	NumSuggestions    int // defaults to 3
}

// SuggestPromptResponse contains the parsed suggestion records. The core
// requires only that the collaborator's output parse into this shape.
type SuggestPromptResponse struct {
	Suggestions []PromptSuggestion
}

// PromptSuggestion is one rewritten prompt variant.
type PromptSuggestion struct {
	Version          int      `json:"version"`
	ImprovedPrompt   string   `json:"improved_prompt"`
	ChangesMade      []string `json:"changes_made"`
	TargetedFailures []string `json:"targeted_failures"`
}
