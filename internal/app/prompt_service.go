package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/ports/secondary"
)

const (
	defaultSuggestionCount = 3
	maxExamplesPerTag      = 3
)

// PromptServiceImpl implements the PromptService interface. It resolves the
// target failure tags into grounded context (name, description, sample open
// codes pulled from referencing traces) and asks the text-generation
// collaborator for rewritten prompts. The collaborator holds no state; the
// core only requires its output to parse into suggestion records.
type PromptServiceImpl struct {
	tagRepo   secondary.TagRepository
	traceRepo secondary.TraceRepository
	generator secondary.PromptGenerator
}

// NewPromptService creates a new PromptService with injected dependencies.
func NewPromptService(tagRepo secondary.TagRepository, traceRepo secondary.TraceRepository, generator secondary.PromptGenerator) *PromptServiceImpl {
	return &PromptServiceImpl{
		tagRepo:   tagRepo,
		traceRepo: traceRepo,
		generator: generator,
	}
}

// SuggestImprovements generates improved prompt variants targeting the
// given failure mode tags. Dangling tag ids are skipped, consistent with
// the registry's tolerance for dangling refs elsewhere.
func (s *PromptServiceImpl) SuggestImprovements(ctx context.Context, req primary.SuggestPromptRequest) (*primary.SuggestPromptResponse, error) {
	if req.CurrentPrompt == "" {
		return nil, &review.ValidationError{Field: "current_prompt", Reason: "must not be empty"}
	}
	count := req.NumSuggestions
	if count <= 0 {
		count = defaultSuggestionCount
	}

	failureModes, err := s.describeFailureModes(ctx, req.TargetTagIDs)
	if err != nil {
		return nil, err
	}

	instruction := buildInstruction(req.CurrentPrompt, failureModes, req.AdditionalContext, count)

	raw, err := s.generator.Generate(ctx, instruction)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, err
	}

	return &primary.SuggestPromptResponse{Suggestions: suggestions}, nil
}

// describeFailureModes renders each target tag as a named failure mode with
// up to three example open codes taken from traces referencing it.
func (s *PromptServiceImpl) describeFailureModes(ctx context.Context, tagIDs []string) (string, error) {
	var sections []string
	for _, tagID := range tagIDs {
		tag, err := s.tagRepo.GetByID(ctx, tagID)
		if err != nil {
			if review.IsNotFound(err) {
				continue
			}
			return "", fmt.Errorf("failed to load tag %s: %w", tagID, err)
		}

		traces, err := s.traceRepo.ListByTag(ctx, tagID)
		if err != nil {
			return "", fmt.Errorf("failed to load traces for tag %s: %w", tagID, err)
		}

		var examples []string
		for _, trace := range traces {
			if trace.OpenCode == "" {
				continue
			}
			examples = append(examples, "- "+trace.OpenCode)
			if len(examples) == maxExamplesPerTag {
				break
			}
		}

		section := fmt.Sprintf("**%s**: %s", tag.Name, tag.Description)
		if len(examples) > 0 {
			section += "\nExamples:\n" + strings.Join(examples, "\n")
		}
		sections = append(sections, section)
	}
	return strings.Join(sections, "\n\n"), nil
}

func buildInstruction(currentPrompt, failureModes, additionalContext string, count int) string {
	if additionalContext == "" {
		additionalContext = "None provided"
	}
	return fmt.Sprintf(`You are an expert in prompt engineering for LLM systems. I will provide:
1. A current system prompt
2. A list of observed failure modes with specific examples
3. Any additional context about the system

Your task: Generate %d improved versions of the system prompt that specifically address the identified failure modes while preserving the original intent and functionality.

For each improved prompt:
- Explain what changes you made and why
- Highlight the specific language or instructions that target each failure mode
- Maintain the overall structure and tone of the original prompt

Current System Prompt:
%s

Observed Failure Modes and Examples:
%s

Additional Context:
%s

Please provide %d improved prompt variations in JSON format:
{
  "suggestions": [
    {
      "version": 1,
      "improved_prompt": "...",
      "changes_made": ["Change 1", "Change 2", ...],
      "targeted_failures": ["Failure Mode 1", "Failure Mode 2", ...]
    },
    ...
  ]
}`, count, currentPrompt, failureModes, additionalContext, count)
}

// parseSuggestions extracts the suggestion JSON from the collaborator's
// raw completion, tolerating fenced code blocks around it.
func parseSuggestions(raw string) ([]primary.PromptSuggestion, error) {
	payload := extractJSON(raw)

	var parsed struct {
		Suggestions []primary.PromptSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &review.TranslationError{
			Source: "prompt generator",
			Key:    "suggestions",
			Err:    err,
		}
	}
	if len(parsed.Suggestions) == 0 {
		return nil, &review.TranslationError{
			Source: "prompt generator",
			Key:    "suggestions",
			Err:    fmt.Errorf("response contained no suggestions"),
		}
	}
	return parsed.Suggestions, nil
}

func extractJSON(raw string) string {
	if i := strings.Index(raw, "```json"); i >= 0 {
		rest := raw[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	if i := strings.Index(raw, "```"); i >= 0 {
		rest := raw[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// Ensure PromptServiceImpl implements the interface.
var _ primary.PromptService = (*PromptServiceImpl)(nil)
