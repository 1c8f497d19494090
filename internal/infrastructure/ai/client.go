package ai

import (
	"context"
	"strings"
)

// Completer is a free-text AI completion provider. Implementations send
// a prompt with the supplied API key and return the raw response text,
// which callers expect to contain a JSON object.
type Completer interface {
	// Name returns the provider tag ("gemini", "groq")
	Name() string

	// Complete sends a prompt and returns the raw completion text
	Complete(ctx context.Context, prompt, apiKey string) (string, error)
}

// StripCodeFences removes a wrapping markdown code fence from a
// completion, tolerating a language tag after the opening fence.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json")
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
