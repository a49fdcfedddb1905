package validator

import (
	"context"

	"github.com/hetulpatel/KalshiOdds/internal/cache"
)

// Result represents the structured LLM verdict.
type Result struct {
	SameOutcome bool   `json:"SameOutcome"`
	Reason      string `json:"Reason"`
	Cached      bool   `json:"-"`
}

// Completer is satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config controls the validator behavior.
type Config struct {
	LLM          Completer
	Cache        cache.VerdictCache
	SystemPrompt string
}
