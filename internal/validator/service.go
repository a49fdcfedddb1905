package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetulpatel/KalshiOdds/internal/cache"
	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/models"
)

const systemPrompt = "You are a strict sports betting analyst. Determine whether a prediction market contract settles YES in exactly the same cases as a sportsbook spread bet. Respond only with JSON."

// Service checks heuristic contract matches with an LLM.
type Service struct {
	llm          Completer
	cache        cache.VerdictCache
	systemPrompt string
}

// NewService creates a validator.
func NewService(cfg Config) (*Service, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("validator: llm client is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Service{
		llm:          cfg.LLM,
		cache:        cfg.Cache,
		systemPrompt: system,
	}, nil
}

// Validate returns whether contract YES is the same outcome as the
// opportunity's sportsbook side. Cached verdicts skip the LLM call.
func (s *Service) Validate(ctx context.Context, opp models.Opportunity, contract collectors.Contract) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("validator: service is nil")
	}

	key := verdictKey(opp, contract)
	if s.cache != nil {
		verdict, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logging.Warnf("[validator] verdict cache get %s: %v", key, err)
		} else if ok {
			return &Result{SameOutcome: verdict, Reason: "cached", Cached: true}, nil
		}
	}

	userPrompt, err := buildUserPrompt(opp, contract)
	if err != nil {
		return nil, err
	}
	raw, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("validator: llm call: %w", err)
	}
	res, err := parseResult(raw)
	if err != nil {
		return nil, fmt.Errorf("validator: parse response: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res.SameOutcome); err != nil {
			logging.Warnf("[validator] verdict cache set %s: %v", key, err)
		}
	}
	return res, nil
}

// Filter drops opportunities the LLM rejects. Opportunities whose contract is
// unknown or whose check fails are kept and logged, since the heuristic
// already matched them.
func (s *Service) Filter(ctx context.Context, opps []models.Opportunity, contracts map[string]collectors.Contract) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(opps))
	for _, opp := range opps {
		contract, ok := contracts[opp.KalshiContract]
		if !ok {
			logging.Warnf("[validator] no contract %s for %s; keeping", opp.KalshiContract, opp.MatchName)
			out = append(out, opp)
			continue
		}
		res, err := s.Validate(ctx, opp, contract)
		if err != nil {
			logging.Warnf("[validator] %s / %s: %v; keeping", opp.SportsbookMarket, opp.KalshiContract, err)
			out = append(out, opp)
			continue
		}
		if !res.SameOutcome {
			logging.Infof("[validator] rejected %s vs %s: %s", opp.SportsbookMarket, opp.KalshiContract, res.Reason)
			continue
		}
		logging.Debugf("[validator] accepted %s vs %s (cached=%t)", opp.SportsbookMarket, opp.KalshiContract, res.Cached)
		out = append(out, opp)
	}
	return out
}
