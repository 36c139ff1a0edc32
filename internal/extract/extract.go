// Package extract derives structured study facts (subjects, scores, study
// times, goals) from free text. Two strategies share the Extractor contract:
// Pattern is deterministic, Delegated asks the text-generation service.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/edubot/internal/engine"
)

// Strategy names accepted by New.
const (
	StrategyPattern   = "pattern"
	StrategyDelegated = "delegated"
)

// Extractor derives facts from a user message. priorReply is the assistant's
// reply to that message and may be used as context. Implementations never
// fail: anything that goes wrong yields empty Facts.
type Extractor interface {
	Extract(ctx context.Context, text, priorReply string) Facts
}

// New builds the extractor for strategy, wrapped in Safe.
func New(strategy string, gen engine.Generator, timeout time.Duration, log *slog.Logger) (*Safe, error) {
	switch strategy {
	case StrategyPattern, "":
		return NewSafe(NewPattern(), log), nil
	case StrategyDelegated:
		if gen == nil {
			return nil, fmt.Errorf("delegated extractor requires a generator")
		}
		return NewSafe(NewDelegated(gen, timeout, log), log), nil
	default:
		return nil, fmt.Errorf("unknown extractor strategy %q", strategy)
	}
}

// Safe recovers panics from the wrapped extractor and returns empty Facts instead.
type Safe struct {
	inner Extractor
	log   *slog.Logger
}

// NewSafe wraps inner.
func NewSafe(inner Extractor, log *slog.Logger) *Safe {
	if log == nil {
		log = slog.Default()
	}
	return &Safe{inner: inner, log: log.With("component", "extractor")}
}

// Extract implements Extractor.
func (s *Safe) Extract(ctx context.Context, text, priorReply string) (facts Facts) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "Recovered panic in fact extraction", "panic", r)
			facts = Facts{}
		}
	}()
	return s.inner.Extract(ctx, text, priorReply)
}
