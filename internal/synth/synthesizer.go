// Package synth writes review texts and keeps them distinct within a run.
package synth

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/sampler"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
)

// attempt is the state of one Generate call.
type attempt int

const (
	// attemptFirst is gated against the ledger.
	attemptFirst attempt = iota
	// attemptForced carries the uniqueness directive and is accepted as is.
	attemptForced
)

func (a attempt) String() string {
	if a == attemptForced {
		return "forced"
	}
	return "first"
}

// Synthesizer writes one review text per call.
// It is owned by one run and is not safe for concurrent use.
type Synthesizer struct {
	generator textgen.Generator
	prompts   *PromptBuilder
	ledger    *Ledger
	rng       *rand.Rand
	logger    *zap.Logger

	maxTokens        int
	temperature      float64
	retryTemperature float64
	timeout          time.Duration

	fallbacks int
}

// New creates a Synthesizer recording accepted texts in ledger.
func New(cfg *config.Config, generator textgen.Generator, ledger *Ledger, rng *rand.Rand, logger *zap.Logger) *Synthesizer {
	if ledger == nil {
		ledger = NewLedger(cfg.Content.RepetitivePhrases, cfg.Content.MaxRepetitivePhrases)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		generator:        generator,
		prompts:          NewPromptBuilder(cfg),
		ledger:           ledger,
		rng:              rng,
		logger:           logger,
		maxTokens:        cfg.LLM.ReviewMaxTokens,
		temperature:      cfg.LLM.ReviewTemperature,
		retryTemperature: cfg.LLM.RetryTemperature,
		timeout:          cfg.LLM.RequestTimeout(),
	}
}

// Generate returns review text for product. The first answer is checked
// against the ledger; a rejected answer is regenerated once with a uniqueness
// directive and that answer is kept. Any generation failure yields a template
// review instead. Generate never fails. When ctx itself is done it returns ""
// and records nothing, since the caller is abandoning the review.
func (s *Synthesizer) Generate(ctx context.Context, p models.Product, a sampler.Attributes) string {
	prompt := s.prompts.Build(p, a)

	state := attemptFirst
	for {
		text, err := s.call(ctx, prompt, state)
		if err != nil && ctx.Err() != nil {
			s.logger.Debug("review generation cancelled", zap.String("sku_id", p.SKUID))
			return ""
		}
		if err != nil {
			s.fallbacks++
			s.logger.Warn("review generation failed, using template",
				zap.String("sku_id", p.SKUID),
				zap.Stringer("attempt", state),
				zap.Error(err))
			text = fallbackReview(s.rng, p, a.Rating)
			s.ledger.Add(text)
			return text
		}

		if state == attemptFirst {
			if reason, rejected := s.ledger.Check(text); rejected {
				s.logger.Debug("review too similar, regenerating",
					zap.String("sku_id", p.SKUID),
					zap.String("reason", reason))
				state = attemptForced
				continue
			}
		}

		s.ledger.Add(text)
		return text
	}
}

func (s *Synthesizer) call(ctx context.Context, prompt string, state attempt) (string, error) {
	req := textgen.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
	if state == attemptForced {
		req.Prompt += uniqueDirective
		req.Temperature = s.retryTemperature
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", textgen.ErrEmptyResponse
	}
	return text, nil
}

// Ledger returns the ledger backing the synthesizer.
func (s *Synthesizer) Ledger() *Ledger {
	return s.ledger
}

// Fallbacks returns how many template reviews were used.
func (s *Synthesizer) Fallbacks() int {
	return s.fallbacks
}
