package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
	"github.com/aymen-fkir/sku-review-generator/pkg/utils"
)

const (
	MaxRetries   = 2
	RetryBackoff = 2 * time.Second

	systemInstruction = "You are an expert medical and pharmaceutical analyst. " +
		"Provide accurate, medically sound product benefit analysis in JSON format."
)

// Benefit sources recorded on the result.
const (
	SourceTextFallback = "Text analysis fallback"
	SourceDefault      = "Fallback analysis"
)

// BenefitAnalyzer produces a benefits draft for a product. It never fails;
// on any error it returns a usable default.
type BenefitAnalyzer interface {
	Analyze(ctx context.Context, product models.Product) models.Benefits
}

// Analyzer asks the language model for a product's benefits
type Analyzer struct {
	generator textgen.Generator
	cfg       config.LLMConfig
	logger    *zap.Logger
	backoff   time.Duration
}

// NewAnalyzer creates a new Analyzer instance
func NewAnalyzer(generator textgen.Generator, cfg config.LLMConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{generator: generator, cfg: cfg, logger: logger, backoff: RetryBackoff}
}

// WithBackoff sets the pause between failed attempts.
func (a *Analyzer) WithBackoff(d time.Duration) *Analyzer {
	a.backoff = d
	return a
}

// CreatePrompt creates the benefit analysis prompt for a product
func (a *Analyzer) CreatePrompt(p models.Product) string {
	brand := orNotSpecified(p.Brand)
	return fmt.Sprintf(`Analyze the health benefits and uses for this product:

Product: %s
Brand: %s
Category: %s
Sub-category: %s
Specific Type: %s

Return a JSON object with the keys:
- "primary_benefit": main benefit a customer notices
- "benefits": up to three additional benefits
- "medical_conditions": conditions the product is commonly bought for
- "usage_notes": how the product is used
- "target_audience": who buys this product
- "source": where the analysis came from

Base your analysis on the product name, category, and known medical knowledge.`,
		p.SKUName, brand,
		orNotSpecified(p.Classification.Category),
		orNotSpecified(p.Classification.Subcategory),
		orNotSpecified(p.Classification.Type))
}

// GetSchema generates the JSON schema for the response format
func (a *Analyzer) GetSchema() any {
	return utils.GenerateSchema[models.Benefits]()
}

// HandleRequest sends the analysis request with retries
func (a *Analyzer) HandleRequest(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i := 0; i <= MaxRetries; i++ {
		a.logger.Debug("sending benefit analysis request", zap.Int("attempt", i+1))

		text, err := a.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		a.logger.Warn("benefit analysis request failed", zap.Int("attempt", i+1), zap.Error(err))

		if i == MaxRetries || a.backoff <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.backoff):
		}
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt sends one request bounded by the configured request timeout.
func (a *Analyzer) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout())
	defer cancel()

	return a.generator.Generate(ctx, textgen.Request{
		System:      systemInstruction,
		Prompt:      prompt,
		MaxTokens:   a.cfg.BenefitMaxTokens,
		Temperature: a.cfg.BenefitTemperature,
		Schema:      a.GetSchema(),
		SchemaName:  "product_benefits",
	})
}

// Analyze returns the model's analysis of product, falling back to text
// extraction and then to DefaultBenefits.
func (a *Analyzer) Analyze(ctx context.Context, p models.Product) models.Benefits {
	content, err := a.HandleRequest(ctx, a.CreatePrompt(p))
	if err != nil {
		a.logger.Warn("using default benefits", zap.String("sku_id", p.SKUID), zap.Error(err))
		return DefaultBenefits()
	}
	return ParseBenefits(content)
}

// ParseBenefits decodes a model answer. Missing JSON fields are filled from
// DefaultBenefits; a non-JSON answer goes through text extraction.
func ParseBenefits(content string) models.Benefits {
	def := DefaultBenefits()

	var parsed models.Benefits
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return extractFromText(content, def)
	}
	if strings.TrimSpace(parsed.PrimaryBenefit) == "" {
		parsed.PrimaryBenefit = def.PrimaryBenefit
	}
	if len(parsed.Benefits) == 0 {
		parsed.Benefits = def.Benefits
	}
	if len(parsed.MedicalConditions) == 0 {
		parsed.MedicalConditions = def.MedicalConditions
	}
	if parsed.UsageNotes == "" {
		parsed.UsageNotes = def.UsageNotes
	}
	if parsed.TargetAudience == "" {
		parsed.TargetAudience = def.TargetAudience
	}
	if parsed.Source == "" {
		parsed.Source = "Product analysis"
	}
	return parsed
}

// extractFromText picks benefit and condition lines out of free text.
func extractFromText(text string, def models.Benefits) models.Benefits {
	var benefits, conditions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case line == "":
		case containsAny(lower, []string{"benefit", "help", "treat", "relieve"}):
			benefits = append(benefits, line)
		case containsAny(lower, []string{"condition", "disease", "symptom"}):
			conditions = append(conditions, line)
		}
	}

	out := def
	out.Source = SourceTextFallback
	if len(benefits) > 0 {
		out.PrimaryBenefit = benefits[0]
		out.Benefits = benefits[:min(len(benefits), 3)]
	}
	if len(conditions) > 0 {
		out.MedicalConditions = conditions[:min(len(conditions), 2)]
	}
	return out
}

// DefaultBenefits is the draft used when analysis is disabled or fails.
func DefaultBenefits() models.Benefits {
	return models.Benefits{
		PrimaryBenefit:    models.DefaultPrimaryBenefit,
		Benefits:          []string{"General wellness"},
		MedicalConditions: []string{"General health"},
		UsageNotes:        "Follow package instructions",
		TargetAudience:    "Adults seeking health support",
		Source:            SourceDefault,
	}
}

// StaticAnalyzer returns DefaultBenefits without calling a model.
type StaticAnalyzer struct{}

func (StaticAnalyzer) Analyze(context.Context, models.Product) models.Benefits {
	return DefaultBenefits()
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
