package synth

import (
	"fmt"
	"strings"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/sampler"
)

const systemPrompt = "You are an expert at generating SHORT, authentic customer reviews that sound like real Indians writing them. " +
	"Keep reviews to a maximum of 2 sentences, like real customers actually write. " +
	"Do NOT mention SKU codes or product IDs and do NOT start reviews with brand names. " +
	"Focus on natural language mixing, product-specific details with actual benefits, and authentic Indian review style. " +
	"Each review must be UNIQUE: avoid repetitive phrases, vary sentence structure, focus on different benefits."

const uniqueDirective = "\n\nIMPORTANT: Make this review completely different from typical reviews. Be creative and unique!"

var goodExamples = []string{
	"Used daily after bath, skin didn't feel dry even in AC rooms. impressed!",
	"Finally sugar free biscuit jo tasty bhi hai, mom diabetic hai so perfect.",
	"Cap loose tha, wipes thoda dry lage baad me.",
	"Quality bahut acchi hai, really happy with the purchase",
	"Delivery fast thi, product bhi perfect condition mein aaya",
}

var badExamples = []string{
	`"CeraVe ka yeh cream bahut accha hai" (starts with brand)`,
	`"Product CER0576 bahut accha hai" (mentions SKU)`,
	`"yaar bahut accha hai dost" (buddy tone)`,
	`"utpad vishwasniya laga" (formal Hindi)`,
}

// PromptBuilder renders review prompts from the content and language settings.
type PromptBuilder struct {
	content      config.ContentConfig
	language     config.LanguageConfig
	maxSentences int
}

// NewPromptBuilder creates a PromptBuilder.
func NewPromptBuilder(cfg *config.Config) *PromptBuilder {
	return &PromptBuilder{
		content:      cfg.Content,
		language:     cfg.Language,
		maxSentences: cfg.Length.MaxSentences,
	}
}

// Build renders the user prompt for one review of product.
func (b *PromptBuilder) Build(p models.Product, a sampler.Attributes) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate a realistic customer review for: %q\n\n", p.SKUName)

	sb.WriteString("PRODUCT DETAILS:\n")
	fmt.Fprintf(&sb, "- Product Name: %s\n", p.SKUName)
	fmt.Fprintf(&sb, "- Brand: %s\n", orNotSpecified(p.Brand))
	fmt.Fprintf(&sb, "- Category: %s\n", p.Classification)
	fmt.Fprintf(&sb, "- Primary Benefit: %s\n", primaryBenefit(p.Benefits))
	fmt.Fprintf(&sb, "- Additional Benefits: %s\n", additionalBenefits(p.Benefits))
	if len(p.Benefits.RelevantKeywords) > 0 {
		fmt.Fprintf(&sb, "- Related terms: %s\n", strings.Join(p.Benefits.RelevantKeywords, ", "))
	}

	sb.WriteString("\nREQUIREMENTS:\n")
	fmt.Fprintf(&sb, "1. LANGUAGE (%s):\n", a.LanguagePattern)
	for _, ex := range b.language.Examples[a.LanguagePattern] {
		fmt.Fprintf(&sb, "   - e.g. %q\n", ex)
	}
	if len(b.content.ForbiddenWords) > 0 {
		fmt.Fprintf(&sb, "   FORBIDDEN words: %s (no buddy tone)\n", quoteAll(b.content.ForbiddenWords))
	}
	if len(b.content.AllowedAbbreviations) > 0 {
		fmt.Fprintf(&sb, "   ALLOWED: %s\n", quoteAll(b.content.AllowedAbbreviations))
	}

	fmt.Fprintf(&sb, "2. LENGTH (%s): %d-%d words", a.Length.Name, a.Length.MinWords, a.Length.MaxWords)
	if b.maxSentences > 0 {
		fmt.Fprintf(&sb, ", at most %d sentences", b.maxSentences)
	}
	sb.WriteString("\n")

	if a.ContentFocus == sampler.FocusProductSpecific {
		sb.WriteString("3. FOCUS (product-specific): talk about the product itself, such as hydration, sugar-free, rash-free, taste, freshness, skin benefits\n")
	} else {
		sb.WriteString("3. FOCUS (general): talk about delivery, packaging, price or value for money\n")
	}

	sb.WriteString("4. TONE: real and casual like on e-commerce sites, typos and shorthand are fine, personal experience only, no medical guarantees\n")
	fmt.Fprintf(&sb, "5. RATING: the customer gave %d out of 5 stars; match that mood\n", a.Rating)

	if a.IncludeEmoji {
		sb.WriteString("6. EMOJIS: include 1-2 emojis\n")
	} else {
		sb.WriteString("6. EMOJIS: no emojis\n")
	}

	sb.WriteString("7. NEVER: SKU codes, product IDs, starting with the brand name, formal Hindi")
	if len(b.content.RepetitivePhrases) > 0 {
		fmt.Fprintf(&sb, ", overused phrases like %s", quoteAll(b.content.RepetitivePhrases))
	}
	sb.WriteString("\n")

	sb.WriteString("\nGOOD EXAMPLES:\n")
	for _, ex := range goodExamples {
		fmt.Fprintf(&sb, "- %q\n", ex)
	}
	sb.WriteString("\nBAD EXAMPLES:\n")
	for _, ex := range badExamples {
		fmt.Fprintf(&sb, "- %s\n", ex)
	}

	sb.WriteString("\nGenerate ONE review that follows ALL these rules. Reply with the review text only.")
	return sb.String()
}

func primaryBenefit(b models.Benefits) string {
	if p := strings.TrimSpace(b.PrimaryBenefit); p != "" {
		return p
	}
	return models.DefaultPrimaryBenefit
}

func additionalBenefits(b models.Benefits) string {
	if len(b.Benefits) == 0 {
		return "General health support"
	}
	return strings.Join(b.Benefits[:min(len(b.Benefits), 3)], ", ")
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
