// Package enrichment builds the benefit context each product's reviews are grounded on.
package enrichment

import (
	"slices"
	"strings"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

// maxRelevantKeywords caps Benefits.RelevantKeywords.
const maxRelevantKeywords = 5

// Enhancer merges taxonomy, keyword and fallback tables into a benefits draft.
// It is read-only after construction and safe for concurrent use.
type Enhancer struct {
	taxonomy  Taxonomy
	keywords  []KeywordCategory
	fallbacks []FallbackBenefit
}

// NewEnhancer creates an Enhancer over the given tables.
func NewEnhancer(taxonomy Taxonomy, keywords []KeywordCategory, fallbacks []FallbackBenefit) *Enhancer {
	return &Enhancer{taxonomy: taxonomy, keywords: keywords, fallbacks: fallbacks}
}

// NewDefaultEnhancer creates an Enhancer over the built-in tables.
func NewDefaultEnhancer() *Enhancer {
	return NewEnhancer(DefaultTaxonomy(), DefaultKeywords(), DefaultFallbacks())
}

// Enhance returns draft enriched for product. draft is not modified.
func (e *Enhancer) Enhance(product models.Product, draft models.Benefits) models.Benefits {
	out := draft
	out.Benefits = slices.Clone(draft.Benefits)
	out.MedicalConditions = slices.Clone(draft.MedicalConditions)

	if leaf, ok := e.taxonomy.Lookup(product.Classification); ok {
		out.SpecificBenefits = slices.Clone(leaf)
		out.PrimaryBenefit = leaf[0]
		out.Benefits = mergeUnique(out.Benefits, leaf)
	}

	name := strings.ToLower(product.SKUName)

	var keywords []string
	for _, kc := range e.keywords {
		if containsAny(name, kc.Keywords) {
			keywords = mergeUnique(keywords, kc.Keywords)
		}
	}
	if len(keywords) > 0 {
		out.RelevantKeywords = keywords[:min(len(keywords), maxRelevantKeywords)]
	}

	if out.IsGeneric() {
		for _, fb := range e.fallbacks {
			if len(fb.Benefits) > 0 && containsAny(name, fb.Keywords) {
				out.PrimaryBenefit = fb.Benefits[0]
				out.Benefits = mergeUnique(out.Benefits, fb.Benefits)
				break
			}
		}
	}
	if strings.TrimSpace(out.PrimaryBenefit) == "" {
		out.PrimaryBenefit = models.DefaultPrimaryBenefit
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// mergeUnique appends the items of add missing from base, ignoring case.
func mergeUnique(base, add []string) []string {
	for _, item := range add {
		if !slices.ContainsFunc(base, func(b string) bool { return strings.EqualFold(b, item) }) {
			base = append(base, item)
		}
	}
	return base
}
