package enrichment

import "github.com/aymen-fkir/sku-review-generator/internal/models"

// Taxonomy maps a normalized three-level classification to its benefit list.
type Taxonomy map[models.Classification][]string

// Lookup returns the benefits of the exact leaf c, if any.
func (t Taxonomy) Lookup(c models.Classification) ([]string, bool) {
	benefits, ok := t[c.Normalized()]
	return benefits, ok && len(benefits) > 0
}

// KeywordCategory groups product-name keywords under a category name.
type KeywordCategory struct {
	Name     string
	Keywords []string
}

// FallbackBenefit supplies benefits for products whose name matches one of Keywords.
type FallbackBenefit struct {
	Name     string
	Keywords []string
	Benefits []string
}

func (t Taxonomy) add(category, subcategory, typ string, benefits ...string) {
	c := models.Classification{Category: category, Subcategory: subcategory, Type: typ}
	t[c.Normalized()] = benefits
}

// DefaultTaxonomy returns the built-in classification table.
func DefaultTaxonomy() Taxonomy {
	t := Taxonomy{}
	t.add("PERSONAL CARE", "SKIN CARE", "BODY CARE", "skin hydration", "moisturizing", "body care", "skin health")
	t.add("PERSONAL CARE", "SKIN CARE", "FACE CARE", "skin brightening", "acne treatment", "anti-aging", "facial care")
	t.add("PERSONAL CARE", "HAIR CARE", "SHAMPOO", "dandruff control", "scalp health", "hair strength")
	t.add("PERSONAL CARE", "ORAL CARE", "TOOTHPASTE", "cavity protection", "fresh breath", "gum care")
	t.add("NUTRITION & METABOLISM", "VITAMINS AND MINERALS", "VITAMINS AND MINERALS",
		"energy boost", "immunity support", "vitamin deficiency", "overall health")
	t.add("NUTRITION & METABOLISM", "HEALTH FOOD", "SUGAR FREE", "blood sugar control", "guilt-free snacking", "diabetic friendly")
	t.add("BABY CARE", "DIAPERING", "WIPES", "gentle cleansing", "rash prevention", "soft on skin")
	return t
}

// DefaultKeywords returns the built-in keyword table.
func DefaultKeywords() []KeywordCategory {
	return []KeywordCategory{
		{Name: "fever", Keywords: []string{"dolo", "paracetamol", "acetaminophen", "fever", "temperature"}},
		{Name: "pain", Keywords: []string{"pain", "headache", "migraine", "body pain", "analgesic"}},
		{Name: "vitamin_c", Keywords: []string{"limcee", "vitamin c", "ascorbic acid", "immunity"}},
		{Name: "skincare", Keywords: []string{"cetaphil", "cerave", "cleanser", "moisturizer", "cream"}},
		{Name: "digestive", Keywords: []string{"digestive", "probiotic", "enzyme", "acid reflux", "gut"}},
	}
}

// DefaultFallbacks returns the built-in fallback-benefit table, scanned in order.
func DefaultFallbacks() []FallbackBenefit {
	return []FallbackBenefit{
		{Name: "fever", Keywords: []string{"fever", "paracetamol", "dolo"}, Benefits: []string{"fever reduction", "body temperature control", "fever relief"}},
		{Name: "pain", Keywords: []string{"pain", "headache", "analgesic"}, Benefits: []string{"pain relief", "headache relief", "body pain relief", "analgesic"}},
		{Name: "vitamin_c", Keywords: []string{"vitamin c", "limcee", "ascorbic"}, Benefits: []string{"vitamin C deficiency", "immunity boost", "antioxidant"}},
		{Name: "vitamin_d", Keywords: []string{"vitamin d", "calcium", "bone"}, Benefits: []string{"vitamin D deficiency", "bone health", "calcium absorption"}},
		{Name: "skincare", Keywords: []string{"skin", "acne", "cream", "lotion", "moisturi"}, Benefits: []string{"skin hydration", "acne treatment", "anti-aging", "skin repair"}},
		{Name: "haircare", Keywords: []string{"hair", "dandruff", "shampoo", "scalp"}, Benefits: []string{"hair growth", "dandruff control", "hair strength", "scalp health"}},
		{Name: "digestive", Keywords: []string{"digest", "acid", "constipation", "gut", "probiotic"}, Benefits: []string{"digestion improvement", "acid reflux", "constipation relief", "gut health"}},
	}
}
