package synth

import (
	"math/rand/v2"
	"strings"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/sampler"
)

// Fallback templates by rating band. {benefit} is the primary benefit and
// {brand} is " from <brand>" or empty.
var (
	highBandTemplates = []string{
		"Great product, {benefit} ke liye bilkul sahi hai{brand}.",
		"Works well for {benefit}, would buy again{brand}.",
		"Product accha hai, {benefit} ke liye very good value{brand}.",
		"Excellent quality and effective results for {benefit}.",
		"Great value for money, {benefit} ke liye perfect choice.",
		"Using it for a few weeks now, {benefit} mein farak dikha.",
	}
	midBandTemplates = []string{
		"Average experience, but {benefit} ke liye kaam kar gaya.",
		"Theek thaak hai, {benefit} ke liye okay option{brand}.",
		"Decent for {benefit}, price thoda zyada laga.",
	}
	lowBandTemplates = []string{
		"Not fully convinced, {benefit} ke liye results slow the.",
		"Expected more for {benefit}, packaging bhi average tha{brand}.",
		"Thoda disappointed, {benefit} mein zyada farak nahi dikha.",
	}
)

// fallbackReview renders a template for product chosen with rng from the
// band matching rating. The text always contains the primary benefit.
func fallbackReview(rng *rand.Rand, p models.Product, rating int) string {
	var pool []string
	switch {
	case rating >= 4:
		pool = highBandTemplates
	case rating == 3:
		pool = midBandTemplates
	default:
		pool = lowBandTemplates
	}

	brand := ""
	if b := strings.TrimSpace(p.Brand); b != "" {
		brand = " from " + b
	}
	r := strings.NewReplacer("{benefit}", primaryBenefit(p.Benefits), "{brand}", brand)
	return r.Replace(sampler.Pick(rng, pool))
}
