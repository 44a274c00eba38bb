package sampler

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
)

// Content focus values.
const (
	FocusProductSpecific = "product-specific"
	FocusGeneral         = "general"
)

// FallbackLanguagePattern is used when the language mix carries no weight.
const FallbackLanguagePattern = "Mixed Natural"

// LengthBucket is a review length label with its word-count guidance.
type LengthBucket struct {
	Name     string
	MinWords int
	MaxWords int
}

// Attributes are the sampled properties of one review.
type Attributes struct {
	Rating          int
	PostDate        time.Time
	Length          LengthBucket
	LanguagePattern string
	ContentFocus    string
	IncludeEmoji    bool
}

// Sampler draws per-review attributes for one run.
type Sampler struct {
	rng *rand.Rand

	ratings   *Weighted[int]
	lengths   *Weighted[string]
	languages *Weighted[string]
	limits    map[string]config.Range

	start  time.Time
	days   int
	pacing *Weighted[int]
	focus  float64
	emoji  float64
}

// New builds a Sampler from cfg. With organic pacing enabled a set of heavy
// days is drawn once from rng and weighted against the remaining light days.
func New(cfg *config.Config, rng *rand.Rand) (*Sampler, error) {
	start, end, err := cfg.Dates.Window()
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("date window %s..%s is empty", cfg.Dates.Start, cfg.Dates.End)
	}

	s := &Sampler{
		rng:       rng,
		ratings:   NewWeighted(cfg.Ratings, 5),
		lengths:   NewWeighted(cfg.Length.Distribution, config.LengthMedium),
		languages: NewWeighted(cfg.Language.Distribution, FallbackLanguagePattern),
		limits:    cfg.Length.WordLimits,
		start:     start,
		days:      int(end.Sub(start).Hours()/24) + 1,
		focus:     cfg.Content.ProductSpecificRatio,
		emoji:     cfg.Content.EmojiPercent,
	}
	if cfg.Dates.OrganicPacing {
		s.pacing = heavyDays(rng, s.days, cfg.Dates.HeavyDaysPercent, cfg.Dates.HeavyDayWeight)
	}
	return s, nil
}

// heavyDays marks percent of the window's days as heavy and weights them
// against light days.
func heavyDays(rng *rand.Rand, days int, percent, weight float64) *Weighted[int] {
	heavy := int(float64(days) * percent / 100)
	weights := make(map[int]float64, days)
	for _, d := range rng.Perm(days) {
		weights[d] = 1
		if heavy > 0 {
			weights[d] = weight
			heavy--
		}
	}
	return NewWeighted(weights, 0)
}

// Rating draws a star rating in 2..5.
func (s *Sampler) Rating() int {
	return s.ratings.Sample(s.rng)
}

// PostDate draws a day within the configured window, inclusive on both ends.
func (s *Sampler) PostDate() time.Time {
	var offset int
	if s.pacing != nil {
		offset = s.pacing.Sample(s.rng)
	} else {
		offset = s.rng.IntN(s.days)
	}
	return s.start.AddDate(0, 0, offset)
}

// LengthBucket draws a review length bucket.
func (s *Sampler) LengthBucket() LengthBucket {
	name := s.lengths.Sample(s.rng)
	r, ok := s.limits[name]
	if !ok {
		r = config.Range{Min: 5, Max: 15}
	}
	return LengthBucket{Name: name, MinWords: r.Min, MaxWords: r.Max}
}

// LanguagePattern draws a language-mix label.
func (s *Sampler) LanguagePattern() string {
	return s.languages.Sample(s.rng)
}

// ContentFocus draws product-specific or general.
func (s *Sampler) ContentFocus() string {
	if Chance(s.rng, s.focus) {
		return FocusProductSpecific
	}
	return FocusGeneral
}

// IncludeEmoji reports whether the review should carry emojis.
func (s *Sampler) IncludeEmoji() bool {
	return Chance(s.rng, s.emoji)
}

// Sample draws every attribute of one review.
func (s *Sampler) Sample() Attributes {
	return Attributes{
		Rating:          s.Rating(),
		PostDate:        s.PostDate(),
		Length:          s.LengthBucket(),
		LanguagePattern: s.LanguagePattern(),
		ContentFocus:    s.ContentFocus(),
		IncludeEmoji:    s.IncludeEmoji(),
	}
}

// ReviewCount draws a reviews-per-SKU count from the inclusive range.
func ReviewCount(rng *rand.Rand, r config.Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}
