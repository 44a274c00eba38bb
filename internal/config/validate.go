package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

var validFormats = []string{"tsv", "csv", "parquet", "sqlite"}

// Validate checks ranges, percentages and enumerations. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q: must be openai or gemini", c.LLM.Provider))
	}
	if c.LLM.ReviewMaxTokens <= 0 {
		errs = append(errs, errors.New("llm.review_max_tokens must be positive"))
	}

	for name, dist := range map[string]map[string]float64{
		"language.distribution":      c.Language.Distribution,
		"review_length.distribution": c.Length.Distribution,
		"usernames.distribution":     c.Usernames.Distribution,
	} {
		if err := checkWeights(name, dist); err != nil {
			errs = append(errs, err)
		}
	}
	for rating, w := range c.Ratings {
		if rating < 2 || rating > 5 {
			errs = append(errs, fmt.Errorf("rating_distribution: rating %d outside 2-5", rating))
		}
		if w < 0 {
			errs = append(errs, fmt.Errorf("rating_distribution: negative weight for %d", rating))
		}
	}

	for bucket := range c.Length.Distribution {
		r, ok := c.Length.WordLimits[bucket]
		if !ok {
			errs = append(errs, fmt.Errorf("review_length.word_limits: missing bucket %q", bucket))
			continue
		}
		if r.Min <= 0 || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("review_length.word_limits.%s: invalid range %d-%d", bucket, r.Min, r.Max))
		}
	}

	if start, end, err := c.Dates.Window(); err != nil {
		errs = append(errs, err)
	} else if end.Before(start) {
		errs = append(errs, fmt.Errorf("dates: end_date %s before start_date %s", c.Dates.End, c.Dates.Start))
	}
	if !percent(c.Dates.HeavyDaysPercent) {
		errs = append(errs, errors.New("dates.heavy_days_percentage must be within 0-100"))
	}
	if c.Dates.OrganicPacing && c.Dates.HeavyDayWeight < 1 {
		errs = append(errs, errors.New("dates.heavy_day_weight must be at least 1"))
	}

	if !percent(c.Content.ProductSpecificRatio) {
		errs = append(errs, errors.New("content.product_specific_ratio must be within 0-100"))
	}
	if !percent(c.Content.EmojiPercent) {
		errs = append(errs, errors.New("content.emojis_percentage must be within 0-100"))
	}
	if c.Usernames.MaxAttempts <= 0 {
		errs = append(errs, errors.New("usernames.max_attempts must be positive"))
	}

	q := c.Quantity.ReviewsPerSKU
	if q.Min <= 0 || q.Max < q.Min {
		errs = append(errs, fmt.Errorf("quantity.reviews_per_sku: invalid range %d-%d", q.Min, q.Max))
	}

	if !slices.Contains(validFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q: must be one of %s", c.Output.Format, strings.Join(validFormats, ", ")))
	}
	if utf8.RuneCountInString(c.Output.Separator) != 1 {
		errs = append(errs, fmt.Errorf("output.separator %q: must be a single character", c.Output.Separator))
	}
	if len(c.Output.Columns) == 0 {
		errs = append(errs, errors.New("output.columns must not be empty"))
	}
	for _, col := range c.Output.Columns {
		if !slices.Contains(models.Columns, col) {
			errs = append(errs, fmt.Errorf("output.columns: unknown column %q", col))
		}
	}

	if c.Checkpoint.Enabled {
		if c.Checkpoint.SaveInterval <= 0 {
			errs = append(errs, errors.New("checkpoint.save_interval must be positive"))
		}
		if c.Checkpoint.Dir == "" {
			errs = append(errs, errors.New("checkpoint.dir must be set"))
		}
	}

	return errors.Join(errs...)
}

func checkWeights(name string, weights map[string]float64) error {
	for label, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s: negative weight for %q", name, label)
		}
	}
	return nil
}

func percent(v float64) bool {
	return v >= 0 && v <= 100
}
