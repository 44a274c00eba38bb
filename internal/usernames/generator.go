// Package usernames generates reviewer usernames that are unique within a run.
package usernames

import (
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/sampler"
)

// DefaultMaxAttempts bounds the redraws made for a colliding username.
const DefaultMaxAttempts = 50

// Generator hands out usernames in the configured mix of styles.
// It is owned by one run and is not safe for concurrent use.
type Generator struct {
	rng         *rand.Rand
	styles      *sampler.Weighted[string]
	pools       Pools
	registry    *Registry
	maxAttempts int
	logger      *zap.Logger
}

// NewGenerator returns a Generator drawing from pools and recording accepted
// names in registry.
func NewGenerator(cfg config.UsernameConfig, pools Pools, registry *Registry, rng *rand.Rand, logger *zap.Logger) *Generator {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &Generator{
		rng:         rng,
		styles:      sampler.NewWeighted(cfg.Distribution, config.StyleFirstLast),
		pools:       pools,
		registry:    registry,
		maxAttempts: attempts,
		logger:      logger,
	}
}

// Next returns a username not handed out before in this run. After
// maxAttempts colliding redraws within the chosen style the last candidate
// is accepted anyway.
func (g *Generator) Next() string {
	style := g.styles.Sample(g.rng)
	name := g.build(style)
	for attempt := 0; g.registry.Contains(name) && attempt < g.maxAttempts; attempt++ {
		name = g.build(style)
	}
	if g.registry.Contains(name) {
		g.logger.Warn("username pool exhausted, accepting duplicate",
			zap.String("style", style),
			zap.String("username", name),
			zap.Int("attempts", g.maxAttempts))
	}
	g.registry.Add(name)
	return name
}

// Reset clears the names handed out so far.
func (g *Generator) Reset() {
	g.registry.Reset()
}

// Registry returns the registry backing the generator.
func (g *Generator) Registry() *Registry {
	return g.registry
}

func (g *Generator) build(style string) string {
	switch style {
	case config.StyleFirstOnly:
		return g.withSuffix(g.pick(g.pools.FirstNames))
	case config.StyleLastOnly:
		return g.withSuffix(g.pick(g.pools.LastNames))
	case config.StyleNickname:
		name := g.pick(g.pools.Nicknames)
		if sampler.Chance(g.rng, 40) {
			if sampler.Chance(g.rng, 60) {
				return name + g.pick(g.pools.Numbers)
			}
			return name + g.pick(g.pools.Emojis)
		}
		return name
	case config.StyleAlphanumeric:
		return g.alphanumeric()
	case config.StyleOtherScript:
		name := ""
		if len(g.pools.Scripts) > 0 {
			name = g.pick(sampler.Pick(g.rng, g.pools.Scripts))
		}
		if name == "" || sampler.Chance(g.rng, 30) {
			name += g.pick(g.pools.Numbers)
		}
		return name
	case config.StyleFunkyHandle:
		name := g.pick(g.pools.FunkyHandles)
		if sampler.Chance(g.rng, 40) {
			name += g.pick(g.pools.Numbers)
		}
		return name
	default:
		return g.pick(g.pools.FirstNames) + " " + g.pick(g.pools.LastNames)
	}
}

// withSuffix appends a year or a number 30% of the time.
func (g *Generator) withSuffix(name string) string {
	if !sampler.Chance(g.rng, 30) {
		return name
	}
	if sampler.Chance(g.rng, 50) {
		return name + g.pick(g.pools.Years)
	}
	return name + g.pick(g.pools.Numbers)
}

func (g *Generator) alphanumeric() string {
	base := g.pick(slices.Concat(g.pools.FirstNames, g.pools.Nicknames))
	switch g.rng.IntN(8) {
	case 0:
		return base + g.pick(g.pools.Years)
	case 1:
		return base + g.pick(g.pools.Numbers)
	case 2:
		return base + "_" + g.pick(g.pools.Numbers)
	case 3:
		return base + g.pick(g.pools.RandomChars)
	case 4:
		return g.pick(g.pools.Numbers) + base
	case 5:
		return g.pick(g.pools.RandomChars) + base
	case 6:
		return base + g.pick(g.pools.Emojis)
	default:
		return g.pick(g.pools.Emojis) + base
	}
}

// pick returns a random element, or "" for an empty pool.
func (g *Generator) pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return sampler.Pick(g.rng, items)
}
