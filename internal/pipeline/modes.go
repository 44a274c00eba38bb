package pipeline

import (
	"fmt"
	"strings"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
)

// Run modes.
const (
	ModeQuick         = "quick"
	ModeMedium        = "medium"
	ModeComprehensive = "comprehensive"
	ModeStandard      = "standard"
)

// Modes lists every run mode.
var Modes = []string{ModeQuick, ModeMedium, ModeComprehensive, ModeStandard}

var modeRanges = map[string]config.Range{
	ModeQuick:         {Min: 1, Max: 1},
	ModeMedium:        {Min: 3, Max: 5},
	ModeComprehensive: {Min: 15, Max: 20},
}

// ReviewRange returns the reviews-per-SKU range of mode. The standard mode
// uses the configured range.
func ReviewRange(mode string, configured config.Range) (config.Range, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" || mode == ModeStandard {
		return configured, nil
	}
	r, ok := modeRanges[mode]
	if !ok {
		return config.Range{}, fmt.Errorf("unknown mode %q: must be one of %s", mode, strings.Join(Modes, ", "))
	}
	return r, nil
}
