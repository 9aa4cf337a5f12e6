// Package icon renders the status glyphs printed next to download progress
// and command results.
//
// Each icon has one glyph per variant and the active variant is taken from
// the icons.variant setting.
package icon

import (
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/key"
)

// variants in the column order of every glyphs entry.
var variants = []string{"emoji", "nerd", "plain", "kaomoji", "squares"}

// AvailableVariants returns the names accepted by icons.variant.
func AvailableVariants() []string {
	return lo.Clone(variants)
}

// glyphs holds one rendering per variant, ordered like variants.
type glyphs [5]string

// Get renders i in the configured variant. Unknown variants and icons render empty.
func Get(i Icon) string {
	g, ok := icons[i]
	if !ok {
		return ""
	}

	column := lo.IndexOf(variants, viper.GetString(key.IconsVariant))
	if column < 0 {
		return ""
	}

	return g[column]
}
