package layout

import "github.com/matzehuels/kintree/pkg/errors"

// Default spacing, in the same relative units as the card width.
const (
	DefaultVerticalSpacing    = 400.0
	DefaultCardWidth          = 192.0
	DefaultSpouseOffset       = 210.0
	DefaultMinGapBetweenPairs = 100.0
	DefaultGroupGap           = 200.0
)

// Config holds the spacing constants of the layout. The ratios between the
// defaults are what keep cards from overlapping, so override them together.
type Config struct {
	// VerticalSpacing is the distance between generation layers.
	VerticalSpacing float64 `json:"vertical_spacing" toml:"vertical_spacing"`
	// CardWidth is the visual width of one person card.
	CardWidth float64 `json:"card_width" toml:"card_width"`
	// SpouseOffset is the horizontal distance from a person to their partner.
	SpouseOffset float64 `json:"spouse_offset" toml:"spouse_offset"`
	// MinGapBetweenPairs is the clearance between adjacent child+partner pairs.
	MinGapBetweenPairs float64 `json:"min_gap_between_pairs" toml:"min_gap_between_pairs"`
	// GroupGap is the clearance between sibling groups of different parents.
	GroupGap float64 `json:"group_gap" toml:"group_gap"`
}

// DefaultConfig returns the standard spacing.
func DefaultConfig() Config {
	return Config{
		VerticalSpacing:    DefaultVerticalSpacing,
		CardWidth:          DefaultCardWidth,
		SpouseOffset:       DefaultSpouseOffset,
		MinGapBetweenPairs: DefaultMinGapBetweenPairs,
		GroupGap:           DefaultGroupGap,
	}
}

// PairSpacing is the horizontal slot reserved for one child, its partner,
// and the clearance to the next pair.
func (c Config) PairSpacing() float64 {
	return c.CardWidth + c.SpouseOffset + c.MinGapBetweenPairs
}

// WithDefaults returns c with every zero field replaced by its default.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.VerticalSpacing == 0 {
		c.VerticalSpacing = d.VerticalSpacing
	}
	if c.CardWidth == 0 {
		c.CardWidth = d.CardWidth
	}
	if c.SpouseOffset == 0 {
		c.SpouseOffset = d.SpouseOffset
	}
	if c.MinGapBetweenPairs == 0 {
		c.MinGapBetweenPairs = d.MinGapBetweenPairs
	}
	if c.GroupGap == 0 {
		c.GroupGap = d.GroupGap
	}
	return c
}

// Validate rejects configurations that cannot produce a readable chart.
func (c Config) Validate() error {
	if c.CardWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "card_width must be positive, got %g", c.CardWidth)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"vertical_spacing", c.VerticalSpacing},
		{"spouse_offset", c.SpouseOffset},
		{"min_gap_between_pairs", c.MinGapBetweenPairs},
		{"group_gap", c.GroupGap},
	}
	for _, f := range fields {
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative, got %g", f.name, f.v)
		}
	}
	return nil
}
