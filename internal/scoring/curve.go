package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Breakpoint starts a linear segment of a Curve: for base >= Min the score is
// Offset + (base - Min) * Slope until the next breakpoint.
type Breakpoint struct {
	Min    float64 `mapstructure:"min" json:"min" validate:"gte=0"`
	Offset float64 `mapstructure:"offset" json:"offset" validate:"gte=0,lte=100"`
	Slope  float64 `mapstructure:"slope" json:"slope" validate:"gte=0"`
}

// Curve is a monotonic piecewise-linear map from base score to the 0..100 scale.
// Breakpoints are sorted by Min, starting at 0.
type Curve []Breakpoint

// Map rescales base through the segment whose Min is the largest one not above base.
func (c Curve) Map(base float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if base < 0 {
		base = 0
	}

	segment := c[0]
	for _, bp := range c[1:] {
		if base < bp.Min {
			break
		}
		segment = bp
	}
	return segment.Offset + (base-segment.Min)*segment.Slope
}

// Validate checks that the curve starts at 0, that breakpoints ascend and that no
// segment ends above the offset of the next one.
func (c Curve) Validate() error {
	if len(c) == 0 {
		return errors.New("curve has no breakpoints")
	}
	if c[0].Min != 0 {
		return fmt.Errorf("curve must start at 0, starts at %v", c[0].Min)
	}

	for i := 1; i < len(c); i++ {
		prev, cur := c[i-1], c[i]
		if cur.Min <= prev.Min {
			return fmt.Errorf("breakpoint %d: min %v is not above %v", i, cur.Min, prev.Min)
		}
		end := prev.Offset + (cur.Min-prev.Min)*prev.Slope
		// 0.01 absorbs rounded slopes such as 133.33.
		if end > cur.Offset+0.01 {
			return fmt.Errorf("breakpoint %d: curve steps down from %.2f to %.2f at %v", i, end, cur.Offset, cur.Min)
		}
	}
	return nil
}

// BonusRule adds Points when Signal is above Above.
// The no_missing_critical signal ignores Above.
type BonusRule struct {
	Signal Signal  `mapstructure:"signal" json:"signal" validate:"required"`
	Above  float64 `mapstructure:"above" json:"above"`
	Points float64 `mapstructure:"points" json:"points" validate:"gte=0"`
}

// Level names a score band.
type Level string

const (
	LevelExcellent        Level = "Excellent Match"
	LevelVeryGood         Level = "Very Good Match"
	LevelGood             Level = "Good Match"
	LevelFair             Level = "Fair Match"
	LevelNeedsImprovement Level = "Needs Improvement"
)

// Band is the lowest score that still earns Level.
type Band struct {
	Min   float64 `mapstructure:"min" json:"min" validate:"gte=0,lte=100"`
	Level Level   `mapstructure:"level" json:"level" validate:"required"`
}

// Bands are ordered from the highest Min down.
type Bands []Band

// Level returns the first band the score reaches, or LevelNeedsImprovement.
func (b Bands) Level(score float64) Level {
	for _, band := range b {
		if score >= band.Min {
			return band.Level
		}
	}
	return LevelNeedsImprovement
}

// Validate checks that the bands strictly descend.
func (b Bands) Validate() error {
	if len(b) == 0 {
		return errors.New("no match level bands")
	}
	for i := 1; i < len(b); i++ {
		if b[i].Min >= b[i-1].Min {
			return fmt.Errorf("band %q: min %v is not below %v", b[i].Level, b[i].Min, b[i-1].Min)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
