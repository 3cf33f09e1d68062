// Package profile bundles every tunable constant of the matcher into named,
// validated configuration profiles.
package profile

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/resume-matcher/internal/feedback"
	"github.com/spigell/resume-matcher/internal/scoring"
	"github.com/spigell/resume-matcher/internal/skills"
)

// weightTolerance is how far signal weights may drift from a sum of 1.
const weightTolerance = 0.001

var (
	// ErrInvalidProfile wraps every validation failure.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrUnknownProfile is returned for a profile name that is not registered.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrDuplicateProfile is returned when a name is registered twice.
	ErrDuplicateProfile = errors.New("profile already registered")
)

var validate = validator.New()

// Profile is the complete tuning of one analysis pipeline.
type Profile struct {
	Name        string `mapstructure:"name" json:"name" validate:"required"`
	Description string `mapstructure:"description" json:"description"`

	Taxonomy       []skills.Category `mapstructure:"taxonomy" json:"taxonomy" validate:"required,min=1,dive"`
	CriticalWeight float64           `mapstructure:"critical_weight" json:"criticalWeight" validate:"gt=0"`
	FuzzyThreshold float64           `mapstructure:"fuzzy_threshold" json:"fuzzyThreshold" validate:"gt=0,lte=1"`
	FuzzyCredit    float64           `mapstructure:"fuzzy_credit" json:"fuzzyCredit" validate:"gte=0,lte=1"`
	FrequencyCap   float64           `mapstructure:"frequency_cap" json:"frequencyCap" validate:"gte=1"`
	EducationCap   float64           `mapstructure:"education_cap" json:"educationCap" validate:"gte=0,lte=1"`

	Weights   scoring.Weights       `mapstructure:"weights" json:"weights"`
	Length    scoring.LengthBonus   `mapstructure:"length_bonus" json:"lengthBonus"`
	Relevance scoring.RelevanceGate `mapstructure:"relevance" json:"relevance"`
	Curve     scoring.Curve         `mapstructure:"curve" json:"curve" validate:"required,min=1,dive"`
	Bonuses   []scoring.BonusRule   `mapstructure:"bonuses" json:"bonuses" validate:"dive"`
	Floor     float64               `mapstructure:"floor" json:"floor" validate:"gte=0,lte=100"`
	Ceiling   float64               `mapstructure:"ceiling" json:"ceiling" validate:"gtefield=Floor,lte=100"`

	Bands    scoring.Bands    `mapstructure:"bands" json:"bands" validate:"required,min=1,dive"`
	Feedback feedback.Options `mapstructure:"feedback" json:"feedback"`
}

// Validate checks the struct tags and the constraints that span fields.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidProfile, p.Name, err)
	}
	return nil
}

func (p *Profile) validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(p.Taxonomy))
	for _, category := range p.Taxonomy {
		name := strings.TrimSpace(category.Name)
		if name == "" {
			return errors.New("category name is blank")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("category %q is declared twice", name)
		}
		seen[name] = struct{}{}
		for _, synonym := range category.Synonyms {
			if strings.TrimSpace(synonym) == "" {
				return fmt.Errorf("category %q has a blank synonym", name)
			}
		}
	}

	if sum := p.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("signal weights sum to %.4f, want 1", sum)
	}

	if err := p.Curve.Validate(); err != nil {
		return fmt.Errorf("curve: %w", err)
	}

	for _, bonus := range p.Bonuses {
		if !slices.Contains(scoring.BonusSignals, bonus.Signal) {
			return fmt.Errorf("bonus refers to unknown signal %q", bonus.Signal)
		}
	}

	if err := p.Bands.Validate(); err != nil {
		return fmt.Errorf("bands: %w", err)
	}

	return nil
}

// ScoringConfig returns the numeric part of the profile consumed by the scorer.
func (p *Profile) ScoringConfig() scoring.Config {
	return scoring.Config{
		Weights:      p.Weights,
		Length:       p.Length,
		Relevance:    p.Relevance,
		Curve:        p.Curve,
		Bonuses:      p.Bonuses,
		Floor:        p.Floor,
		Ceiling:      p.Ceiling,
		FrequencyCap: p.FrequencyCap,
		FuzzyCredit:  p.FuzzyCredit,
		EducationCap: p.EducationCap,
	}
}

// MatcherOptions returns the skill matcher tuning of the profile.
func (p *Profile) MatcherOptions() skills.Options {
	return skills.Options{
		CriticalWeight: p.CriticalWeight,
		FuzzyThreshold: p.FuzzyThreshold,
		FuzzyCredit:    p.FuzzyCredit,
	}
}

// Clone returns a deep copy that can be modified without touching p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Taxonomy = make([]skills.Category, len(p.Taxonomy))
	for i, category := range p.Taxonomy {
		category.Synonyms = slices.Clone(category.Synonyms)
		c.Taxonomy[i] = category
	}
	c.Curve = slices.Clone(p.Curve)
	c.Bonuses = slices.Clone(p.Bonuses)
	c.Bands = slices.Clone(p.Bands)
	return &c
}
