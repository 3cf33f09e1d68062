// Package analyzer runs the full matching pipeline for one profile:
// normalization, skill matching, scoring and feedback.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/feedback"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/scoring"
	"github.com/spigell/resume-matcher/internal/skills"
	"github.com/spigell/resume-matcher/internal/textnorm"
)

// ErrNoUsableInput is returned when both documents are empty after normalization.
var ErrNoUsableInput = errors.New("neither the resume nor the job description contains usable text")

// Result is the outcome of one analysis.
type Result struct {
	Score      float64            `json:"score"`
	MatchLevel scoring.Level      `json:"matchLevel"`
	Feedback   string             `json:"feedback"`
	Success    bool               `json:"success"`
	Profile    string             `json:"profile,omitempty"`
	Breakdown  *scoring.Breakdown `json:"breakdown,omitempty"`
	Gaps       *skills.GapReport  `json:"gaps,omitempty"`
}

// Analyzer holds the read-only pipeline built from one profile.
// Analyze is safe for concurrent use.
type Analyzer struct {
	profile  *profile.Profile
	scorer   *scoring.Scorer
	feedback *feedback.Generator
	logger   *zap.Logger
}

// New validates p and builds the pipeline. A nil logger disables logging.
func New(p *profile.Profile, log *zap.Logger) (*Analyzer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	log = logger.WithFields(log, logger.StringFields(logger.StringField{Key: logger.FieldProfile, Value: p.Name})...)

	norm := textnorm.Default()
	matcher := skills.NewMatcher(p.Taxonomy, norm, p.MatcherOptions())

	return &Analyzer{
		profile:  p,
		scorer:   scoring.New(p.ScoringConfig(), matcher, norm, log),
		feedback: feedback.New(p.Bands, p.Feedback),
		logger:   log,
	}, nil
}

// Profile returns the name of the profile the analyzer was built from.
func (a *Analyzer) Profile() string {
	return a.profile.Name
}

// Analyze scores resume against job. A single empty document yields the floor score
// with fallback feedback; only two empty documents are an error.
func (a *Analyzer) Analyze(ctx context.Context, resume, job string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcome, err := a.scorer.Score(resume, job)
	if err != nil {
		var emptyErr *scoring.EmptyInputError
		if !errors.As(err, &emptyErr) {
			return nil, fmt.Errorf("scoring: %w", err)
		}
		if emptyErr.Side == scoring.SideBoth {
			return nil, ErrNoUsableInput
		}

		a.logger.Warn("document has no usable text, returning floor score", zap.String("side", emptyErr.Side))
		floor := a.scorer.Floor()
		return &Result{
			Score:      floor,
			MatchLevel: a.profile.Bands.Level(floor),
			Feedback:   a.feedback.Fallback(floor),
			Success:    true,
			Profile:    a.profile.Name,
		}, nil
	}

	result := &Result{
		Score:      outcome.Score,
		MatchLevel: a.profile.Bands.Level(outcome.Score),
		Feedback:   a.feedback.Generate(&outcome.Breakdown, &outcome.Gaps, outcome.Score),
		Success:    true,
		Profile:    a.profile.Name,
		Breakdown:  &outcome.Breakdown,
		Gaps:       &outcome.Gaps,
	}

	b := outcome.Breakdown
	a.logger.Debug("analysis finished",
		zap.Float64("score", result.Score),
		zap.String("level", string(result.MatchLevel)),
		zap.Float64("base", b.BaseScore),
		zap.Float64("word_overlap", b.WordOverlapRatio),
		zap.Float64("skill", b.SkillScore),
		zap.Float64("technical_terms", b.TechnicalTermRatio),
		zap.Float64("ngram", b.NGramOverlapRatio),
		zap.Float64("vector", b.VectorCosine),
		zap.Float64("experience", b.ExperienceMatchRatio),
		zap.Float64("education", b.EducationBonus),
		zap.Float64("relevance", b.Relevance),
		zap.Int("matched_skills", len(outcome.Gaps.Matched)),
		zap.Int("missing_critical", len(outcome.Gaps.MissingCritical)),
	)

	return result, nil
}
