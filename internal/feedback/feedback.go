// Package feedback turns a scoring breakdown and a skill gap report into
// human-readable advice.
package feedback

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-matcher/internal/scoring"
	"github.com/spigell/resume-matcher/internal/skills"
)

// recommendationThreshold splits the improvement advice from the polishing advice.
const recommendationThreshold = 70

// Options limits how many skills each section lists.
type Options struct {
	MaxMatched  int `mapstructure:"max_matched" json:"maxMatched" validate:"gte=0"`
	MaxCritical int `mapstructure:"max_critical" json:"maxCritical" validate:"gte=0"`
	MaxOptional int `mapstructure:"max_optional" json:"maxOptional" validate:"gte=0"`
}

// DefaultOptions lists six matched, four critical and three optional skills.
var DefaultOptions = Options{MaxMatched: 6, MaxCritical: 4, MaxOptional: 3}

var openings = map[scoring.Level]string{
	scoring.LevelExcellent:        "Excellent match! Your resume strongly aligns with the job requirements.",
	scoring.LevelVeryGood:         "Strong candidate! Your profile shows great potential for this role.",
	scoring.LevelGood:             "Good match! Your resume covers most of the job requirements.",
	scoring.LevelFair:             "Fair match with room for improvement.",
	scoring.LevelNeedsImprovement: "Significant gap: consider a major resume optimization.",
}

var fallbacks = map[scoring.Level]string{
	scoring.LevelExcellent:        "Great match! Your resume aligns well with the job requirements.",
	scoring.LevelVeryGood:         "Very good match with a few optimization opportunities.",
	scoring.LevelGood:             "Good foundation with opportunities for optimization.",
	scoring.LevelFair:             "Fair match: highlight the experience and skills the job asks for.",
	scoring.LevelNeedsImprovement: "Needs improvement: add more relevant experience and keywords from the job description.",
}

var (
	improveRecommendations = []string{
		"Add specific project examples that use the required technologies",
		"Include more technical keywords from the job description",
		"Highlight relevant work experience with quantified achievements",
		"Add any relevant certifications or courses",
	}
	polishRecommendations = []string{
		"Fine-tune keyword optimization",
		"Add metrics and quantified achievements",
		"Ensure all relevant projects are highlighted",
	}
)

// Generator is immutable and safe for concurrent use.
type Generator struct {
	bands scoring.Bands
	opts  Options
}

// New creates a generator keyed by the given match level bands.
func New(bands scoring.Bands, opts Options) *Generator {
	return &Generator{bands: bands, opts: opts}
}

// Fallback returns the single generic sentence for the band of score.
func (g *Generator) Fallback(score float64) string {
	if msg, ok := fallbacks[g.bands.Level(score)]; ok {
		return msg
	}
	return fallbacks[scoring.LevelNeedsImprovement]
}

// Generate builds the full feedback. Missing analysis data yields the fallback sentence.
func (g *Generator) Generate(b *scoring.Breakdown, gaps *skills.GapReport, score float64) string {
	if b == nil || gaps == nil {
		return g.Fallback(score)
	}

	level := g.bands.Level(score)
	opening, ok := openings[level]
	if !ok {
		opening = openings[scoring.LevelNeedsImprovement]
	}
	sections := []string{opening}

	if line := matchedLine(gaps.Matched, g.opts.MaxMatched); line != "" {
		sections = append(sections, line)
	}

	if len(gaps.Partial) > 0 {
		parts := make([]string, 0, len(gaps.Partial))
		for _, p := range gaps.Partial {
			parts = append(parts, fmt.Sprintf("%s (found %q)", displayName(p.Category), p.ResumeToken))
		}
		sections = append(sections, "Close matches, check the spelling: "+strings.Join(parts, ", "))
	}

	if names := categoryNames(gaps.MissingCritical, g.opts.MaxCritical); len(names) > 0 {
		sections = append(sections,
			"Critical missing skills: "+strings.Join(names, ", "),
			"Focus on these first: they are essential for this role.",
		)
	}

	if names := categoryNames(gaps.MissingOptional, g.opts.MaxOptional); len(names) > 0 {
		sections = append(sections, "Additional skills to consider: "+strings.Join(names, ", "))
	}

	if b.RequiredYears > 0 {
		if b.CandidateYears >= b.RequiredYears {
			sections = append(sections, fmt.Sprintf("Experience match: %d years (meets the %d year requirement).", b.CandidateYears, b.RequiredYears))
		} else {
			sections = append(sections, fmt.Sprintf("Experience gap: %d years (needs %d years).", b.CandidateYears, b.RequiredYears))
		}
	}

	sections = append(sections, fmt.Sprintf("Keyword overlap: %d%% (%d of %d job keywords) | Skill match: %d%% | Content relevance: %d%%",
		percent(b.WordOverlapRatio), b.MatchedKeywords, b.JobKeywords,
		percent(b.SkillScore), percent(b.VectorCosine),
	))

	recommendations := polishRecommendations
	if score < recommendationThreshold {
		recommendations = improveRecommendations
	}
	sections = append(sections, "Recommendations:")
	for _, r := range recommendations {
		sections = append(sections, "- "+r)
	}

	return strings.Join(sections, "\n")
}

// matchedLine groups the strongest matches by their group label, keeping the order
// in which groups first appear.
func matchedLine(matched []skills.Match, limit int) string {
	if len(matched) > limit {
		matched = matched[:limit]
	}
	if len(matched) == 0 {
		return ""
	}

	var groups []string
	byGroup := make(map[string][]string)
	for _, m := range matched {
		group := m.Group
		if group == "" {
			group = "Other"
		}
		if _, ok := byGroup[group]; !ok {
			groups = append(groups, group)
		}
		byGroup[group] = append(byGroup[group], displayName(m.Category))
	}

	parts := make([]string, 0, len(groups))
	for _, group := range groups {
		parts = append(parts, fmt.Sprintf("%s: %s", group, strings.Join(byGroup[group], ", ")))
	}
	return "Matched skills: " + strings.Join(parts, "; ")
}

func categoryNames(categories []skills.Category, limit int) []string {
	if len(categories) > limit {
		categories = categories[:limit]
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, displayName(c.Name))
	}
	return names
}

func displayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func percent(ratio float64) int {
	return int(math.Round(math.Min(ratio, 1) * 100))
}
