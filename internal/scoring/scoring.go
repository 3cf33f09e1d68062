// Package scoring combines the similarity signals of a resume and a job description
// into one bounded score.
package scoring

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/skills"
	"github.com/spigell/resume-matcher/internal/textnorm"
)

// Signal names a breakdown value that weights and bonus rules refer to.
type Signal string

const (
	SignalWordOverlap       Signal = "word_overlap"
	SignalSkill             Signal = "skill"
	SignalTechnicalTerms    Signal = "technical_terms"
	SignalNGram             Signal = "ngram"
	SignalVector            Signal = "vector"
	SignalExperience        Signal = "experience"
	SignalEducation         Signal = "education"
	SignalBase              Signal = "base"
	SignalNoMissingCritical Signal = "no_missing_critical"
)

// BonusSignals lists the signals a BonusRule may name.
var BonusSignals = []Signal{
	SignalWordOverlap, SignalSkill, SignalTechnicalTerms, SignalNGram, SignalVector,
	SignalExperience, SignalEducation, SignalBase, SignalNoMissingCritical,
}

// Weights of the signals in the base score. They must sum to 1.
type Weights struct {
	WordOverlap    float64 `mapstructure:"word_overlap" json:"wordOverlap" validate:"gte=0,lte=1"`
	Skill          float64 `mapstructure:"skill" json:"skill" validate:"gte=0,lte=1"`
	TechnicalTerms float64 `mapstructure:"technical_terms" json:"technicalTerms" validate:"gte=0,lte=1"`
	NGram          float64 `mapstructure:"ngram" json:"ngram" validate:"gte=0,lte=1"`
	Vector         float64 `mapstructure:"vector" json:"vector" validate:"gte=0,lte=1"`
	Experience     float64 `mapstructure:"experience" json:"experience" validate:"gte=0,lte=1"`
	Education      float64 `mapstructure:"education" json:"education" validate:"gte=0,lte=1"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.WordOverlap + w.Skill + w.TechnicalTerms + w.NGram + w.Vector + w.Experience + w.Education
}

// LengthBonus rewards resumes that are not much shorter than the job description:
// min(resume words / max(job words, MinJobWords), 1) * Cap.
type LengthBonus struct {
	Cap         float64 `mapstructure:"cap" json:"cap" validate:"gte=0,lte=1"`
	MinJobWords int     `mapstructure:"min_job_words" json:"minJobWords" validate:"gte=1"`
}

// RelevanceGate scales the signals that say nothing about skills by the relevance of
// the resume: max(skill score, technical term ratio), capped at 1. Experience, education
// and the length bonus are multiplied by the relevance; word, n-gram and vector overlap
// keep TextFloor of their weight at zero relevance. A job without skill categories or
// technical terms has relevance 1.
type RelevanceGate struct {
	Enabled   bool    `mapstructure:"enabled" json:"enabled"`
	TextFloor float64 `mapstructure:"text_floor" json:"textFloor" validate:"gte=0,lte=1"`
}

// Config is the numeric tuning of a Scorer.
type Config struct {
	Weights      Weights
	Length       LengthBonus
	Relevance    RelevanceGate
	Curve        Curve
	Bonuses      []BonusRule
	Floor        float64
	Ceiling      float64
	FrequencyCap float64
	// FuzzyCredit is the least frequency ratio an exact match earns, so that an exact
	// mention never counts less than a misspelled one.
	FuzzyCredit  float64
	EducationCap float64
}

// Breakdown holds every intermediate value of one scoring run.
type Breakdown struct {
	WordOverlapRatio     float64 `json:"wordOverlapRatio"`
	SkillScore           float64 `json:"skillScore"`
	TechnicalTermRatio   float64 `json:"technicalTermRatio"`
	NGramOverlapRatio    float64 `json:"ngramOverlapRatio"`
	VectorCosine         float64 `json:"vectorCosine"`
	ExperienceMatchRatio float64 `json:"experienceMatchRatio"`
	EducationBonus       float64 `json:"educationBonus"`
	LengthBonus          float64 `json:"lengthBonus"`
	Relevance            float64 `json:"relevance"`
	BaseScore            float64 `json:"baseScore"`
	CandidateYears       int     `json:"candidateYears"`
	RequiredYears        int     `json:"requiredYears"`
	MatchedKeywords      int     `json:"matchedKeywords"`
	JobKeywords          int     `json:"jobKeywords"`
}

// Value returns the breakdown value of signal.
func (b Breakdown) Value(signal Signal) (float64, bool) {
	switch signal {
	case SignalWordOverlap:
		return b.WordOverlapRatio, true
	case SignalSkill:
		return b.SkillScore, true
	case SignalTechnicalTerms:
		return b.TechnicalTermRatio, true
	case SignalNGram:
		return b.NGramOverlapRatio, true
	case SignalVector:
		return b.VectorCosine, true
	case SignalExperience:
		return b.ExperienceMatchRatio, true
	case SignalEducation:
		return b.EducationBonus, true
	case SignalBase:
		return b.BaseScore, true
	default:
		return 0, false
	}
}

// Outcome is the result of Score.
type Outcome struct {
	Score     float64
	Breakdown Breakdown
	Gaps      skills.GapReport
	// JobCategories is the number of skill categories the job description names.
	JobCategories int
}

// Scorer is immutable and safe for concurrent use.
type Scorer struct {
	cfg     Config
	matcher *skills.Matcher
	norm    *textnorm.Normalizer
	logger  *zap.Logger
}

// New creates a scorer. A nil normalizer or logger falls back to the defaults.
func New(cfg Config, matcher *skills.Matcher, norm *textnorm.Normalizer, logger *zap.Logger) *Scorer {
	if norm == nil {
		norm = textnorm.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{cfg: cfg, matcher: matcher, norm: norm, logger: logger}
}

// Floor returns the lowest score the scorer reports.
func (s *Scorer) Floor() float64 { return s.cfg.Floor }

// Ceiling returns the highest score the scorer reports.
func (s *Scorer) Ceiling() float64 { return s.cfg.Ceiling }

// Score compares the two texts. It fails with *EmptyInputError when either
// text normalizes to empty.
func (s *Scorer) Score(resumeText, jobText string) (*Outcome, error) {
	resume := s.document(resumeText)
	job := s.document(jobText)

	switch {
	case resume.normalized == "" && job.normalized == "":
		return nil, &EmptyInputError{Side: SideBoth}
	case resume.normalized == "":
		return nil, &EmptyInputError{Side: SideResume}
	case job.normalized == "":
		return nil, &EmptyInputError{Side: SideJob}
	}

	var b Breakdown

	b.WordOverlapRatio, b.MatchedKeywords = overlap(tokenSet(resume.tokens), tokenSet(job.tokens))
	b.JobKeywords = len(tokenSet(job.tokens))

	resumeMatches := s.matcher.Match(resume.normalized)
	jobMatches := s.matcher.Match(job.normalized)
	partial := s.matcher.Fuzzy(resume.normalized, job.normalized, resumeMatches, jobMatches)
	gaps := s.matcher.Gaps(resumeMatches, jobMatches, partial)
	b.SkillScore = s.skillScore(resumeMatches, jobMatches, partial)

	jobTerms := technicalTerms(job, s.matcher, s.norm)
	b.TechnicalTermRatio = technicalTermRatio(resume, technicalTerms(resume, s.matcher, s.norm), jobTerms)

	b.NGramOverlapRatio = ngramOverlap(resume.tokens, job.tokens)

	jobVector := termVector(job.tokens)
	cosine, err := Cosine(coveredVector(resume.tokens, jobVector), jobVector)
	if err != nil {
		if !errors.Is(err, ErrVectorSimilarity) {
			return nil, err
		}
		s.logger.Debug("no shared vocabulary, vector similarity is 0", zap.Error(err))
		cosine = 0
	}
	b.VectorCosine = cosine

	b.CandidateYears = statedYears(resume.normalized)
	b.RequiredYears = statedYears(job.normalized)
	b.ExperienceMatchRatio = experienceRatio(b.CandidateYears, b.RequiredYears)

	b.EducationBonus = educationBonus(resume.normalized, job.normalized, s.cfg.EducationCap)

	b.LengthBonus = s.lengthBonus(len(resume.tokens), len(job.tokens))

	b.Relevance = s.relevance(b, len(jobMatches) > 0 || len(jobTerms) > 0)
	textGate := 1.0
	if s.cfg.Relevance.Enabled {
		textGate = s.cfg.Relevance.TextFloor + (1-s.cfg.Relevance.TextFloor)*b.Relevance
	}

	w := s.cfg.Weights
	text := w.WordOverlap*b.WordOverlapRatio + w.NGram*b.NGramOverlapRatio + w.Vector*b.VectorCosine
	contextual := w.Experience*b.ExperienceMatchRatio + w.Education*b.EducationBonus + b.LengthBonus
	b.BaseScore = w.Skill*b.SkillScore +
		w.TechnicalTerms*b.TechnicalTermRatio +
		textGate*text +
		b.Relevance*contextual

	return &Outcome{
		Score:         s.Rescale(b, gaps, len(jobMatches)),
		Breakdown:     b,
		Gaps:          gaps,
		JobCategories: len(jobMatches),
	}, nil
}

// Rescale maps the base score through the curve, adds the bonuses that fire,
// clamps to [floor, ceiling] and rounds to two decimals.
func (s *Scorer) Rescale(b Breakdown, gaps skills.GapReport, jobCategories int) float64 {
	score := s.cfg.Curve.Map(b.BaseScore)
	for _, rule := range s.cfg.Bonuses {
		if s.fires(rule, b, gaps, jobCategories) {
			score += rule.Points
		}
	}
	return round2(clamp(score, s.cfg.Floor, s.cfg.Ceiling))
}

func (s *Scorer) fires(rule BonusRule, b Breakdown, gaps skills.GapReport, jobCategories int) bool {
	if rule.Signal == SignalNoMissingCritical {
		return jobCategories > 0 && len(gaps.MissingCritical) == 0
	}
	value, ok := b.Value(rule.Signal)
	return ok && value > rule.Above
}

// skillScore sums matched weights scaled by the capped frequency ratio plus fuzzy
// credit, over the total weight of the categories the job names.
func (s *Scorer) skillScore(resume, job map[string]skills.Match, partial []skills.FuzzyMatch) float64 {
	total, matched := 0.0, 0.0
	for name, jm := range job {
		total += jm.Weight
		rm, ok := resume[name]
		if !ok {
			continue
		}
		frequency := float64(rm.Occurrences) / float64(max(jm.Occurrences, 1))
		if s.cfg.FrequencyCap > 0 {
			frequency = math.Min(frequency, s.cfg.FrequencyCap)
		}
		frequency = math.Max(frequency, s.cfg.FuzzyCredit)
		matched += jm.Weight * frequency
	}
	for _, p := range partial {
		matched += p.Credit
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

// relevance is 1 when the gate is off or the job names nothing technical.
func (s *Scorer) relevance(b Breakdown, technicalJob bool) float64 {
	if !s.cfg.Relevance.Enabled || !technicalJob {
		return 1
	}
	return clamp(math.Max(b.SkillScore, b.TechnicalTermRatio), 0, 1)
}

func (s *Scorer) lengthBonus(resumeWords, jobWords int) float64 {
	if s.cfg.Length.Cap <= 0 {
		return 0
	}
	denominator := max(jobWords, s.cfg.Length.MinJobWords, 1)
	return math.Min(float64(resumeWords)/float64(denominator), 1) * s.cfg.Length.Cap
}

func (s *Scorer) document(raw string) document {
	normalized := s.norm.Normalize(raw)
	return document{raw: raw, normalized: normalized, tokens: textnorm.Tokens(normalized)}
}
