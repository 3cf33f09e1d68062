package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/scoring"
)

const (
	mernJob    = "Looking for MERN stack developer, 3+ years experience, React, Node.js, MongoDB required"
	mernResume = "5 years experience with React, Node.js, MongoDB, Express, REST APIs"

	frontendJob = "Senior frontend engineer: React, TypeScript, JavaScript, Redux, Jest, Webpack and GraphQL required"
	bakerResume = "Pastry chef baking sourdough bread, croissants, cakes daily at local bakery"
)

func newAnalyzer(t *testing.T, p *profile.Profile) *Analyzer {
	t.Helper()
	a, err := New(p, nil)
	require.NoError(t, err)
	return a
}

func TestNewRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	p := profile.NewStandard()
	p.Weights.Skill = 0.9

	_, err := New(p, nil)
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)
}

func TestScenarioStrongMERNMatch(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, profile.NewStandard())
	result, err := a.Analyze(context.Background(), mernResume, mernJob)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, profile.Standard, result.Profile)
	assert.GreaterOrEqual(t, result.Score, 65.0)
	assert.Equal(t, scoring.LevelExcellent, result.MatchLevel)

	require.NotNil(t, result.Breakdown)
	assert.InDelta(t, 1, result.Breakdown.SkillScore, 1e-9)
	assert.GreaterOrEqual(t, result.Breakdown.ExperienceMatchRatio, 1.0)
	assert.Equal(t, 5, result.Breakdown.CandidateYears)
	assert.Equal(t, 3, result.Breakdown.RequiredYears)

	require.NotNil(t, result.Gaps)
	matched := make([]string, 0, len(result.Gaps.Matched))
	for _, m := range result.Gaps.Matched {
		matched = append(matched, m.Category)
	}
	assert.ElementsMatch(t, []string{"react", "nodejs", "mongodb"}, matched)
	assert.Empty(t, result.Gaps.MissingCritical)
	assert.Contains(t, result.Feedback, "Experience match: 5 years")
}

func TestScenarioStrongMERNMatchAcrossSkillProfiles(t *testing.T) {
	t.Parallel()

	for _, p := range []*profile.Profile{profile.NewStandard(), profile.NewImproved(), profile.NewEnhanced()} {
		a := newAnalyzer(t, p)
		result, err := a.Analyze(context.Background(), mernResume, mernJob)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Score, 65.0, p.Name)
	}
}

func TestScenarioNoOverlap(t *testing.T) {
	t.Parallel()

	for _, p := range profile.Builtin() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, p)
			result, err := a.Analyze(context.Background(), bakerResume, frontendJob)
			require.NoError(t, err)

			assert.Less(t, result.Score, 30.0)
			assert.GreaterOrEqual(t, result.Score, p.Floor)
			assert.Zero(t, result.Breakdown.SkillScore)
			assert.Empty(t, result.Gaps.Matched)
			assert.Empty(t, result.Gaps.Partial)
		})
	}
}

func TestScenarioNoOverlapReportsEveryJobSkillMissing(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, profile.NewStandard())
	result, err := a.Analyze(context.Background(), bakerResume, frontendJob)
	require.NoError(t, err)

	missing := map[string]int{}
	for _, c := range result.Gaps.MissingCritical {
		missing[c.Name]++
	}
	for _, c := range result.Gaps.MissingOptional {
		missing[c.Name]++
	}

	for _, name := range []string{"react", "javascript", "typescript", "state_management", "testing", "development_tools", "api_communication"} {
		assert.Equal(t, 1, missing[name], "category %s must be missing exactly once", name)
	}

	critical := make([]string, 0, len(result.Gaps.MissingCritical))
	for _, c := range result.Gaps.MissingCritical {
		critical = append(critical, c.Name)
	}
	assert.ElementsMatch(t, []string{"react", "javascript"}, critical)

	assert.Contains(t, result.Feedback, "Critical missing skills: react, javascript")
	assert.NotContains(t, result.Feedback, "Matched skills")
	assert.Equal(t, scoring.LevelNeedsImprovement, result.MatchLevel)
}

func TestIdentityReachesTopBand(t *testing.T) {
	t.Parallel()

	for _, p := range profile.Builtin() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, p)
			result, err := a.Analyze(context.Background(), mernJob, mernJob)
			require.NoError(t, err)

			assert.InDelta(t, 1, result.Breakdown.WordOverlapRatio, 1e-9)
			assert.Equal(t, p.Bands[0].Level, result.MatchLevel)
		})
	}

	a := newAnalyzer(t, profile.NewStandard())
	result, err := a.Analyze(context.Background(), mernJob, mernJob)
	require.NoError(t, err)
	assert.InDelta(t, 1, result.Breakdown.SkillScore, 1e-9)
	assert.Equal(t, 98.0, result.Score)
}

func TestAddingJobSkillsNeverLowersScore(t *testing.T) {
	t.Parallel()

	job := "Looking for a full stack engineer: React, Node.js, MongoDB, Express, TypeScript, Docker, GraphQL, Jest"
	base := strings.Repeat("Managed warehouse inventory, coordinated delivery schedules, trained seasonal staff, "+
		"negotiated supplier contracts, audited quarterly budgets, organized charity events. ", 3)
	additions := []string{"React", "Node.js", "MongoDB", "Express", "TypeScript", "Docker", "GraphQL", "Jest"}

	for _, p := range profile.Builtin() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, p)
			resume := base
			prev, err := a.Analyze(context.Background(), resume, job)
			require.NoError(t, err)

			for _, term := range additions {
				resume += " " + term
				cur, err := a.Analyze(context.Background(), resume, job)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, cur.Score, prev.Score, "adding %q lowered the score", term)
				prev = cur
			}
		})
	}
}

func TestRepeatingJobSkillsInMatchingResumeNeverLowersScore(t *testing.T) {
	t.Parallel()

	jobs := []string{
		mernJob,
		"Full stack engineer: React, Node.js, MongoDB, Express, TypeScript and Docker, 4+ years experience",
	}
	resumes := []string{
		"React React Node.js MongoDB engineer with 4 years experience",
		mernResume,
		"Senior engineer with 7 years experience in React, TypeScript and Docker",
		"React Node.js MongoDB Express TypeScript Docker",
	}
	additions := []string{"React", "Node.js", "MongoDB", "Express", "TypeScript", "Docker"}

	for _, p := range profile.Builtin() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, p)
			for _, job := range jobs {
				for _, resume := range resumes {
					prev, err := a.Analyze(context.Background(), resume, job)
					require.NoError(t, err)

					for round := range 4 {
						for _, term := range additions {
							resume += " " + term
							cur, err := a.Analyze(context.Background(), resume, job)
							require.NoError(t, err)
							require.GreaterOrEqual(t, cur.Score, prev.Score, "round %d: adding %q to %q", round, term, resume)
							prev = cur
						}
					}
				}
			}
		})
	}
}

func TestScenarioNoOverlapWithOrdinaryProse(t *testing.T) {
	t.Parallel()

	job := "We are looking for a React developer with 3 years experience in the JavaScript and TypeScript ecosystem, Redux and GraphQL."
	resumes := []string{
		"Professional chef. 10 years experience cooking, menu planning and staff training.",
		"I am a chef with 10 years experience in the kitchen and a passion for the food and the team.",
	}

	for _, p := range profile.Builtin() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, p)
			for _, resume := range resumes {
				result, err := a.Analyze(context.Background(), resume, job)
				require.NoError(t, err)

				assert.Less(t, result.Score, 30.0, resume)
				assert.Zero(t, result.Breakdown.SkillScore, resume)
				assert.Zero(t, result.Breakdown.Relevance, resume)
				assert.Equal(t, 10, result.Breakdown.CandidateYears, resume)
				assert.Empty(t, result.Gaps.Matched, resume)
				assert.Empty(t, result.Gaps.Partial, resume)
				assert.Equal(t, scoring.LevelNeedsImprovement, result.MatchLevel, resume)
			}
		})
	}
}

func TestScoreStaysWithinFloorAndCeiling(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{mernResume, mernJob},
		{bakerResume, frontendJob},
		{"x", "y"},
		{strings.Repeat("React Node.js MongoDB Express ", 50), "React"},
		{"Bachelor degree, AWS Certified, certification, master, phd, 20 years experience", "Bachelor, master, phd, AWS Certified, 2 years experience"},
	}

	for _, p := range profile.Builtin() {
		a := newAnalyzer(t, p)
		for _, pair := range pairs {
			result, err := a.Analyze(context.Background(), pair[0], pair[1])
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.Score, p.Floor, "%s: %q", p.Name, pair[0])
			assert.LessOrEqual(t, result.Score, 98.0, "%s: %q", p.Name, pair[0])
		}
	}
}

func TestFuzzyMisspellingEarnsPartialCredit(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, profile.NewStandard())
	job := "DevOps engineer with Kubernetes"

	misspelled, err := a.Analyze(context.Background(), "Ran production workloads on Kubernates", job)
	require.NoError(t, err)
	unrelated, err := a.Analyze(context.Background(), "Ran production workloads on Terraform", job)
	require.NoError(t, err)

	require.Len(t, misspelled.Gaps.Partial, 1)
	partial := misspelled.Gaps.Partial[0]
	assert.Equal(t, "containers", partial.Category)
	assert.Equal(t, "kubernates", partial.ResumeToken)
	assert.InDelta(t, 0.5*1.4, partial.Credit, 1e-9)

	for _, m := range misspelled.Gaps.Matched {
		assert.NotEqual(t, "containers", m.Category)
	}
	for _, c := range append(misspelled.Gaps.MissingCritical, misspelled.Gaps.MissingOptional...) {
		assert.NotEqual(t, "containers", c.Name)
	}

	assert.Greater(t, misspelled.Breakdown.SkillScore, unrelated.Breakdown.SkillScore)
	assert.Greater(t, misspelled.Score, unrelated.Score)
	assert.Contains(t, misspelled.Feedback, `containers (found "kubernates")`)
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()

	for _, p := range profile.Builtin() {
		a := newAnalyzer(t, p)

		for _, pair := range [][2]string{{"", "any job text"}, {"any text", ""}, {"   ", "Go developer"}} {
			result, err := a.Analyze(context.Background(), pair[0], pair[1])
			require.NoError(t, err)
			assert.Equal(t, p.Floor, result.Score)
			assert.True(t, result.Success)
			assert.NotEmpty(t, result.Feedback)
			assert.Equal(t, p.Bands.Level(p.Floor), result.MatchLevel)
			assert.Nil(t, result.Breakdown)
		}

		_, err := a.Analyze(context.Background(), "", " \n ")
		assert.ErrorIs(t, err, ErrNoUsableInput)
	}
}

func TestAnalyzeHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer(t, profile.NewStandard()).Analyze(ctx, mernResume, mernJob)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeLogsBreakdown(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	a, err := New(profile.NewEnhanced(), zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, profile.Enhanced, a.Profile())

	_, err = a.Analyze(context.Background(), mernResume, mernJob)
	require.NoError(t, err)

	entries := observed.FilterMessage("analysis finished").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, profile.Enhanced, ctx["profile"])
	assert.Contains(t, ctx, "base")
	assert.Contains(t, ctx, "skill")

	_, err = a.Analyze(context.Background(), "", mernJob)
	require.NoError(t, err)
	assert.Equal(t, 1, observed.FilterMessage("document has no usable text, returning floor score").Len())
}

func TestConcurrentAnalyze(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, profile.NewStandard())
	want, err := a.Analyze(context.Background(), mernResume, mernJob)
	require.NoError(t, err)

	results := make(chan float64, 16)
	for range 16 {
		go func() {
			r, err := a.Analyze(context.Background(), mernResume, mernJob)
			if err != nil {
				results <- -1
				return
			}
			results <- r.Score
		}()
	}
	for range 16 {
		assert.Equal(t, want.Score, <-results)
	}
}
