// Package skills matches weighted skill categories against normalized text and
// reports which job skills a resume covers, nearly covers or misses.
package skills

import (
	"sort"
	"strings"

	"github.com/spigell/resume-matcher/internal/textnorm"
)

// Category is one canonical skill with the phrases that express it.
type Category struct {
	Name     string   `mapstructure:"name" json:"name" validate:"required"`
	Synonyms []string `mapstructure:"synonyms" json:"synonyms" validate:"required,min=1,dive,required"`
	Weight   float64  `mapstructure:"weight" json:"weight" validate:"gt=0"`
	Group    string   `mapstructure:"group" json:"group"`
}

// Match reports how often a category occurs in one document.
type Match struct {
	Category    string  `json:"category"`
	Occurrences int     `json:"occurrences"`
	Weight      float64 `json:"weight"`
	Group       string  `json:"group"`
}

// FuzzyMatch records partial credit given to a job category the resume only nearly spells.
type FuzzyMatch struct {
	Category    string  `json:"category"`
	Synonym     string  `json:"synonym"`
	ResumeToken string  `json:"resumeToken"`
	Ratio       float64 `json:"ratio"`
	Credit      float64 `json:"credit"`
}

// GapReport splits the job's categories by how the resume covers them.
// A category is in exactly one list.
type GapReport struct {
	Matched         []Match      `json:"matched"`
	Partial         []FuzzyMatch `json:"partial"`
	MissingCritical []Category   `json:"missingCritical"`
	MissingOptional []Category   `json:"missingOptional"`
}

// Options tunes the matcher.
type Options struct {
	// CriticalWeight is the minimum weight of a category reported as a critical gap.
	CriticalWeight float64
	// FuzzyThreshold is the edit ratio a resume token must exceed to earn partial credit.
	FuzzyThreshold float64
	// FuzzyCredit is the share of the category weight awarded for a fuzzy match.
	FuzzyCredit float64
}

type compiled struct {
	Category
	phrases [][]string
}

// Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	categories []compiled
	opts       Options
}

// NewMatcher normalizes every synonym with norm and drops duplicates inside a category,
// so spelling variants that share a canonical form are counted once.
func NewMatcher(taxonomy []Category, norm *textnorm.Normalizer, opts Options) *Matcher {
	if norm == nil {
		norm = textnorm.Default()
	}

	categories := make([]compiled, 0, len(taxonomy))
	for _, category := range taxonomy {
		seen := make(map[string]struct{}, len(category.Synonyms))
		c := compiled{Category: category}
		for _, synonym := range category.Synonyms {
			phrase := norm.Normalize(synonym)
			if phrase == "" {
				continue
			}
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			c.phrases = append(c.phrases, strings.Fields(phrase))
		}
		categories = append(categories, c)
	}

	return &Matcher{categories: categories, opts: opts}
}

// Categories returns the taxonomy in declaration order.
func (m *Matcher) Categories() []Category {
	out := make([]Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c.Category)
	}
	return out
}

// Phrases returns the normalized synonyms of every category found in text.
func (m *Matcher) Phrases(normalized string) []string {
	tokens := textnorm.Tokens(normalized)
	var found []string
	for _, c := range m.categories {
		for _, phrase := range c.phrases {
			if countPhrase(tokens, phrase) > 0 {
				found = append(found, strings.Join(phrase, " "))
			}
		}
	}
	return found
}

// Match counts whole-token occurrences of every category in normalized text.
// Categories that do not occur are absent from the result.
func (m *Matcher) Match(normalized string) map[string]Match {
	tokens := textnorm.Tokens(normalized)
	matches := make(map[string]Match)
	for _, c := range m.categories {
		total := 0
		for _, phrase := range c.phrases {
			total += countPhrase(tokens, phrase)
		}
		if total == 0 {
			continue
		}
		matches[c.Name] = Match{
			Category:    c.Name,
			Occurrences: total,
			Weight:      c.Weight,
			Group:       c.Group,
		}
	}
	return matches
}

// Fuzzy awards partial credit to job categories that the resume lacks verbatim.
// For every synonym present in the job text the resume tokens longer than three
// characters are compared by edit ratio; the best token above the threshold wins,
// once per category.
func (m *Matcher) Fuzzy(resume, job string, resumeMatches, jobMatches map[string]Match) []FuzzyMatch {
	if m.opts.FuzzyCredit <= 0 {
		return nil
	}

	candidates := fuzzyTokens(textnorm.Tokens(resume))
	if len(candidates) == 0 {
		return nil
	}
	jobTokens := textnorm.Tokens(job)

	var partial []FuzzyMatch
	for _, c := range m.categories {
		if _, ok := jobMatches[c.Name]; !ok {
			continue
		}
		if _, ok := resumeMatches[c.Name]; ok {
			continue
		}

		var best *FuzzyMatch
		for _, phrase := range c.phrases {
			if countPhrase(jobTokens, phrase) == 0 {
				continue
			}
			synonym := strings.Join(phrase, " ")
			for _, token := range candidates {
				ratio := EditRatio(synonym, token)
				if ratio <= m.opts.FuzzyThreshold {
					continue
				}
				if best == nil || ratio > best.Ratio {
					best = &FuzzyMatch{
						Category:    c.Name,
						Synonym:     synonym,
						ResumeToken: token,
						Ratio:       ratio,
						Credit:      m.opts.FuzzyCredit * c.Weight,
					}
				}
			}
		}
		if best != nil {
			partial = append(partial, *best)
		}
	}
	return partial
}

// Gaps builds the report for the categories named by the job.
func (m *Matcher) Gaps(resumeMatches, jobMatches map[string]Match, partial []FuzzyMatch) GapReport {
	fuzzy := make(map[string]struct{}, len(partial))
	for _, p := range partial {
		fuzzy[p.Category] = struct{}{}
	}

	report := GapReport{Partial: append([]FuzzyMatch(nil), partial...)}
	for _, c := range m.categories {
		if _, ok := jobMatches[c.Name]; !ok {
			continue
		}
		if match, ok := resumeMatches[c.Name]; ok {
			report.Matched = append(report.Matched, match)
			continue
		}
		if _, ok := fuzzy[c.Name]; ok {
			continue
		}
		if c.Weight >= m.opts.CriticalWeight {
			report.MissingCritical = append(report.MissingCritical, c.Category)
		} else {
			report.MissingOptional = append(report.MissingOptional, c.Category)
		}
	}

	sort.SliceStable(report.Matched, func(i, j int) bool {
		a, b := report.Matched[i], report.Matched[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return a.Category < b.Category
	})
	sortCategories(report.MissingCritical)
	sortCategories(report.MissingOptional)

	return report
}

func sortCategories(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		a, b := categories[i], categories[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return a.Name < b.Name
	})
}

// fuzzyTokens returns the distinct tokens long enough to be compared, in first-seen order.
func fuzzyTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) <= 3 {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// CountPhrase counts whole-token occurrences of the normalized phrase in normalized text.
func CountPhrase(normalized, phrase string) int {
	return countPhrase(textnorm.Tokens(normalized), strings.Fields(phrase))
}

func countPhrase(tokens, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return 0
	}

	count := 0
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		if tokens[i] != phrase[0] {
			continue
		}
		matched := true
		for j := 1; j < len(phrase); j++ {
			if tokens[i+j] != phrase[j] {
				matched = false
				break
			}
		}
		if matched {
			count++
			i += len(phrase) - 1
		}
	}
	return count
}
