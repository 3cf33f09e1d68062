package scoring

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/resume-matcher/internal/skills"
	"github.com/spigell/resume-matcher/internal/textnorm"
)

// maxStatedYears discards year counts that cannot be experience statements ("since 1999 years").
const maxStatedYears = 50

var (
	acronymPattern = regexp.MustCompile(`\b[A-Z]{2,10}\b`)

	experiencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)[+\-\s]*years?\s+(?:of\s+)?experience`),
		regexp.MustCompile(`(\d+)[+\-\s]*yrs?\s+(?:of\s+)?experience`),
		regexp.MustCompile(`experience[:\s]+(\d+)[+\-\s]*years?`),
		regexp.MustCompile(`(\d+)[+\-\s]*years?\s+in`),
		regexp.MustCompile(`over\s+(\d+)\s+years?`),
		regexp.MustCompile(`more\s+than\s+(\d+)\s+years?`),
	}
)

// TechnologyTerms are recognized as technical terms even when no skill category names them.
var TechnologyTerms = []string{
	"javascript", "typescript", "python", "java", "react", "react native", "nodejs",
	"docker", "kubernetes", "jenkins", "git", "github", "gitlab", "mongodb", "sql",
	"aws", "azure", "gcp", "c++", "c#", ".net", "html", "css",
	"machine learning", "data science", "artificial intelligence", "devops", "agile", "scrum",
}

// EducationTerms earn EducationCredit each when both documents mention them.
var EducationTerms = []string{
	"bachelor", "master", "phd", "degree",
	"computer science", "software engineering", "information technology",
}

// CertificationTerms earn CertificationCredit each when both documents mention them.
var CertificationTerms = []string{
	"certified", "certification",
	"aws certified", "google certified", "microsoft certified", "mongodb certified",
}

const (
	EducationCredit     = 0.10
	CertificationCredit = 0.15
)

type document struct {
	raw        string
	normalized string
	tokens     []string
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// overlap returns |r ∩ j| / |j| and the intersection size. An empty job set yields 0.
func overlap(resume, job map[string]struct{}) (float64, int) {
	if len(job) == 0 {
		return 0, 0
	}
	shared := 0
	for key := range job {
		if _, ok := resume[key]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(job)), shared
}

// ngrams counts the n-token windows of tokens.
func ngrams(tokens []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], " ")]++
	}
	return grams
}

func keys(counts map[string]int) map[string]struct{} {
	set := make(map[string]struct{}, len(counts))
	for key := range counts {
		set[key] = struct{}{}
	}
	return set
}

// ngramOverlap weights bigram overlap twice as much as trigram overlap.
func ngramOverlap(resume, job []string) float64 {
	bigram, _ := overlap(keys(ngrams(resume, 2)), keys(ngrams(job, 2)))
	trigram, _ := overlap(keys(ngrams(resume, 3)), keys(ngrams(job, 3)))
	return (2*bigram + trigram) / 3
}

// termVector builds a sublinear term-frequency vector (1 + ln tf) over 1..3-grams.
func termVector(tokens []string) map[string]float64 {
	vector := make(map[string]float64)
	for n := 1; n <= 3; n++ {
		for gram, tf := range ngrams(tokens, n) {
			vector[gram] = 1 + math.Log(float64(tf))
		}
	}
	return vector
}

// coveredVector keeps the job weights of the grams the resume also contains.
// Its cosine with the job vector never drops when the resume gains text.
func coveredVector(resumeTokens []string, job map[string]float64) map[string]float64 {
	present := make(map[string]struct{})
	for n := 1; n <= 3; n++ {
		for gram := range ngrams(resumeTokens, n) {
			present[gram] = struct{}{}
		}
	}

	covered := make(map[string]float64)
	for gram, weight := range job {
		if _, ok := present[gram]; ok {
			covered[gram] = weight
		}
	}
	return covered
}

// Cosine returns the cosine similarity of two sparse vectors.
// A vector without any weight yields ErrVectorSimilarity.
func Cosine(a, b map[string]float64) (float64, error) {
	vocabulary := make([]string, 0, len(a)+len(b))
	for term := range a {
		vocabulary = append(vocabulary, term)
	}
	for term := range b {
		if _, ok := a[term]; !ok {
			vocabulary = append(vocabulary, term)
		}
	}
	sort.Strings(vocabulary)

	va := make([]float64, len(vocabulary))
	vb := make([]float64, len(vocabulary))
	for i, term := range vocabulary {
		va[i] = a[term]
		vb[i] = b[term]
	}

	na, nb := floats.Norm(va, 2), floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0, ErrVectorSimilarity
	}
	return floats.Dot(va, vb) / (na * nb), nil
}

// statedYears returns the largest year count found by the experience patterns, or 0.
func statedYears(normalized string) int {
	years := 0
	for _, pattern := range experiencePatterns {
		for _, match := range pattern.FindAllStringSubmatch(normalized, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil || n > maxStatedYears {
				continue
			}
			years = max(years, n)
		}
	}
	return years
}

// experienceRatio is neutral when the job states no requirement.
func experienceRatio(candidate, required int) float64 {
	if required <= 0 {
		return 1
	}
	return math.Min(float64(candidate)/float64(required), 1.5)
}

func educationBonus(resume, job string, limit float64) float64 {
	bonus := 0.0
	for _, term := range EducationTerms {
		if skills.CountPhrase(job, term) > 0 && skills.CountPhrase(resume, term) > 0 {
			bonus += EducationCredit
		}
	}
	for _, term := range CertificationTerms {
		if skills.CountPhrase(job, term) > 0 && skills.CountPhrase(resume, term) > 0 {
			bonus += CertificationCredit
		}
	}
	return math.Min(bonus, limit)
}

// technicalTerms collects acronyms from the raw text, known technology names and
// every taxonomy synonym present in the normalized text.
func technicalTerms(doc document, matcher *skills.Matcher, norm *textnorm.Normalizer) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, acronym := range acronymPattern.FindAllString(doc.raw, -1) {
		if term := norm.Normalize(acronym); term != "" {
			terms[term] = struct{}{}
		}
	}
	for _, term := range TechnologyTerms {
		if skills.CountPhrase(doc.normalized, term) > 0 {
			terms[term] = struct{}{}
		}
	}
	for _, phrase := range matcher.Phrases(doc.normalized) {
		terms[phrase] = struct{}{}
	}
	return terms
}

// technicalTermRatio is the share of job terms the resume covers, either as one of
// its own terms or as a phrase of its text.
func technicalTermRatio(resume document, resumeTerms, jobTerms map[string]struct{}) float64 {
	if len(jobTerms) == 0 {
		return 0
	}
	covered := 0
	for term := range jobTerms {
		if _, ok := resumeTerms[term]; ok {
			covered++
			continue
		}
		if skills.CountPhrase(resume.normalized, term) > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(jobTerms))
}
