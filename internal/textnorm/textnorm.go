// Package textnorm turns raw document text into the canonical lowercase token
// stream used by every matching and scoring step.
package textnorm

import (
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode"
)

// maxRounds bounds how many times the full pass is repeated while looking for a fixed point.
const maxRounds = 3

// maxVariants bounds how many strings a rule pattern may expand to before it is
// matched as a regular expression instead of looked up.
const maxVariants = 256

// Rule rewrites every whole-token occurrence of Pattern to Replacement.
type Rule struct {
	Pattern     string
	Replacement string
}

// DefaultRules maps spelling and spacing variants of technology names to one canonical token.
// At every position the longest token window a rule matches is rewritten; among rules
// matching the same window the first one wins.
var DefaultRules = []Rule{
	{Pattern: `node\.js|nodejs|node js`, Replacement: "nodejs"},
	{Pattern: `react\.js|reactjs|react js`, Replacement: "react"},
	{Pattern: `express\.js|expressjs`, Replacement: "express"},
	{Pattern: `next\.js`, Replacement: "nextjs"},
	{Pattern: `vue\.js|vuejs`, Replacement: "vue"},
	{Pattern: `mongo db`, Replacement: "mongodb"},
	{Pattern: `type script`, Replacement: "typescript"},
	{Pattern: `java script|js`, Replacement: "javascript"},
	{Pattern: `html5`, Replacement: "html"},
	{Pattern: `css3`, Replacement: "css"},
	{Pattern: `rest ful`, Replacement: "restful"},
	{Pattern: `apis`, Replacement: "api"},
	{Pattern: `ci/cd|ci cd`, Replacement: "cicd"},
	{Pattern: `postgres`, Replacement: "postgresql"},
	{Pattern: `golang`, Replacement: "go"},
}

// DefaultStopWords are dropped from normalized text unless they are three characters or shorter.
// "over", "more" and "than" stay because experience statements depend on them.
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"from", "into", "onto", "upon", "about", "within", "without", "through", "during",
	"this", "that", "these", "those",
	"is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "does", "did", "doing",
	"will", "would", "shall", "should", "could", "might", "must",
}

type literalRule struct {
	index       int
	replacement string
}

type patternRule struct {
	index       int
	re          *regexp.Regexp
	replacement string
}

// Normalizer is safe for concurrent use once built.
type Normalizer struct {
	literals  map[string]literalRule
	patterns  []patternRule
	rules     int
	window    int
	stopWords map[string]struct{}
}

var defaultNormalizer = MustNew(DefaultRules, DefaultStopWords)

// Default returns the process-wide normalizer built from DefaultRules and DefaultStopWords.
func Default() *Normalizer {
	return defaultNormalizer
}

// New compiles the canonicalization rules. Patterns only match whole tokens.
// A pattern that expands to a finite set of strings becomes a table lookup;
// any other pattern is matched against windows of up to two tokens, or as many
// as the longest literal variant spans.
func New(rules []Rule, stopWords []string) (*Normalizer, error) {
	n := &Normalizer{
		literals: make(map[string]literalRule),
		rules:    len(rules),
		window:   2,
	}

	for i, rule := range rules {
		re, err := regexp.Compile(`^(?:` + rule.Pattern + `)$`)
		if err != nil {
			return nil, err
		}

		parsed, err := syntax.Parse(rule.Pattern, syntax.Perl)
		if err != nil {
			return nil, err
		}
		variants, finite := expand(parsed.Simplify())
		if !finite {
			n.patterns = append(n.patterns, patternRule{index: i, re: re, replacement: rule.Replacement})
			continue
		}

		for _, variant := range variants {
			words := strings.Fields(variant)
			if len(words) == 0 || strings.Join(words, " ") != variant {
				continue
			}
			if _, ok := n.literals[variant]; !ok {
				n.literals[variant] = literalRule{index: i, replacement: rule.Replacement}
			}
			n.window = max(n.window, len(words))
		}
	}

	n.stopWords = make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		n.stopWords[strings.ToLower(strings.TrimSpace(word))] = struct{}{}
	}

	return n, nil
}

// MustNew is like New but panics on an invalid rule pattern.
func MustNew(rules []Rule, stopWords []string) *Normalizer {
	n, err := New(rules, stopWords)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize returns the canonical form of raw. The result is stable:
// normalizing it again yields the same string.
func (n *Normalizer) Normalize(raw string) string {
	text := raw
	for range maxRounds {
		next := n.pass(text)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

func (n *Normalizer) pass(raw string) string {
	text := strings.Map(keepRune, strings.ToLower(raw))

	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, token := range tokens {
		token = strings.TrimRight(token, ".-/")
		if token == "" {
			continue
		}
		if _, stop := n.stopWords[token]; stop && len(token) > 3 {
			continue
		}
		kept = append(kept, token)
	}

	return strings.Join(n.canonicalize(kept), " ")
}

// canonicalize rewrites the tokens in one left-to-right scan, trying the widest window first.
func (n *Normalizer) canonicalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		size := min(n.window, len(tokens)-i)
		for ; size > 0; size-- {
			replacement, ok := n.rewrite(strings.Join(tokens[i:i+size], " "))
			if !ok {
				continue
			}
			if replacement != "" {
				out = append(out, replacement)
			}
			break
		}
		if size == 0 {
			out = append(out, tokens[i])
			size = 1
		}
		i += size
	}
	return out
}

// rewrite returns the replacement of the first rule matching window.
func (n *Normalizer) rewrite(window string) (string, bool) {
	literal, ok := n.literals[window]
	if !ok {
		literal.index = n.rules
	}
	for _, p := range n.patterns {
		if p.index >= literal.index {
			break
		}
		if p.re.MatchString(window) {
			return p.replacement, true
		}
	}
	return literal.replacement, ok
}

// expand lists every string re matches, or reports false when the set is
// unbounded or larger than maxVariants.
func expand(re *syntax.Regexp) ([]string, bool) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return []string{""}, true
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return nil, false
		}
		return []string{string(re.Rune)}, true
	case syntax.OpCharClass:
		var out []string
		for i := 0; i+1 < len(re.Rune); i += 2 {
			if int(re.Rune[i+1]-re.Rune[i])+len(out) >= maxVariants {
				return nil, false
			}
			for r := re.Rune[i]; r <= re.Rune[i+1]; r++ {
				out = append(out, string(r))
			}
		}
		return out, true
	case syntax.OpCapture:
		return expand(re.Sub[0])
	case syntax.OpQuest:
		sub, ok := expand(re.Sub[0])
		if !ok {
			return nil, false
		}
		return append([]string{""}, sub...), true
	case syntax.OpAlternate:
		var out []string
		for _, sub := range re.Sub {
			variants, ok := expand(sub)
			if !ok || len(out)+len(variants) > maxVariants {
				return nil, false
			}
			out = append(out, variants...)
		}
		return out, true
	case syntax.OpConcat:
		out := []string{""}
		for _, sub := range re.Sub {
			variants, ok := expand(sub)
			if !ok || len(out)*len(variants) > maxVariants {
				return nil, false
			}
			next := make([]string, 0, len(out)*len(variants))
			for _, prefix := range out {
				for _, suffix := range variants {
					next = append(next, prefix+suffix)
				}
			}
			out = next
		}
		return out, true
	default:
		return nil, false
	}
}

func keepRune(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		return r
	case r == '.', r == '+', r == '#', r == '-', r == '/':
		return r
	default:
		return ' '
	}
}

// Normalize normalizes raw with the default normalizer.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Tokens splits normalized text into tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
