package textnorm

import (
	"regexp/syntax"
	"strings"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "empty input",
			input:  "",
			expect: "",
		},
		{
			name:   "whitespace only",
			input:  " \t\n  ",
			expect: "",
		},
		{
			name:   "lowercases and collapses whitespace",
			input:  "Senior   Go\n\tDeveloper",
			expect: "senior go developer",
		},
		{
			name:   "strips punctuation outside the allowed set",
			input:  "Skills: (Python), [Docker]; 'SQL'!",
			expect: "skills python docker sql",
		},
		{
			name:   "keeps symbolic technology tokens",
			input:  "C++, C#, .NET and F#",
			expect: "c++ c# .net and f#",
		},
		{
			name:   "trims trailing punctuation from tokens",
			input:  "React. Docker- ci/cd/",
			expect: "react docker cicd",
		},
		{
			name:   "drops long stop words and keeps short ones",
			input:  "Work with the team from day one",
			expect: "work the team day one",
		},
		{
			name:   "canonicalizes node variants",
			input:  "Node.js, NodeJS and Node JS",
			expect: "nodejs nodejs and nodejs",
		},
		{
			name:   "canonicalizes react variants",
			input:  "React.js ReactJS react js",
			expect: "react react react",
		},
		{
			name:   "canonicalizes javascript abbreviation",
			input:  "JS, Java Script and js",
			expect: "javascript javascript and javascript",
		},
		{
			name:   "canonicalizes misc variants",
			input:  "HTML5 CSS3 REST ful APIs CI CD Postgres Golang Mongo DB Type Script Express.js Next.js Vue.js",
			expect: "html css restful api cicd postgresql go mongodb typescript express nextjs vue",
		},
		{
			name:   "does not rewrite inside longer tokens",
			input:  "jsx postgresql apish",
			expect: "jsx postgresql apish",
		},
		{
			name:   "keeps experience statements intact",
			input:  "Over 5 years of experience, more than 3 years in Go.",
			expect: "over 5 years of experience more than 3 years in go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"5 years experience with React, Node.js, MongoDB, Express, REST APIs",
		"Looking for MERN stack developer, 3+ years experience, React, Node.js, MongoDB required",
		"with. from- the/ js. node. js",
		"java script js js js",
		"...---/// c++. .net.",
		"Kubernetes, K8s, Helm; CI/CD with Jenkins & GitHub Actions",
		"Über-engineer für Datenbanken — PostgreSQL",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("normalize is not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeAdjacentMatches(t *testing.T) {
	t.Parallel()

	if got := Normalize("js js js"); got != "javascript javascript javascript" {
		t.Fatalf("expected every adjacent token to be rewritten, got %q", got)
	}
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New([]Rule{{Pattern: "(", Replacement: "x"}}, nil); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestCustomNormalizer(t *testing.T) {
	t.Parallel()

	n := MustNew([]Rule{{Pattern: "k8s", Replacement: "kubernetes"}}, []string{"using"})

	if got := n.Normalize("Using K8s daily"); got != "kubernetes daily" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tokens := Tokens(Normalize("Go, Rust  and C++"))
	expect := []string{"go", "rust", "and", "c++"}
	if len(tokens) != len(expect) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(expect), len(tokens), tokens)
	}
	for i := range expect {
		if tokens[i] != expect[i] {
			t.Fatalf("token %d: expected %q, got %q", i, expect[i], tokens[i])
		}
	}

	if got := Tokens(""); len(got) != 0 {
		t.Fatalf("expected no tokens for empty text, got %v", got)
	}
}

func TestPatternRulesFallBackToRegexp(t *testing.T) {
	t.Parallel()

	n := MustNew([]Rule{
		{Pattern: `v\d+`, Replacement: "version"},
		{Pattern: `k8s|kube`, Replacement: "kubernetes"},
	}, nil)

	if got := n.Normalize("v2 v10 vx kube k8s"); got != "version version vx kubernetes kubernetes" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestEarlierRuleWinsOnSameWindow(t *testing.T) {
	t.Parallel()

	n := MustNew([]Rule{
		{Pattern: `go+`, Replacement: "first"},
		{Pattern: `go`, Replacement: "second"},
		{Pattern: `rust`, Replacement: "third"},
		{Pattern: `rust|zig`, Replacement: "fourth"},
	}, nil)

	if got := n.Normalize("go rust zig"); got != "first third fourth" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestWidestWindowWins(t *testing.T) {
	t.Parallel()

	n := MustNew([]Rule{
		{Pattern: `js`, Replacement: "javascript"},
		{Pattern: `vanilla js|plain old js`, Replacement: "vanillajs"},
	}, nil)

	if got := n.Normalize("plain old js, vanilla js and js"); got != "vanillajs vanillajs and javascript" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		finite  bool
		count   int
	}{
		{pattern: `node\.js|nodejs|node js`, finite: true, count: 3},
		{pattern: `apis?`, finite: true, count: 2},
		{pattern: `ci[/ ]cd`, finite: true, count: 2},
		{pattern: `v\d+`, finite: false},
		{pattern: `(?i)go`, finite: false},
		{pattern: `.+`, finite: false},
	}

	for _, tt := range tests {
		parsed, err := syntax.Parse(tt.pattern, syntax.Perl)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.pattern, err)
		}
		variants, finite := expand(parsed.Simplify())
		if finite != tt.finite {
			t.Fatalf("%q: expected finite=%v, got %v (%v)", tt.pattern, tt.finite, finite, variants)
		}
		if finite && len(variants) != tt.count {
			t.Fatalf("%q: expected %d variants, got %v", tt.pattern, tt.count, variants)
		}
	}
}

func TestNormalizeLargeDocument(t *testing.T) {
	t.Parallel()

	line := "Built REST APIs with Node.js and React.js, deployed via CI/CD to Postgres and Mongo DB; js js js. "
	raw := strings.Repeat(line, 1<<20/len(line))

	start := time.Now()
	got := Normalize(raw)
	elapsed := time.Since(start)

	want := "built rest api nodejs and react deployed via cicd to postgresql and mongodb javascript javascript javascript"
	if !strings.HasPrefix(got, want+" built") {
		t.Fatalf("unexpected normalization prefix: %q", got[:min(len(got), 200)])
	}
	if elapsed > 5*time.Second {
		t.Fatalf("normalizing 1 MiB took %s", elapsed)
	}
}

func BenchmarkNormalize(b *testing.B) {
	raw := strings.Repeat("Senior Node.js engineer, 5 years experience with React, MongoDB and CI/CD. ", 2000)
	b.SetBytes(int64(len(raw)))
	for b.Loop() {
		Normalize(raw)
	}
}
