package profile

import (
	"github.com/spigell/resume-matcher/internal/feedback"
	"github.com/spigell/resume-matcher/internal/scoring"
	"github.com/spigell/resume-matcher/internal/skills"
)

// Names of the built-in profiles.
const (
	Standard = "standard"
	Improved = "improved"
	Enhanced = "enhanced"
	Minimal  = "minimal"
)

// DefaultName is the profile used when none is requested.
const DefaultName = Standard

// The constants in this file are hand-tuned heuristics. They are meant to be
// replaced through profile files, not treated as calibrated values.

// GenerousCurve maps strong raw combinations (base >= 0.7) into 80..98 and weak ones into 10..25.
func GenerousCurve() scoring.Curve {
	return scoring.Curve{
		{Min: 0, Offset: 10, Slope: 100},
		{Min: 0.15, Offset: 25, Slope: 133.33},
		{Min: 0.30, Offset: 45, Slope: 100},
		{Min: 0.50, Offset: 65, Slope: 75},
		{Min: 0.70, Offset: 80, Slope: 60},
	}
}

// SteepCurve needs base >= 0.8 for the top band and starts at 15.
func SteepCurve() scoring.Curve {
	return scoring.Curve{
		{Min: 0, Offset: 15, Slope: 75},
		{Min: 0.2, Offset: 30, Slope: 100},
		{Min: 0.4, Offset: 50, Slope: 100},
		{Min: 0.6, Offset: 70, Slope: 75},
		{Min: 0.8, Offset: 85, Slope: 65},
	}
}

// DefaultRelevance halves the plain text overlap of a resume that shares no skill or
// technical term with a technical job and drops its experience, education and length credit.
func DefaultRelevance() scoring.RelevanceGate {
	return scoring.RelevanceGate{Enabled: true, TextFloor: 0.5}
}

func threeBands() scoring.Bands {
	return scoring.Bands{
		{Min: 75, Level: scoring.LevelExcellent},
		{Min: 60, Level: scoring.LevelGood},
		{Min: 40, Level: scoring.LevelFair},
	}
}

// TechTaxonomy covers the MERN stack in depth and the common backend, cloud and data skills.
// Categories weighted 2.0 and above are the critical core.
func TechTaxonomy() []skills.Category {
	return []skills.Category{
		{Name: "mongodb", Weight: 2.5, Group: "Database", Synonyms: []string{
			"mongodb", "mongo", "mongoose", "nosql", "bson",
		}},
		{Name: "express", Weight: 2.5, Group: "Backend Framework", Synonyms: []string{
			"express", "expressjs", "express.js", "middleware",
		}},
		{Name: "react", Weight: 2.5, Group: "Frontend Framework", Synonyms: []string{
			"react", "reactjs", "react.js", "jsx", "react hooks", "react router", "react native", "next.js", "gatsby",
		}},
		{Name: "nodejs", Weight: 2.5, Group: "Runtime Environment", Synonyms: []string{
			"nodejs", "node.js", "node", "npm", "yarn", "event loop",
		}},
		{Name: "javascript", Weight: 2.0, Group: "Programming Language", Synonyms: []string{
			"javascript", "js", "ecmascript", "es6", "es2015", "vanilla js",
		}},
		{Name: "typescript", Weight: 1.8, Group: "Programming Language", Synonyms: []string{
			"typescript", "ts",
		}},
		{Name: "python", Weight: 1.8, Group: "Programming Language", Synonyms: []string{
			"python", "django", "flask", "fastapi",
		}},
		{Name: "java", Weight: 1.8, Group: "Programming Language", Synonyms: []string{
			"java", "spring", "spring boot", "hibernate",
		}},
		{Name: "go", Weight: 1.8, Group: "Programming Language", Synonyms: []string{
			"go", "golang", "goroutines",
		}},
		{Name: "html_css", Weight: 1.5, Group: "Frontend Technologies", Synonyms: []string{
			"html", "html5", "css", "css3", "sass", "scss", "tailwind", "bootstrap", "responsive design", "flexbox",
		}},
		{Name: "state_management", Weight: 1.8, Group: "State Management", Synonyms: []string{
			"redux", "redux toolkit", "context api", "zustand", "mobx", "state management",
		}},
		{Name: "development_tools", Weight: 1.3, Group: "Development Tools", Synonyms: []string{
			"webpack", "babel", "vite", "eslint", "prettier", "git", "github", "gitlab", "version control",
		}},
		{Name: "testing", Weight: 1.4, Group: "Testing", Synonyms: []string{
			"jest", "mocha", "chai", "cypress", "selenium", "unit testing", "integration testing", "e2e testing", "tdd", "bdd",
		}},
		{Name: "cloud", Weight: 1.3, Group: "Cloud & Deployment", Synonyms: []string{
			"aws", "azure", "gcp", "google cloud", "heroku", "netlify", "vercel",
		}},
		{Name: "containers", Weight: 1.4, Group: "Containers & Orchestration", Synonyms: []string{
			"docker", "kubernetes", "k8s", "helm", "containerization",
		}},
		{Name: "cicd", Weight: 1.2, Group: "Cloud & Deployment", Synonyms: []string{
			"ci/cd", "jenkins", "github actions", "gitlab ci", "continuous integration", "continuous deployment",
		}},
		{Name: "api_communication", Weight: 1.6, Group: "API & Communication", Synonyms: []string{
			"rest", "restful", "api", "graphql", "apollo", "axios", "websockets", "socket.io", "jwt",
		}},
		{Name: "other_databases", Weight: 1.0, Group: "Additional Databases", Synonyms: []string{
			"sql", "postgresql", "mysql", "sqlite", "redis", "elasticsearch", "firebase",
		}},
		{Name: "data_ml", Weight: 1.2, Group: "Data & Machine Learning", Synonyms: []string{
			"machine learning", "deep learning", "artificial intelligence", "data science", "tensorflow", "pytorch",
		}},
		{Name: "methodologies", Weight: 0.8, Group: "Methodologies", Synonyms: []string{
			"agile", "scrum", "kanban", "jira", "debugging", "problem solving",
		}},
	}
}

// NewStandard returns the default profile: all seven signals on the generous curve.
func NewStandard() *Profile {
	return &Profile{
		Name:           Standard,
		Description:    "Seven weighted signals on the generous curve",
		Taxonomy:       TechTaxonomy(),
		CriticalWeight: 2.0,
		FuzzyThreshold: 0.8,
		FuzzyCredit:    0.5,
		FrequencyCap:   2.0,
		EducationCap:   0.5,
		Weights: scoring.Weights{
			WordOverlap:    0.20,
			Skill:          0.25,
			TechnicalTerms: 0.15,
			NGram:          0.10,
			Vector:         0.15,
			Experience:     0.10,
			Education:      0.05,
		},
		Length:    scoring.LengthBonus{Cap: 0.1, MinJobWords: 100},
		Relevance: DefaultRelevance(),
		Curve:     GenerousCurve(),
		Bonuses: []scoring.BonusRule{
			{Signal: scoring.SignalWordOverlap, Above: 0.4, Points: 5},
			{Signal: scoring.SignalNoMissingCritical, Points: 8},
			{Signal: scoring.SignalSkill, Above: 0.7, Points: 5},
		},
		Floor:    10,
		Ceiling:  98,
		Bands:    threeBands(),
		Feedback: feedback.DefaultOptions,
	}
}

// generalTaxonomy weighs every skill equally, so the skill signal is the share of job skills covered.
func generalTaxonomy() []skills.Category {
	category := func(name, group string, synonyms ...string) skills.Category {
		return skills.Category{Name: name, Weight: 1.0, Group: group, Synonyms: synonyms}
	}
	return []skills.Category{
		category("javascript", "Programming Language", "javascript", "js", "ecmascript", "es6", "es2015", "vanilla js"),
		category("typescript", "Programming Language", "typescript", "ts"),
		category("react", "Frontend", "react", "reactjs", "react.js", "reactnative", "react native"),
		category("nodejs", "Backend", "nodejs", "node.js", "node", "express", "expressjs"),
		category("python", "Programming Language", "python", "py", "django", "flask", "fastapi"),
		category("java", "Programming Language", "java", "spring", "springboot", "hibernate"),
		category("docker", "DevOps", "docker", "containerization", "containers"),
		category("kubernetes", "DevOps", "kubernetes", "k8s", "helm", "kubectl"),
		category("jenkins", "DevOps", "jenkins", "ci/cd", "cicd", "continuous integration", "continuous deployment"),
		category("mongodb", "Database", "mongodb", "mongo", "nosql"),
		category("sql", "Database", "sql", "mysql", "postgresql", "sqlite", "database", "rdbms"),
		category("git", "Tools", "git", "github", "gitlab", "version control", "vcs"),
		category("rest", "Backend", "rest", "restful", "api", "apis", "rest api", "web api"),
		category("security", "Security", "security", "cybersecurity", "infosec", "pentesting", "penetration testing"),
		category("devops", "DevOps", "devops", "sre", "site reliability", "infrastructure"),
		category("agile", "Methodologies", "agile", "scrum", "kanban", "sprint", "jira"),
		category("aws", "Cloud", "aws", "amazon web services", "ec2", "s3", "lambda"),
		category("azure", "Cloud", "azure", "microsoft azure"),
		category("gcp", "Cloud", "gcp", "google cloud", "google cloud platform"),
		category("testing", "Testing", "testing", "unit testing", "integration testing", "qa", "selenium", "jest"),
		category("frontend", "Frontend", "frontend", "front-end", "ui", "user interface", "web development"),
		category("backend", "Backend", "backend", "back-end", "server-side", "api development"),
		category("fullstack", "Fullstack", "fullstack", "full-stack", "full stack"),
		category("machine_learning", "Data", "machine learning", "ml", "ai", "artificial intelligence", "deep learning"),
		category("data_science", "Data", "data science", "data analysis", "analytics", "big data"),
	}
}

// NewImproved returns the five-signal tuning with a length bonus and three flat bonuses.
func NewImproved() *Profile {
	return &Profile{
		Name:           Improved,
		Description:    "Five signals plus length bonus, every skill weighted equally",
		Taxonomy:       generalTaxonomy(),
		CriticalWeight: 1.0,
		FuzzyThreshold: 0.8,
		FuzzyCredit:    0.5,
		FrequencyCap:   1.0,
		EducationCap:   0.5,
		Weights: scoring.Weights{
			WordOverlap:    0.25,
			Skill:          0.25,
			TechnicalTerms: 0.20,
			NGram:          0.15,
			Vector:         0.15,
		},
		Length:    scoring.LengthBonus{Cap: 0.1, MinJobWords: 100},
		Relevance: DefaultRelevance(),
		Curve:     GenerousCurve(),
		Bonuses: []scoring.BonusRule{
			{Signal: scoring.SignalWordOverlap, Above: 0.4, Points: 5},
			{Signal: scoring.SignalSkill, Above: 0.6, Points: 8},
			{Signal: scoring.SignalTechnicalTerms, Above: 0.5, Points: 5},
		},
		Floor:    10,
		Ceiling:  98,
		Bands:    threeBands(),
		Feedback: feedback.DefaultOptions,
	}
}

// NewEnhanced returns the skill-heavy tuning on the steep curve.
func NewEnhanced() *Profile {
	return &Profile{
		Name:           Enhanced,
		Description:    "Skill-heavy weighting with experience and education on the steep curve",
		Taxonomy:       TechTaxonomy(),
		CriticalWeight: 2.0,
		FuzzyThreshold: 0.8,
		FuzzyCredit:    0.5,
		FrequencyCap:   2.0,
		EducationCap:   0.5,
		Weights: scoring.Weights{
			WordOverlap:    0.075,
			Skill:          0.45,
			TechnicalTerms: 0.05,
			NGram:          0.075,
			Vector:         0.10,
			Experience:     0.15,
			Education:      0.10,
		},
		Length:    scoring.LengthBonus{Cap: 0.05, MinJobWords: 200},
		Relevance: DefaultRelevance(),
		Curve:     SteepCurve(),
		Bonuses: []scoring.BonusRule{
			{Signal: scoring.SignalSkill, Above: 0.7, Points: 5},
			{Signal: scoring.SignalNoMissingCritical, Points: 8},
		},
		Floor:   15,
		Ceiling: 98,
		Bands: scoring.Bands{
			{Min: 80, Level: scoring.LevelExcellent},
			{Min: 65, Level: scoring.LevelVeryGood},
			{Min: 50, Level: scoring.LevelGood},
			{Min: 35, Level: scoring.LevelFair},
		},
		Feedback: feedback.DefaultOptions,
	}
}

// keyPhrases are the multi-word terms the keyword profile rewards.
func keyPhrases() []skills.Category {
	phrase := func(name string) skills.Category {
		return skills.Category{Name: name, Weight: 1.0, Group: "Key Phrases", Synonyms: []string{name}}
	}
	return []skills.Category{
		phrase("machine learning"),
		phrase("artificial intelligence"),
		phrase("data science"),
		phrase("software development"),
		phrase("project management"),
		phrase("customer service"),
		phrase("business analysis"),
		phrase("digital marketing"),
		phrase("cloud computing"),
		phrase("database management"),
	}
}

// NewMinimal returns the keyword-overlap profile on a linear curve.
func NewMinimal() *Profile {
	return &Profile{
		Name:           Minimal,
		Description:    "Keyword overlap with a key phrase bonus on a linear curve",
		Taxonomy:       keyPhrases(),
		CriticalWeight: 1.0,
		FuzzyThreshold: 0.8,
		FrequencyCap:   1.0,
		EducationCap:   0.5,
		Weights: scoring.Weights{
			WordOverlap: 0.70,
			Skill:       0.15,
			NGram:       0.15,
		},
		Length:    scoring.LengthBonus{MinJobWords: 100},
		Relevance: DefaultRelevance(),
		Curve:     scoring.Curve{{Min: 0, Offset: 0, Slope: 100}},
		Bonuses: []scoring.BonusRule{
			{Signal: scoring.SignalSkill, Above: 0.5, Points: 10},
			{Signal: scoring.SignalNGram, Above: 0.3, Points: 5},
		},
		Floor:   10,
		Ceiling: 98,
		Bands: scoring.Bands{
			{Min: 80, Level: scoring.LevelExcellent},
			{Min: 60, Level: scoring.LevelGood},
		},
		Feedback: feedback.Options{MaxMatched: 3, MaxCritical: 5, MaxOptional: 3},
	}
}

// Builtin returns fresh copies of every built-in profile, default first.
func Builtin() []*Profile {
	return []*Profile{NewStandard(), NewImproved(), NewEnhanced(), NewMinimal()}
}
