package ranking

import (
	"encoding/json"
	"os"
	"slices"
	"strings"

	"github.com/spigell/resume-matcher/internal/analyzer"
)

// Candidate is one resume scored against the job description.
type Candidate struct {
	Name   string           `json:"name"`
	Result *analyzer.Result `json:"result,omitempty"`
	Err    error            `json:"-"`
}

// Failed reports whether the candidate could not be analyzed.
func (c *Candidate) Failed() bool {
	return c.Err != nil || c.Result == nil
}

// Score returns the candidate score, or -1 for failed candidates.
func (c *Candidate) Score() float64 {
	if c.Failed() {
		return -1
	}
	return c.Result.Score
}

// MarshalJSON adds the error text for failed candidates.
func (c *Candidate) MarshalJSON() ([]byte, error) {
	type plain Candidate
	out := struct {
		*plain
		Error string `json:"error,omitempty"`
	}{plain: (*plain)(c)}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	return json.Marshal(out)
}

type Candidates struct {
	Items []*Candidate `json:"items"`
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		names = append(names, item.Name)
	}
	return names
}

// SortByScore orders candidates by descending score, keeping input order for ties.
// Failed candidates go last.
func (c *Candidates) SortByScore() {
	slices.SortStableFunc(c.Items, func(a, b *Candidate) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		default:
			return 0
		}
	})
}

// Keep removes every candidate for which keep returns false and returns the
// removed names. Order of the remaining candidates is preserved.
func (c *Candidates) Keep(keep func(*Candidate) bool) []string {
	var removed []string
	kept := c.Items[:0]
	for _, item := range c.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		removed = append(removed, item.Name)
	}
	clear(c.Items[len(kept):])
	c.Items = kept
	return removed
}

// ReportByLevel groups the analyzed candidates by match level.
func (c *Candidates) ReportByLevel() map[string][]string {
	report := make(map[string][]string)
	for _, item := range c.Items {
		key := "Failed"
		if !item.Failed() {
			key = string(item.Result.MatchLevel)
		}
		report[key] = append(report[key], item.Name)
	}
	return report
}

// DumpToTmpFile writes the candidates as indented JSON to a new temporary file
// and returns its name.
func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (c *Candidates) String() string {
	return strings.Join(c.Names(), ", ")
}
