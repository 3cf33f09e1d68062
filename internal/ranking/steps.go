package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Filter names.
const (
	FailedFilter       = "failed"
	MinimumScoreFilter = "minimum_score"
	TopFilter          = "top"
)

type failedFilter struct {
	disabled bool
	reason   string
}

// NewFailed creates a filter that removes candidates whose analysis failed.
func NewFailed() Filter {
	return &failedFilter{}
}

func (f *failedFilter) Name() string { return FailedFilter }

func (f *failedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *failedFilter) IsEnabled() bool { return !f.disabled }

func (f *failedFilter) Validate(*Config) error { return nil }

func (f *failedFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	removed := c.Keep(func(item *Candidate) bool { return !item.Failed() })
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding documents that could not be analyzed",
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *failedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minimumScoreFilter struct {
	disabled bool
	reason   string
	minimum  float64
}

// NewMinimumScore creates a filter that removes candidates scoring below Config.MinimumScore.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return MinimumScoreFilter }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumScore
	}
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %.2f", f.minimum)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.minimum == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	removed := c.Keep(func(item *Candidate) bool { return item.Score() >= f.minimum })
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding documents below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	details := map[string]string{
		"minimum_score": fmt.Sprintf("%.2f", f.minimum),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type topFilter struct {
	disabled bool
	reason   string
	top      int
}

// NewTop creates a filter that keeps the Config.Top best scoring candidates.
// A zero Top keeps everything.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return TopFilter }

func (f *topFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *topFilter) IsEnabled() bool { return !f.disabled }

func (f *topFilter) Validate(cfg *Config) error {
	f.top = 0
	if cfg != nil {
		f.top = cfg.Top
	}
	if f.top < 0 {
		return errors.New("top must not be negative")
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	c.SortByScore()
	if f.top == 0 || initial <= f.top {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	rank := make(map[*Candidate]int, initial)
	for i, item := range c.Items {
		rank[item] = i
	}
	removed := c.Keep(func(item *Candidate) bool { return rank[item] < f.top })
	if deps.Logger != nil {
		deps.Logger.Info("keeping best scoring documents",
			zap.Int("top", f.top),
			zap.Strings("excluded_documents", removed),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *topFilter) Status() Status {
	details := map[string]string{}
	if f.top > 0 {
		details["top"] = strconv.Itoa(f.top)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
