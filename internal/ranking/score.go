// Package ranking scores many resumes against one job description and narrows
// the result down through a pipeline of filter steps.
package ranking

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/analyzer"
)

// DefaultWorkers is used when Score is given a non-positive worker count.
const DefaultWorkers = 4

// Analyzer scores one resume against one job description.
type Analyzer interface {
	Analyze(ctx context.Context, resume, job string) (*analyzer.Result, error)
}

// Document is a named resume text.
type Document struct {
	Name string
	Text string
}

// Score analyzes docs against job with at most workers concurrent analyses.
// Candidates come back in input order. A document that fails to analyze becomes
// a failed candidate; only cancellation of ctx aborts the whole run.
func Score(ctx context.Context, a Analyzer, job string, docs []Document, workers int, logger *zap.Logger) (*Candidates, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	items := make([]*Candidate, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := a.Analyze(gctx, doc.Text, job)
			items[i] = &Candidate{Name: doc.Name, Result: result, Err: err}
			if err != nil {
				logger.Warn("analysis failed", zap.String("document", doc.Name), zap.Error(err))
				return nil
			}

			logger.Debug("document analyzed",
				zap.String("document", doc.Name),
				zap.Float64("score", result.Score),
				zap.String("level", string(result.MatchLevel)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring documents: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring documents: %w", err)
	}

	return &Candidates{Items: items}, nil
}
