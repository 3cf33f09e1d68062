package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank RESUME...",
	Short: "Score many resumes against one job description and rank them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("job", "", "job description text")
	rankCmd.Flags().String("job-file", "", "file with the job description (pdf, docx or txt)")
	rankCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	rankCmd.Flags().Float64("minimum-score", 0, "drop resumes scoring below this value")
	rankCmd.Flags().Int("top", 0, "keep only the best N resumes (0 keeps all)")
	rankCmd.Flags().IntP("workers", "w", ranking.DefaultWorkers, "number of resumes analyzed concurrently")
	rankCmd.Flags().Bool("keep-failed", false, "keep resumes that could not be analyzed in the output")
	rankCmd.Flags().Bool("dump", false, "dump the ranked resumes to a temporary json file")

	rankCmd.MarkFlagsMutuallyExclusive("job", "job-file")

	viper.BindPFlag("rank.minimum-score", rankCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("rank.top", rankCmd.Flags().Lookup("top"))
}

func rank(cmd *cobra.Command, paths []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, registry, logger := setup()

	output, _ := cmd.Flags().GetString("output")
	if output != outputText && output != outputJSON {
		logger.Fatal("invalid output format", zap.String("output", output))
	}

	job, err := loadJob(cmd)
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err),
			zap.String("hint", "pass --job or --job-file"),
		)
	}

	p, err := registry.Get("")
	if err != nil {
		logger.Fatal("selecting profile", zap.Error(err))
	}
	a, err := analyzer.New(p, logger)
	if err != nil {
		logger.Fatal("building analyzer", zap.Error(err))
	}

	docs, failed := loadDocuments(paths, logger)
	logger.Info("ranking resumes", zap.Int("count", len(paths)), zap.String("profile", p.Name))

	workers, _ := cmd.Flags().GetInt("workers")
	candidates, err := ranking.Score(ctx, a, job, docs, workers, logger)
	if err != nil {
		logger.Fatal("scoring resumes", zap.Error(err))
	}
	candidates.Items = append(candidates.Items, failed...)

	steps := ranking.DefaultSteps()
	if keep, _ := cmd.Flags().GetBool("keep-failed"); keep {
		ranking.DisableByName(steps, ranking.FailedFilter, "keep-failed flag is set")
	}

	candidates, err = ranking.Run(ctx, config.Rank, ranking.Deps{Logger: logger}, steps, candidates)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	candidates.SortByScore()

	// do not bother error since statuses are plain data
	statuses, _ := json.Marshal(ranking.Describe(steps))
	logger.Debug("filters", zap.ByteString("steps", statuses))
	logger.Debug("report by match level", zap.Any("report", candidates.ReportByLevel()))

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	}

	if candidates.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no resumes left after filters"))
		return
	}

	if err := printCandidates(cmd.OutOrStdout(), output, candidates); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}

// loadDocuments reads every resume. Unreadable files come back as failed candidates.
func loadDocuments(paths []string, logger *zap.Logger) ([]ranking.Document, []*ranking.Candidate) {
	docs := make([]ranking.Document, 0, len(paths))
	var failed []*ranking.Candidate

	for _, path := range paths {
		name := filepath.Base(path)
		text, err := loadResume(path)
		if err != nil {
			logger.Warn("skipping resume", zap.String("document", path), zap.Error(err))
			failed = append(failed, &ranking.Candidate{Name: name, Err: err})
			continue
		}
		docs = append(docs, ranking.Document{Name: name, Text: text})
	}

	return docs, failed
}

func printCandidates(w io.Writer, output string, candidates *ranking.Candidates) error {
	if output == outputJSON {
		return printJSON(w, candidates)
	}

	for i, c := range candidates.Items {
		if c.Failed() {
			if _, err := fmt.Fprintf(w, "%3d. %-40s %8s  %v\n", i+1, c.Name, "failed", c.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%3d. %-40s %8.2f  %s\n", i+1, c.Name, c.Result.Score, c.Result.MatchLevel); err != nil {
			return err
		}
	}
	return nil
}
