package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/source"
)

const (
	PromptBreakdown    = "Show score breakdown"
	PromptGaps         = "Show skill gaps"
	PromptOtherProfile = "Try another profile"
	PromptExit         = "Exit"

	outputText = "text"
	outputJSON = "json"

	maxLoggedJobLength = 200
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx or txt)")
	analyzeCmd.Flags().String("job", "", "job description text")
	analyzeCmd.Flags().String("job-file", "", "file with the job description (pdf, docx or txt)")
	analyzeCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	analyzeCmd.Flags().BoolP("interactive", "i", false, "choose the profile and explore the result interactively")

	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-file")
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, registry, logger := setup()

	output, _ := cmd.Flags().GetString("output")
	if output != outputText && output != outputJSON {
		logger.Fatal("invalid output format", zap.String("output", output))
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	resume, err := loadResume(resumePath)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	job, err := loadJob(cmd)
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err),
			zap.String("hint", "pass --job or --job-file"),
		)
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	name := registry.Default()
	if interactive {
		if name, err = selectProfile(registry); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	for {
		result, err := analyzeWith(ctx, registry, name, resumePath, resume, job, logger)
		if err != nil {
			logger.Fatal("analyzing resume", zap.Error(err))
		}

		if err := printResult(cmd.OutOrStdout(), output, result); err != nil {
			logger.Fatal("printing result", zap.Error(err))
		}

		if !interactive {
			return
		}

		next, err := explore(cmd.OutOrStdout(), registry, result)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
		name = next
	}
}

func loadJob(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("job")
	file, _ := cmd.Flags().GetString("job-file")

	return source.Load(source.Source{Name: "job description", Value: text, File: file, AllowEmpty: true})
}

// loadResume accepts a file without text; the analyzer scores it at the profile floor.
func loadResume(path string) (string, error) {
	return source.Load(source.Source{Name: "resume", File: path, AllowEmpty: true})
}

func analyzeWith(ctx context.Context, registry *profile.Registry, name, resumePath, resume, job string, log *zap.Logger) (*analyzer.Result, error) {
	p, err := registry.Get(name)
	if err != nil {
		return nil, err
	}

	a, err := analyzer.New(p, logger.WithFields(log, zap.String(logger.FieldDocument, resumePath)))
	if err != nil {
		return nil, err
	}

	log.Debug("analyzing",
		zap.String(logger.FieldProfile, p.Name),
		zap.String("job_description", logger.TruncateForLog(job, maxLoggedJobLength)),
	)

	return a.Analyze(ctx, resume, job)
}

func printResult(w io.Writer, output string, result *analyzer.Result) error {
	if output == outputJSON {
		pretty, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(pretty))
		return err
	}

	_, err := fmt.Fprintf(w, "Profile: %s\nScore: %.2f (%s)\n\n%s\n", result.Profile, result.Score, result.MatchLevel, result.Feedback)
	return err
}

func selectProfile(registry *profile.Registry) (string, error) {
	prompt := promptui.Select{
		Label: "Choose a scoring profile",
		Items: registry.Names(),
	}
	_, name, err := prompt.Run()
	return name, err
}

// explore offers follow-up actions on a result. It returns the profile to
// re-run the analysis with, or errExit.
func explore(w io.Writer, registry *profile.Registry, result *analyzer.Result) (string, error) {
	prompt := promptui.Select{
		Label: "Next?",
		Items: []string{PromptBreakdown, PromptGaps, PromptOtherProfile, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return "", err
		}

		switch action {
		case PromptBreakdown:
			if err := printJSON(w, result.Breakdown); err != nil {
				return "", err
			}
		case PromptGaps:
			if err := printJSON(w, result.Gaps); err != nil {
				return "", err
			}
		case PromptOtherProfile:
			return selectProfile(registry)
		case PromptExit:
			return "", errExit
		default:
			return "", fmt.Errorf("invalid action: %s", action)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimSpace(string(pretty)))
	return err
}
