package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the scoring profiles and their tuning",
	Run: func(cmd *cobra.Command, _ []string) {
		_, registry, logger := setup()
		if err := printProfiles(cmd.OutOrStdout(), registry); err != nil {
			logger.Fatal("printing profiles", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func printProfiles(w io.Writer, registry *profile.Registry) error {
	var b strings.Builder
	for _, name := range registry.Names() {
		p, err := registry.Get(name)
		if err != nil {
			return err
		}

		marker := ""
		if name == registry.Default() {
			marker = " (default)"
		}
		wt := p.Weights
		fmt.Fprintf(&b, "%s%s: %s\n", p.Name, marker, p.Description)
		fmt.Fprintf(&b, "  weights: word=%.3f skill=%.3f tech=%.3f ngram=%.3f vector=%.3f experience=%.3f education=%.3f\n",
			wt.WordOverlap, wt.Skill, wt.TechnicalTerms, wt.NGram, wt.Vector, wt.Experience, wt.Education)
		fmt.Fprintf(&b, "  range: %.0f..%.0f  categories: %d  bonuses: %d  bands: %d\n",
			p.Floor, p.Ceiling, len(p.Taxonomy), len(p.Bonuses), len(p.Bands))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
