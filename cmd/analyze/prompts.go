package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/postpulse/internal/domain/prompt"
	"github.com/okian/postpulse/internal/domain/report"
)

// promptText resolves name against the analysis bundle, with
// prompt.NameRecommendation selecting the recommendation prompt.
func promptText(set report.Set, name string) (string, error) {
	if name == prompt.NameRecommendation {
		return prompt.RecommendationFromReports(set)
	}
	ps, err := prompt.FromReports(set)
	if err != nil {
		return "", err
	}
	return ps.Get(name)
}

func newPromptsCommand(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "prompts FILE",
		Short: "Print the LLM prompts built from an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if name != "" {
				text, err := promptText(a.set, name)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, text)
				return err
			}

			ps, err := prompt.FromReports(a.set)
			if err != nil {
				return err
			}
			for _, p := range ps {
				if _, err := fmt.Fprintf(out, "== %s ==\n%s\n\n", p.Name, p.Text); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "print only this prompt (or \"recommendation\")")
	return cmd
}
