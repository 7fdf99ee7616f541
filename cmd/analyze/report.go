package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/okian/postpulse/internal/domain/report"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	var (
		name   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Print the engagement reports of an export",
		Long: `Print every report, or only the one named by --name, as tables.
Names: platform, timeBased, format, tags, creators, schedule, comments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if name == "" {
					return enc.Encode(a.set)
				}
				data, err := a.set.Get(name)
				if err != nil {
					return err
				}
				return enc.Encode(data)
			}

			names := report.Names
			if name != "" {
				names = []string{name}
			} else {
				renderStats(out, a.stats)
			}
			for _, n := range names {
				if err := renderReport(out, a.set, n); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "print only this report")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}
