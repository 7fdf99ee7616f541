package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/okian/postpulse/internal/domain/report"
)

const defaultSheet = "Sheet1"

// writeWorkbook writes one sheet per report, in report.Names order.
func writeWorkbook(w io.Writer, set report.Set) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range report.Names {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		header, rows, err := reportRows(set, name)
		if err != nil {
			return err
		}
		hr := make([]any, len(header))
		for j, h := range header {
			hr[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &hr); err != nil {
			return err
		}
		for j, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("%s row %d: %w", name, j+1, err)
			}
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write every report of an export to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writeWorkbook(f, a.set); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d reports to %s\n", len(report.Names), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "reports.xlsx", "output workbook path")
	return cmd
}
