package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/noshow-cli/internal/chart"
	"github.com/KaramelBytes/noshow-cli/internal/cleaning"
	"github.com/KaramelBytes/noshow-cli/internal/loader"
	"github.com/KaramelBytes/noshow-cli/internal/report"
)

var (
	anaOutDir     string
	anaFormat     string
	anaBins       int
	anaDateLayout string
	anaDelimiter  string
	anaSheetName  string
	anaSheetIndex int
	anaNoXLSX     bool
	anaNoCharts   bool
	anaQuiet      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Clean an appointments table, draw the charts and write the findings report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		base, err := requireConfig()
		if err != nil {
			return err
		}
		c := *base
		f := cmd.Flags()
		if f.Changed("out") {
			c.OutputDir = anaOutDir
		}
		if f.Changed("format") {
			c.ChartFormat = anaFormat
		}
		if f.Changed("bins") {
			c.HistBins = anaBins
		}
		if f.Changed("date-layout") {
			c.DateLayout = anaDateLayout
		}
		if f.Changed("sheet-name") {
			c.SheetName = anaSheetName
		}
		if f.Changed("sheet-index") {
			c.SheetIndex = anaSheetIndex
		}
		if anaNoXLSX {
			c.WriteXLSX = false
		}
		if err := c.Validate(); err != nil {
			return err
		}
		delim, err := parseDelimiter(anaDelimiter)
		if err != nil {
			return err
		}

		runID := uuid.NewString()
		log := slog.Default().With(slog.String("run_id", runID))
		out := cmd.OutOrStdout()
		ok := color.New(color.FgGreen)
		warn := color.New(color.FgYellow)

		src, err := loader.Load(path, loader.Options{Delimiter: delim, SheetName: c.SheetName, SheetIndex: c.SheetIndex})
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Info("loaded table", slog.String("source", src.Name), slog.Int("rows", src.Len()), slog.Int("columns", len(src.Header)))

		opt := cleaning.DefaultOptions()
		opt.DateLayout = c.DateLayout
		res, err := cleaning.Run(src, opt, log)
		if err != nil {
			return fmt.Errorf("clean %s: %w", src.Name, err)
		}

		findings, err := report.Build(res, runID)
		if err != nil {
			return err
		}

		if !anaNoCharts {
			jobs, err := chart.Plan(res.Records, c.HistBins)
			if err != nil {
				return fmt.Errorf("plan charts: %w", err)
			}
			r := chart.NewRenderer(filepath.Join(c.OutputDir, "charts"), c.ChartFormat, c.ChartWidthIn, c.ChartHeightIn, log)
			paths, err := r.RenderAll(jobs)
			findings.Charts = paths
			var merr *multierror.Error
			if errors.As(err, &merr) {
				for _, e := range merr.Errors {
					findings.Warnings = append(findings.Warnings, e.Error())
					if !anaQuiet {
						warn.Fprintf(out, "⚠ %v\n", e)
					}
				}
			}
		}

		written, err := findings.WriteAll(c.OutputDir, c.WriteXLSX)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		if anaQuiet {
			return nil
		}
		findings.PrintTables(out)
		fmt.Fprintln(out)
		ok.Fprintf(out, "✓ Cleaned %d of %d rows (%d with negative age removed)\n", res.Stats.RowsOut, res.Stats.RowsIn, res.Stats.NegativeAgeRemoved)
		if n := len(findings.Charts); n > 0 {
			ok.Fprintf(out, "✓ Wrote %d charts to %s\n", n, filepath.Join(c.OutputDir, "charts"))
		}
		for _, p := range written {
			ok.Fprintf(out, "✓ Wrote %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutDir, "out", "o", "", "output directory for charts and reports (overrides config)")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "", "chart format: png|svg|pdf|jpg|tiff (overrides config)")
	analyzeCmd.Flags().IntVar(&anaBins, "bins", 0, "histogram bins (overrides config)")
	analyzeCmd.Flags().StringVar(&anaDateLayout, "date-layout", "", "Go time layout of ScheduledDay/AppointmentDay (overrides config)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from extension)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to read")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	analyzeCmd.Flags().BoolVar(&anaNoXLSX, "no-xlsx", false, "skip the report.xlsx workbook")
	analyzeCmd.Flags().BoolVar(&anaNoCharts, "no-charts", false, "skip chart rendering")
	analyzeCmd.Flags().BoolVar(&anaQuiet, "quiet", false, "suppress tables and progress output")
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}
