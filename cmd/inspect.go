package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/noshow-cli/internal/analysis"
	"github.com/KaramelBytes/noshow-cli/internal/loader"
	"github.com/KaramelBytes/noshow-cli/internal/utils"
)

var (
	insOutDir     string
	insDelimiter  string
	insSampleRows int
	insMaxRows    int
	insGroupBy    []string
	insOutliers   bool
	insOutlierThr float64
	insSheetName  string
	insSheetIndex int
	insJSON       bool
	insQuiet      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Profile raw CSV/TSV/XLSX tables before cleaning",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		opt := analysis.DefaultOptions()
		if insSampleRows >= 0 {
			opt.SampleRows = insSampleRows
		}
		if insMaxRows >= 0 {
			opt.MaxRows = insMaxRows
		}
		opt.GroupBy = insGroupBy
		opt.Outliers = insOutliers
		if insOutlierThr > 0 {
			opt.OutlierThreshold = insOutlierThr
		}
		delim, err := parseDelimiter(insDelimiter)
		if err != nil {
			return err
		}
		opt.Load = loader.Options{Delimiter: delim, SheetName: insSheetName, SheetIndex: insSheetIndex}

		out := cmd.OutOrStdout()
		ok := color.New(color.FgGreen)
		warn := color.New(color.FgYellow)
		if insOutDir != "" {
			if err := utils.EnsureDir(insOutDir); err != nil {
				return err
			}
		}
		total := len(files)
		for i, path := range files {
			if !insQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := analysis.AnalyzeFile(path, opt)
			if err != nil {
				return err
			}
			var body []byte
			ext := ".summary.md"
			if insJSON {
				if body, err = utils.PrettyJSON(rep); err != nil {
					return err
				}
				ext = ".summary.json"
			} else {
				body = []byte(rep.Markdown())
			}

			if insOutDir == "" {
				fmt.Fprintln(out, string(body))
				continue
			}
			outFile := filepath.Join(insOutDir, utils.Stem(path)+ext)
			if _, statErr := os.Stat(outFile); statErr == nil {
				for idx := 2; ; idx++ {
					cand := filepath.Join(insOutDir, fmt.Sprintf("%s__%d%s", utils.Stem(path), idx, ext))
					if _, err := os.Stat(cand); os.IsNotExist(err) {
						if !insQuiet {
							warn.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
						}
						outFile = cand
						break
					}
				}
			}
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !insQuiet {
				ok.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutDir, "out", "o", "", "directory for <name>.summary.md files (default prints to stdout)")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 200000, "maximum rows to process (0 = unlimited)")
	inspectCmd.Flags().StringSliceVar(&insGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	inspectCmd.Flags().BoolVar(&insOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	inspectCmd.Flags().Float64Var(&insOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	inspectCmd.Flags().StringVar(&insSheetName, "sheet-name", "", "XLSX: sheet name to inspect")
	inspectCmd.Flags().IntVar(&insSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	inspectCmd.Flags().BoolVar(&insJSON, "json", false, "emit JSON instead of Markdown")
	inspectCmd.Flags().BoolVar(&insQuiet, "quiet", false, "suppress progress and non-essential output")
}

// expandInputs resolves globs, keeps literal paths that exist and drops repeats.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}
