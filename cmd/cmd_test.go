package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/noshow-cli/internal/cleaning"
	"github.com/KaramelBytes/noshow-cli/internal/loader"
	"github.com/KaramelBytes/noshow-cli/internal/report"
)

const fixture = `PatientId,AppointmentID,Gender,ScheduledDay,AppointmentDay,Age,Neighbourhood,Scholarship,Hipertension,Diabetes,Alcoholism,Handcap,SMS_received,No-show
29872499824296,5642903,F,2016-04-29 18:38:08,2016-04-29 00:00:00,62,JARDIM DA PENHA,0,1,0,0,0,0,No
558997776694438,5642503,M,2016-04-25 16:08:27,2016-04-27 00:00:00,56,JARDIM DA PENHA,0,0,0,0,0,0,No
4262962299951,5642549,F,2016-04-29 16:19:04,2016-05-02 00:00:00,-5,MATA DA PRAIA,0,0,0,0,0,1,Yes
867951213174,5642828,F,2016-04-20 16:17:04,2016-04-27 00:00:00,8,PONTAL DE CAMBURI,0,0,0,0,1,1,Yes
8841186448183,5642494,F,2016-04-26 08:36:51,2016-05-03 00:00:00,76,REPUBLICA,0,1,1,0,0,1,No
`

// setup redirects HOME, writes the fixture and returns its path.
func setup(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	color.NoColor = true

	csvPath = filepath.Join(home, "appointments.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(fixture), 0o644))
	return home, csvPath
}

// execute runs the root command with fresh flag state and captures stdout.
func execute(args ...string) (string, error) {
	for _, c := range []*cobra.Command{rootCmd, analyzeCmd, inspectCmd, configSetCmd, configShowCmd} {
		reset := func(f *pflag.Flag) {
			if strings.HasSuffix(f.Value.Type(), "Slice") {
				return
			}
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
	cfg, cfgErr = nil, nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	require.NoError(t, err, "command %v", args)
	return out
}

func requireReports(t *testing.T, outDir string) {
	t.Helper()
	for _, name := range []string{report.MarkdownFile, report.JSONFile, report.XLSXFile} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	charts, err := filepath.Glob(filepath.Join(outDir, "charts", "*.png"))
	require.NoError(t, err)
	assert.Len(t, charts, 7)
}

func TestAnalyzeWritesReportsAndCharts(t *testing.T) {
	home, csvPath := setup(t)
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "analyze", csvPath, "--out", outDir)
	requireReports(t, outDir)

	md, err := os.ReadFile(filepath.Join(outDir, report.MarkdownFile))
	require.NoError(t, err)
	for _, s := range []string{"[CAVEATS]", "did NOT attend", "negative ages removed: 1", "[CHARTS]"} {
		assert.Contains(t, string(md), s)
	}
	assert.Contains(t, out, "✓ Cleaned 4 of 5 rows (1 with negative age removed)")
}

func TestAnalyzeHeaderOnlyInput(t *testing.T) {
	home, _ := setup(t)
	csvPath := filepath.Join(home, "empty.csv")
	header := strings.SplitN(fixture, "\n", 2)[0]
	require.NoError(t, os.WriteFile(csvPath, []byte(header+"\n"), 0o644))
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "analyze", csvPath, "--out", outDir)
	requireReports(t, outDir)
	assert.Contains(t, out, "✓ Cleaned 0 of 0 rows")

	md, err := os.ReadFile(filepath.Join(outDir, report.MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "[CAVEATS]")
}

func TestAnalyzeFlagsOverrideConfig(t *testing.T) {
	home, csvPath := setup(t)
	outDir := filepath.Join(home, "svg")

	out := runCmd(t, "analyze", csvPath, "--out", outDir, "--format", "svg", "--no-xlsx", "--quiet")
	assert.Empty(t, out)
	assert.FileExists(t, filepath.Join(outDir, "charts", "age_by_no_show.svg"))
	assert.NoFileExists(t, filepath.Join(outDir, report.XLSXFile))
}

func TestAnalyzeErrors(t *testing.T) {
	home, csvPath := setup(t)

	_, err := execute("analyze", filepath.Join(home, "missing.csv"), "--out", home)
	assert.True(t, errors.Is(err, loader.ErrFileNotFound), "got %v", err)

	_, err = execute("analyze", csvPath, "--out", home, "--date-layout", "2006-01-02T15:04:05Z07:00")
	assert.True(t, errors.Is(err, cleaning.ErrDateParse), "got %v", err)

	_, err = execute("analyze", csvPath, "--out", home, "--format", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid chart_format")
}

func TestAnalyzeMissingNamedConfig(t *testing.T) {
	home, csvPath := setup(t)

	_, err := execute("analyze", csvPath, "--out", home, "--config", filepath.Join(home, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestInspectWritesSummariesWithoutOverwrite(t *testing.T) {
	home, csvPath := setup(t)
	outDir := filepath.Join(home, "summaries")

	runCmd(t, "inspect", csvPath, "--out", outDir)
	out := runCmd(t, "inspect", csvPath, "--out", outDir, "--sample-rows", "0")

	first := filepath.Join(outDir, "appointments.summary.md")
	second := filepath.Join(outDir, "appointments__2.summary.md")
	require.FileExists(t, second)
	assert.Contains(t, out, "writing to appointments__2.summary.md")

	b1, err := os.ReadFile(first)
	require.NoError(t, err)
	b2, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(b1), "[HEAD AND SAMPLE ROWS]")
	assert.NotContains(t, string(b2), "[HEAD AND SAMPLE ROWS]")
	assert.Contains(t, string(b1), "Age has 1 negative values")
}

func TestInspectStdoutJSON(t *testing.T) {
	_, csvPath := setup(t)
	out := runCmd(t, "inspect", csvPath, "--json", "--quiet")
	assert.Contains(t, out, `"name": "appointments.csv"`)
	assert.Contains(t, out, `"duplicate_rows": 0`)
}

func TestConfigSetAndShow(t *testing.T) {
	home, _ := setup(t)

	runCmd(t, "config", "set", "hist_bins", "20")
	runCmd(t, "config", "set", "chart_format", "SVG")
	assert.FileExists(t, filepath.Join(home, ".noshow", "config.yaml"))

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "hist_bins: 20")
	assert.Contains(t, out, "chart_format: svg")

	_, err := execute("config", "set", "hist_bins", "0")
	assert.Error(t, err)
	_, err = execute("config", "set", "nope", "1")
	assert.Error(t, err)
}

func TestConfigSetCreatesNamedFile(t *testing.T) {
	home, _ := setup(t)
	path := filepath.Join(home, "custom.yaml")

	runCmd(t, "config", "set", "output_dir", "reports", "--config", path)
	require.FileExists(t, path)

	out := runCmd(t, "config", "show", "--config", path)
	assert.Contains(t, out, "output_dir: reports")
}
