package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var csvRows = []string{
	"PatientId,Gender,ScheduledDay,Age,Neighbourhood,No-show",
	"1,F,2016-04-29 18:38:08,62,JARDIM DA PENHA,No",
	"2,M,2016-04-29 16:08:27,56,JARDIM DA PENHA,No",
	"3,F,2016-04-29 16:19:04,-1,MATA DA PRAIA,Yes",
	"4,F,2016-04-29 17:29:31,8,PONTAL DE CAMBURI,No",
	"5,F,2016-04-29 16:07:23,56,JARDIM DA PENHA,No",
	"6,F,2016-04-27 08:36:51,76,REPÚBLICA,No",
	"7,F,2016-04-27 15:05:12,23,GOIABEIRAS,Yes",
	"8,F,2016-04-27 15:39:58,39,GOIABEIRAS,Yes",
	"9,F,2016-04-29 08:02:16,21,ANDORINHAS,No",
	"1,F,2016-04-29 18:38:08,62,JARDIM DA PENHA,No",
}

func writeCSV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "appointments.csv")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(csvRows, "\n")), 0o644))
	return p
}

func TestAnalyzeFileAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 3
	opt.GroupBy = []string{"no-show"}

	rep, err := AnalyzeFile(writeCSV(t), opt)
	require.NoError(t, err)
	assert.Equal(t, "appointments.csv", rep.Name)
	assert.Equal(t, 10, rep.Rows)
	assert.Equal(t, 10, rep.Processed)
	assert.Equal(t, 1, rep.DuplicateRows)
	assert.Len(t, rep.Samples, 3)

	kinds := map[string]string{}
	for _, c := range rep.Cols {
		kinds[c.Name] = c.Kind
	}
	want := map[string]string{
		"PatientId":    "numeric",
		"Gender":       "categorical",
		"ScheduledDay": "datetime",
		"Age":          "numeric",
		"No-show":      "categorical",
	}
	for name, kind := range want {
		assert.Equal(t, kind, kinds[name], name)
	}

	age := columnByName(t, rep, "Age")
	assert.Equal(t, -1.0, age.Min)
	assert.Equal(t, 76.0, age.Max)
	assert.InDelta(t, 40.2, age.Mean, 1e-9)
	assert.InDelta(t, 26.1015, age.Std, 1e-3)
	assert.Equal(t, 1, age.Negative)
	assert.Equal(t, 3.5, age.OutlierThreshold)

	ns := columnByName(t, rep, "No-show")
	require.NotEmpty(t, ns.TopValues)
	assert.Equal(t, CategoryCount{Value: "No", Count: 7}, ns.TopValues[0])

	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "No-show=No", rep.Groups[0].Key)
	assert.Equal(t, 7, rep.Groups[0].Size)
	yes := rep.Groups[1].Metrics["Age"]
	assert.Equal(t, 3, yes.Count)
	assert.InDelta(t, (23+39-1)/3.0, yes.Mean, 1e-9)
	assert.Equal(t, -1.0, yes.Min)
	assert.Equal(t, 39.0, yes.Max)

	md := rep.Markdown()
	for _, s := range []string{
		"[DATASET SUMMARY]", "File: appointments.csv", "Rows: 10", "Duplicate rows: 1",
		"[SCHEMA]", "- Age: numeric", "[GROUP-BY SUMMARY]", "[HEAD AND SAMPLE ROWS]",
		"[NOTES]", "Age has 1 negative values",
	} {
		assert.Contains(t, md, s)
	}
}

func TestProfileMaxRows(t *testing.T) {
	header := []string{"a", "b"}
	rows := [][]string{{"1", "x"}, {"2", "y"}, {"3"}}
	opt := DefaultOptions()
	opt.MaxRows = 2
	rep := Profile("t", header, rows, opt)
	assert.Equal(t, 2, rep.Processed)
	assert.Equal(t, 3, rep.Rows)
	assert.Contains(t, rep.Markdown(), "Rows: ~3 (processed 2)")
	// input untouched
	assert.Len(t, header, 2)
	assert.Len(t, rows[2], 1)
}

func TestProfileSingleNumericValue(t *testing.T) {
	rep := Profile("one", []string{"age"}, [][]string{{"7"}}, DefaultOptions())
	c := columnByName(t, rep, "age")
	assert.Equal(t, "numeric", c.Kind)
	assert.Equal(t, 7.0, c.Mean)
	assert.Equal(t, 0.0, c.Std)
}

func TestProfileEmpty(t *testing.T) {
	rep := Profile("empty", nil, nil, DefaultOptions())
	assert.Equal(t, 0, rep.Rows)
	assert.Empty(t, rep.Cols)
}

func TestAnalyzeFileMissing(t *testing.T) {
	_, err := AnalyzeFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	assert.Error(t, err)
}

func TestMedianMAD(t *testing.T) {
	m, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, m)
	assert.Equal(t, 1.0, mad)

	m, mad = medianMAD([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, m)
	assert.Equal(t, 1.0, mad)

	m, mad = medianMAD(nil)
	assert.Zero(t, m)
	assert.Zero(t, mad)
}

func TestRobustOutliers(t *testing.T) {
	vals := []float64{10, 11, 12, 10, 11, 12, 11, 10, 95}
	count, maxZ, thr := robustOutliers(vals, 0)
	assert.Equal(t, 1, count)
	assert.Equal(t, 3.5, thr)
	assert.Greater(t, maxZ, 3.5)
}

func columnByName(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Cols {
		if c.Name == name {
			return c
		}
	}
	require.FailNow(t, "column not found", name)
	return ColumnSummary{}
}
