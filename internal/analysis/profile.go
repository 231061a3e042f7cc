package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/noshow-cli/internal/loader"
)

// Options controls profiling of a raw table.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-group numeric summaries for the given column names.
	GroupBy []string
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// Load selects the delimiter or worksheet of the source file.
	Load loader.Options
}

// DefaultOptions returns reasonable defaults for dataset inspection.
func DefaultOptions() Options {
	return Options{
		MaxRows:          200000,
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a raw table.
type Report struct {
	Name          string          `json:"name"`
	Rows          int             `json:"rows"`
	Processed     int             `json:"processed"`
	DuplicateRows int             `json:"duplicate_rows"`
	Cols          []ColumnSummary `json:"columns"`
	Samples       [][]string      `json:"samples,omitempty"`
	Groups        []GroupResult   `json:"groups,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|datetime|categorical|text|unknown
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`
	// Numeric stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Negative counts values below zero; for age this is the cleaning filter's target.
	Negative int `json:"negative,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues    []CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupResult captures aggregated numeric metrics per group key.
type GroupResult struct {
	Key     string                `json:"key"`
	Size    int                   `json:"size"`
	Metrics map[string]NumSummary `json:"metrics"`
}

type NumSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// AnalyzeFile loads path with the table loader and profiles it.
func AnalyzeFile(path string, opt Options) (*Report, error) {
	src, err := loader.Load(path, opt.Load)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	return Profile(src.Name, src.Header, src.Rows, opt), nil
}

// Profile summarizes header and rows without modifying either.
func Profile(name string, header []string, rows [][]string, opt Options) *Report {
	rep := &Report{Name: name, Rows: len(rows)}
	ncol := len(header)
	if ncol == 0 {
		return rep
	}

	type colAcc struct {
		name   string
		nonNil int
		miss   int
		// numeric stats via Welford
		neg    int
		numCnt int
		dtCnt  int
		txtCnt int
		cats   map[string]int
		exText []string
		vals   []float64
	}
	cols := make([]*colAcc, ncol)
	gbIndex := map[string]int{}
	for i := range header {
		hn := strings.TrimSpace(header[i])
		cols[i] = &colAcc{name: hn, cats: make(map[string]int)}
		gbIndex[strings.ToLower(hn)] = i
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}

	type gAcc struct {
		size int
		vals map[int][]float64
	}
	groups := map[string]*gAcc{}
	seen := map[string]struct{}{}

	for _, rec := range rows {
		if rep.Processed >= maxRows {
			break
		}
		rep.Processed++
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}

		key := strings.Join(rec, "\x1f")
		if _, ok := seen[key]; ok {
			rep.DuplicateRows++
		} else {
			seen[key] = struct{}{}
		}

		if len(rep.Samples) < sampleRows {
			rowCopy := make([]string, ncol)
			copy(rowCopy, rec)
			rep.Samples = append(rep.Samples, rowCopy)
		}

		var gkey string
		if len(opt.GroupBy) > 0 {
			var parts []string
			for _, name := range opt.GroupBy {
				idx, ok := gbIndex[strings.ToLower(strings.TrimSpace(name))]
				if !ok {
					continue
				}
				parts = append(parts, fmt.Sprintf("%s=%s", cols[idx].name, safeVal(strings.TrimSpace(rec[idx]))))
			}
			if len(parts) > 0 {
				gkey = strings.Join(parts, " | ")
			}
		}
		var ga *gAcc
		if gkey != "" {
			ga = groups[gkey]
			if ga == nil {
				ga = &gAcc{vals: map[int][]float64{}}
				groups[gkey] = ga
			}
			ga.size++
		}

		for j := 0; j < ncol; j++ {
			v := strings.TrimSpace(rec[j])
			c := cols[j]
			if v == "" {
				c.miss++
				continue
			}
			c.nonNil++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
			if x, err := strconv.ParseFloat(v, 64); err == nil {
				c.numCnt++
				if x < 0 {
					c.neg++
				}
				c.vals = append(c.vals, x)
				if ga != nil {
					ga.vals[j] = append(ga.vals[j], x)
				}
				continue
			}
			if _, ok := parseTimeMaybe(v); ok {
				c.dtCnt++
				continue
			}
			c.txtCnt++
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
	}

	rep.Cols = make([]ColumnSummary, 0, ncol)
	var numCols []int
	for idx, c := range cols {
		s := ColumnSummary{Name: c.name, NonNull: c.nonNil, Missing: c.miss, Unique: len(c.cats)}
		kind := "unknown"
		switch {
		case c.numCnt >= c.dtCnt && c.numCnt >= c.txtCnt && c.numCnt > 0:
			kind = "numeric"
			vs := series.Floats(c.vals)
			s.Min, s.Max, s.Mean = vs.Min(), vs.Max(), vs.Mean()
			s.Negative = c.neg
			if len(c.vals) > 1 {
				s.Std = vs.StdDev()
			}
			numCols = append(numCols, idx)
			if opt.Outliers && len(c.vals) >= 8 {
				s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = robustOutliers(c.vals, opt.OutlierThreshold)
			}
		case c.dtCnt >= c.txtCnt && c.dtCnt > 0:
			kind = "datetime"
		case c.txtCnt > 0 && len(c.cats) > 0 && len(c.cats) <= max(20, c.nonNil/2):
			kind = "categorical"
			s.TopValues = topValues(c.cats, 8)
		case c.txtCnt > 0:
			kind = "text"
			s.ExampleTexts = c.exText
		}
		s.Kind = kind
		rep.Cols = append(rep.Cols, s)
	}

	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	if rep.DuplicateRows > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d rows repeat an earlier row exactly", rep.DuplicateRows))
	}
	for _, c := range rep.Cols {
		if c.Negative > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s has %d negative values", c.Name, c.Negative))
		}
	}

	if len(groups) > 0 {
		out := make([]GroupResult, 0, len(groups))
		for k, ga := range groups {
			gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
			for _, idx := range numCols {
				vals := ga.vals[idx]
				if len(vals) == 0 {
					continue
				}
				vs := series.Floats(vals)
				gr.Metrics[cols[idx].name] = NumSummary{
					Count: len(vals),
					Min:   vs.Min(),
					Max:   vs.Max(),
					Mean:  vs.Mean(),
				}
			}
			out = append(out, gr)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Size == out[j].Size {
				return out[i].Key < out[j].Key
			}
			return out[i].Size > out[j].Size
		})
		if len(out) > 20 {
			out = out[:20]
		}
		rep.Groups = out
	}
	return rep
}

func topValues(cats map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ, threshold float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				count++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return count, maxAbsZ, thr
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "2006/01/02",
		"02/01/2006", "01/02/2006", "2006-01-02 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	median = series.Floats(vals).Median()
	dev := make([]float64, len(vals))
	for i, v := range vals {
		dev[i] = math.Abs(v - median)
	}
	mad = series.Floats(dev).Median()
	return median, mad
}
