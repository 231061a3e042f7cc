// Package aggregate computes the grouped summaries behind each chart and
// finding. Every function reads its input slice and never writes to it.
//
// Groups listed in levels are always emitted, in that order, even when no row
// falls into them. Groups seen in the data but absent from levels follow in
// sorted order.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/noshow-cli/internal/appointment"
)

// ErrUnknownColumn is returned for a column the record type cannot address.
var ErrUnknownColumn = appointment.ErrUnknownColumn

// Distribution holds the raw values of one numeric column for one group.
type Distribution struct {
	Group  string    `json:"group"`
	Values []float64 `json:"values"`
}

// Distribution2 is a Distribution keyed by two grouping columns.
type Distribution2 struct {
	Outer  string    `json:"outer"`
	Inner  string    `json:"inner"`
	Values []float64 `json:"values"`
}

// FlagSums holds per-flag totals for one group; Sums is aligned with Flags.
type FlagSums struct {
	Group string    `json:"group"`
	Flags []string  `json:"flags"`
	Sums  []float64 `json:"sums"`
}

// Sum returns the total for flag, or zero when flag was not summed.
func (f FlagSums) Sum(flag string) float64 {
	for i, n := range f.Flags {
		if n == flag {
			return f.Sums[i]
		}
	}
	return 0
}

// Count is the number of rows in one group.
type Count struct {
	Key string `json:"key"`
	N   int    `json:"n"`
}

// Mean is the average of a numeric column for one group. Mean is zero when N is.
type Mean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	N     int     `json:"n"`
}

// Predicate selects rows before counting.
type Predicate func(appointment.Record) (bool, error)

// All keeps every row.
func All(appointment.Record) (bool, error) { return true, nil }

// Where keeps rows whose col renders as value.
func Where(col, value string) Predicate {
	return func(r appointment.Record) (bool, error) {
		v, err := r.Category(col)
		if err != nil {
			return false, err
		}
		return v == value, nil
	}
}

// DistributionBy partitions valueCol by groupCol.
func DistributionBy(rows []appointment.Record, groupCol, valueCol string, levels []string) ([]Distribution, error) {
	if err := checkColumns(groupCol); err != nil {
		return nil, err
	}
	if err := checkNumeric(valueCol); err != nil {
		return nil, err
	}
	buckets := map[string][]float64{}
	for _, r := range rows {
		g, _ := r.Category(groupCol)
		v, _ := r.Number(valueCol)
		buckets[g] = append(buckets[g], v)
	}
	keys := orderedKeys(levels, buckets)
	out := make([]Distribution, len(keys))
	for i, k := range keys {
		out[i] = Distribution{Group: k, Values: nonNil(buckets[k])}
	}
	return out, nil
}

// DistributionBy2 partitions valueCol by every (outer, inner) pair. Pairs are
// ordered outer-major.
func DistributionBy2(rows []appointment.Record, outerCol, innerCol, valueCol string, outerLevels, innerLevels []string) ([]Distribution2, error) {
	if err := checkColumns(outerCol, innerCol); err != nil {
		return nil, err
	}
	if err := checkNumeric(valueCol); err != nil {
		return nil, err
	}
	type pair struct{ o, i string }
	buckets := map[pair][]float64{}
	outerSeen := map[string][]float64{}
	innerSeen := map[string][]float64{}
	for _, r := range rows {
		o, _ := r.Category(outerCol)
		in, _ := r.Category(innerCol)
		v, _ := r.Number(valueCol)
		buckets[pair{o, in}] = append(buckets[pair{o, in}], v)
		outerSeen[o] = nil
		innerSeen[in] = nil
	}
	var out []Distribution2
	for _, o := range orderedKeys(outerLevels, outerSeen) {
		for _, in := range orderedKeys(innerLevels, innerSeen) {
			out = append(out, Distribution2{Outer: o, Inner: in, Values: nonNil(buckets[pair{o, in}])})
		}
	}
	return out, nil
}

// SumBy totals each of flagCols per groupCol value.
func SumBy(rows []appointment.Record, groupCol string, flagCols, levels []string) ([]FlagSums, error) {
	if err := checkColumns(groupCol); err != nil {
		return nil, err
	}
	if err := checkNumeric(flagCols...); err != nil {
		return nil, err
	}
	sums := map[string][]float64{}
	for _, r := range rows {
		g, _ := r.Category(groupCol)
		s, ok := sums[g]
		if !ok {
			s = make([]float64, len(flagCols))
			sums[g] = s
		}
		for i, c := range flagCols {
			v, _ := r.Number(c)
			s[i] += v
		}
	}
	keys := orderedKeys(levels, sums)
	out := make([]FlagSums, len(keys))
	for i, k := range keys {
		s := sums[k]
		if s == nil {
			s = make([]float64, len(flagCols))
		}
		out[i] = FlagSums{Group: k, Flags: append([]string(nil), flagCols...), Sums: s}
	}
	return out, nil
}

// CountBy counts rows per groupCol value among rows where holds.
func CountBy(rows []appointment.Record, groupCol string, where Predicate, levels []string) ([]Count, error) {
	if err := checkColumns(groupCol); err != nil {
		return nil, err
	}
	if where == nil {
		where = All
	}
	counts := map[string]int{}
	for _, r := range rows {
		ok, err := where(r)
		if err != nil {
			return nil, fmt.Errorf("count by %s: %w", groupCol, err)
		}
		if !ok {
			continue
		}
		g, _ := r.Category(groupCol)
		counts[g]++
	}
	keys := orderedKeys(levels, counts)
	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i] = Count{Key: k, N: counts[k]}
	}
	return out, nil
}

// MeanBy averages valueCol per groupCol value among rows where holds.
func MeanBy(rows []appointment.Record, groupCol, valueCol string, where Predicate, levels []string) ([]Mean, error) {
	if err := checkColumns(groupCol); err != nil {
		return nil, err
	}
	if err := checkNumeric(valueCol); err != nil {
		return nil, err
	}
	if where == nil {
		where = All
	}
	type acc struct {
		sum float64
		n   int
	}
	accs := map[string]acc{}
	for _, r := range rows {
		ok, err := where(r)
		if err != nil {
			return nil, fmt.Errorf("mean by %s: %w", groupCol, err)
		}
		if !ok {
			continue
		}
		g, _ := r.Category(groupCol)
		v, _ := r.Number(valueCol)
		a := accs[g]
		a.sum += v
		a.n++
		accs[g] = a
	}
	keys := orderedKeys(levels, accs)
	out := make([]Mean, len(keys))
	for i, k := range keys {
		a := accs[k]
		m := Mean{Group: k, N: a.n}
		if a.n > 0 {
			m.Mean = a.sum / float64(a.n)
		}
		out[i] = m
	}
	return out, nil
}

// SortAscending returns a copy of counts ordered by N. Ties keep their
// original relative order.
func SortAscending(counts []Count) []Count {
	out := append([]Count(nil), counts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].N < out[j].N })
	return out
}

// NonZero drops groups with no rows, keeping order.
func NonZero(counts []Count) []Count {
	out := make([]Count, 0, len(counts))
	for _, c := range counts {
		if c.N > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Total sums N over counts.
func Total(counts []Count) int {
	t := 0
	for _, c := range counts {
		t += c.N
	}
	return t
}

// Share is the fraction of the total held by key, or zero for an empty total.
func Share(counts []Count, key string) float64 {
	t := Total(counts)
	if t == 0 {
		return 0
	}
	for _, c := range counts {
		if c.Key == key {
			return float64(c.N) / float64(t)
		}
	}
	return 0
}

// Lookup returns the count for key.
func Lookup(counts []Count, key string) int {
	for _, c := range counts {
		if c.Key == key {
			return c.N
		}
	}
	return 0
}

// checkColumns checks each column against a zero record so bad names fail
// before any row is read.
func checkColumns(cols ...string) error {
	var zero appointment.Record
	for _, c := range cols {
		if _, err := zero.Category(c); err != nil {
			return err
		}
	}
	return nil
}

func checkNumeric(cols ...string) error {
	var zero appointment.Record
	for _, c := range cols {
		if _, err := zero.Number(c); err != nil {
			return err
		}
	}
	return nil
}

func orderedKeys[V any](levels []string, seen map[string]V) []string {
	out := append([]string(nil), levels...)
	known := make(map[string]bool, len(levels))
	for _, l := range levels {
		known[l] = true
	}
	var extra []string
	for k := range seen {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
