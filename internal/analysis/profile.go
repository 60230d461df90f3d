package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// ColumnProfile captures null-safe statistics for one column. Profiling is
// total: every column yields a profile, an all-null column included.
type ColumnProfile struct {
	Name       string
	Kind       dataset.Kind
	Rows       int
	Nulls      int
	NullRatio  float64
	Distinct   int
	Duplicates int // non-null rows beyond the first occurrence of each value
	// Sample holds up to SampleValues distinct values in the order they
	// first appear, so identical inputs always sample identically.
	Sample    []string
	TopValues []ValueCount
	// MinValue/MaxValue are set for orderable kinds: numeric by value,
	// datetime by instant, string lexically.
	MinValue string
	MaxValue string
	Numeric  *NumericStats
	AvgLen   float64
	MaxLen   int
	// Classifier signals computed during the same pass.
	DatetimeRatio float64 // share of non-null values that parse as a date
	BoolTokens    bool    // ≤2 distinct values, all from the boolean vocabulary
	IDShaped      bool    // every non-null value looks like a key or uuid
}

// NumericStats summarizes a numeric column.
type NumericStats struct {
	Min, Max, Mean, Std float64
	Outliers            int
	MaxAbsZ             float64
}

// ValueCount pairs a value with its occurrence count.
type ValueCount struct {
	Value string
	Count int
}

// NonNull returns the number of non-null rows.
func (p ColumnProfile) NonNull() int { return p.Rows - p.Nulls }

// ProfileColumn computes a ColumnProfile. It never fails; nulls are excluded
// from every statistic except the null count and ratio.
func ProfileColumn(col dataset.Column, opt Options) ColumnProfile {
	p := ColumnProfile{Name: col.Name, Kind: col.Kind, Rows: len(col.Values)}

	counts := make(map[string]int)
	var (
		intCnt, floatCnt, boolCnt, dtCnt int
		idShaped                         int
		lenSum                           int
	)
	for _, v := range col.Values {
		if v.Null {
			p.Nulls++
			continue
		}
		raw := v.Raw
		if counts[raw] == 0 && len(p.Sample) < opt.SampleValues {
			p.Sample = append(p.Sample, raw)
		}
		counts[raw]++
		lenSum += len(raw)
		if len(raw) > p.MaxLen {
			p.MaxLen = len(raw)
		}
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			intCnt++
		} else if _, err := strconv.ParseFloat(raw, 64); err == nil {
			floatCnt++
		}
		if isBoolLiteral(raw) {
			boolCnt++
		}
		if _, ok := parseTimeMaybe(raw); ok {
			dtCnt++
		}
		if isIDShaped(raw) {
			idShaped++
		}
	}

	nonNull := p.NonNull()
	if p.Rows > 0 {
		p.NullRatio = float64(p.Nulls) / float64(p.Rows)
	}
	p.Distinct = len(counts)
	if nonNull > p.Distinct {
		p.Duplicates = nonNull - p.Distinct
	}
	if nonNull == 0 {
		p.Kind = dataset.KindUnknown
		return p
	}

	p.DatetimeRatio = float64(dtCnt) / float64(nonNull)
	p.IDShaped = idShaped == nonNull
	if p.Kind == dataset.KindUnknown {
		p.Kind = inferKind(nonNull, intCnt, floatCnt, boolCnt, dtCnt)
	}
	p.BoolTokens = p.Distinct <= 2 && allBoolVocab(counts)
	if nonNull > 0 {
		p.AvgLen = float64(lenSum) / float64(nonNull)
	}

	p.TopValues = topValues(counts, opt.TopValues)

	switch p.Kind {
	case dataset.KindInteger, dataset.KindFloat:
		p.Numeric = numericStats(col.Values, opt)
		if p.Numeric != nil {
			p.MinValue = strconv.FormatFloat(p.Numeric.Min, 'g', -1, 64)
			p.MaxValue = strconv.FormatFloat(p.Numeric.Max, 'g', -1, 64)
		}
	case dataset.KindDatetime:
		p.MinValue, p.MaxValue = timeRange(col.Values)
	default:
		p.MinValue, p.MaxValue = lexicalRange(counts)
	}
	return p
}

// inferKind decides a primitive type for untyped sources by strict parse
// counts over the non-null values.
func inferKind(nonNull, intCnt, floatCnt, boolCnt, dtCnt int) dataset.Kind {
	switch {
	case boolCnt == nonNull:
		return dataset.KindBoolean
	case intCnt == nonNull:
		return dataset.KindInteger
	case intCnt+floatCnt == nonNull:
		return dataset.KindFloat
	case dtCnt == nonNull:
		return dataset.KindDatetime
	default:
		return dataset.KindString
	}
}

func numericStats(values []dataset.Value, opt Options) *NumericStats {
	// Welford accumulation
	var (
		n    int
		mean float64
		m2   float64
		vals []float64
	)
	s := &NumericStats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if v.Null {
			continue
		}
		x, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			continue
		}
		n++
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		vals = append(vals, x)
	}
	if n == 0 {
		return nil
	}
	s.Mean = mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = 3.5
	}
	if len(vals) >= 8 {
		median, mad := medianMAD(vals)
		if mad > 0 {
			for _, v := range vals {
				z := 0.6745 * (v - median) / mad
				az := math.Abs(z)
				if az > thr {
					s.Outliers++
				}
				if az > s.MaxAbsZ {
					s.MaxAbsZ = az
				}
			}
		}
	}
	return s
}

func timeRange(values []dataset.Value) (string, string) {
	var lo, hi time.Time
	seen := false
	for _, v := range values {
		if v.Null {
			continue
		}
		t, ok := parseTimeMaybe(v.Raw)
		if !ok {
			continue
		}
		if !seen || t.Before(lo) {
			lo = t
		}
		if !seen || t.After(hi) {
			hi = t
		}
		seen = true
	}
	if !seen {
		return "", ""
	}
	return lo.UTC().Format(time.RFC3339), hi.UTC().Format(time.RFC3339)
}

func lexicalRange(counts map[string]int) (string, string) {
	lo, hi := "", ""
	seen := false
	for v := range counts {
		if !seen {
			lo, hi = v, v
			seen = true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func topValues(counts map[string]int, limit int) []ValueCount {
	if len(counts) == 0 || limit <= 0 {
		return nil
	}
	tops := make([]ValueCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, ValueCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

var boolVocab = map[string]bool{
	"true": true, "false": true, "t": true, "f": true,
	"yes": true, "no": true, "y": true, "n": true,
	"0": true, "1": true, "on": true, "off": true,
}

func isBoolLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

func allBoolVocab(counts map[string]int) bool {
	if len(counts) == 0 {
		return false
	}
	for v := range counts {
		if !boolVocab[strings.ToLower(v)] {
			return false
		}
	}
	return true
}

// isIDShaped reports whether a value looks like a machine identifier:
// compact, no spaces, limited to characters common in keys and uuids.
func isIDShaped(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':', r == '@':
		default:
			return false
		}
	}
	return true
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
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
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		d := v - median
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
