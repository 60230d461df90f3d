package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// findingTemplate is one row of the synthesis table: a stable code, the
// finding kind, a priority weight inside that kind, an optional predicate,
// and a builder that states the facts.
type findingTemplate struct {
	code   string
	kind   FindingKind
	weight int
	when   func(p ColumnProfile, opt Options) bool
	build  func(p ColumnProfile, opt Options) (string, []Fact)
}

func coverageFacts(p ColumnProfile) []Fact {
	return []Fact{
		{Key: "non_null", Value: fmtInt(p.NonNull())},
		{Key: "missing", Value: fmtPct(p.NullRatio)},
		{Key: "distinct", Value: fmtInt(p.Distinct)},
	}
}

func dominantShare(p ColumnProfile) float64 {
	if len(p.TopValues) == 0 || p.NonNull() == 0 {
		return 0
	}
	return float64(p.TopValues[0].Count) / float64(p.NonNull())
}

func sampleFact(p ColumnProfile) Fact {
	return Fact{Key: "sample", Value: strings.Join(p.Sample, ", ")}
}

// categoryTemplates is the static synthesis table. The first template of
// every category has no predicate, which keeps synthesis total.
var categoryTemplates = map[Category][]findingTemplate{
	CategoryIdentifier: {
		{
			code: "identifier_profile", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "values act as a row identifier", append(coverageFacts(p),
					Fact{Key: "duplicates", Value: fmtInt(p.Duplicates)})
			},
		},
		{
			code: "identifier_duplicates", kind: FindingPrecaution, weight: 70,
			when: func(p ColumnProfile, _ Options) bool { return p.Duplicates > 0 },
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "identifier values repeat, so rows are not uniquely keyed", []Fact{
					{Key: "duplicates", Value: fmtInt(p.Duplicates)},
				}
			},
		},
		{
			code: "identifier_nulls", kind: FindingPrecaution, weight: 60,
			when: func(p ColumnProfile, _ Options) bool { return p.Nulls > 0 },
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "some rows are missing their identifier", []Fact{
					{Key: "missing_rows", Value: fmtInt(p.Nulls)},
				}
			},
		},
		{
			code: "identifier_usage", kind: FindingSuggestion,
			build: func(ColumnProfile, Options) (string, []Fact) {
				return "use this column as a join key and keep it out of statistical aggregates", nil
			},
		},
	},
	CategoryBooleanFlag: {
		{
			code: "boolean_balance", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				facts := coverageFacts(p)
				for i, tv := range p.TopValues {
					facts = append(facts, Fact{Key: "state_" + fmtInt(i+1), Value: fmt.Sprintf("%s (%d)", tv.Value, tv.Count)})
				}
				return "binary flag splitting rows into two states", facts
			},
		},
		{
			code: "boolean_imbalance", kind: FindingObservation, weight: 10,
			when: func(p ColumnProfile, _ Options) bool { return dominantShare(p) >= 0.9 },
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "one state dominates the flag", []Fact{
					{Key: "dominant_value", Value: p.TopValues[0].Value},
					{Key: "dominant_share", Value: fmtPct(dominantShare(p))},
				}
			},
		},
		{
			code: "boolean_encode", kind: FindingSuggestion,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				if p.Kind == dataset.KindBoolean {
					return "values are already canonical booleans; no re-encoding needed", nil
				}
				if p.BoolTokens {
					return "map the yes/no style tokens onto true/false before modeling", nil
				}
				return "encode the two labels as a boolean flag (or 0/1) before modeling",
					[]Fact{sampleFact(p)}
			},
		},
	},
	CategoryDatetime: {
		{
			code: "datetime_range", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "temporal column spanning a fixed range", append(coverageFacts(p),
					Fact{Key: "earliest", Value: p.MinValue},
					Fact{Key: "latest", Value: p.MaxValue})
			},
		},
		{
			code: "datetime_parse_gap", kind: FindingPrecaution, weight: 40,
			when: func(p ColumnProfile, _ Options) bool {
				return p.Kind != dataset.KindDatetime && p.DatetimeRatio < 1
			},
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "some values do not parse as dates", []Fact{
					{Key: "parsed_share", Value: fmtPct(p.DatetimeRatio)},
				}
			},
		},
		{
			code: "datetime_features", kind: FindingSuggestion,
			build: func(ColumnProfile, Options) (string, []Fact) {
				return "derive calendar parts (year, month, weekday) for grouping and trends", nil
			},
		},
	},
	CategoryContinuous: {
		{
			code: "numeric_summary", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				facts := coverageFacts(p)
				if p.Numeric != nil {
					facts = append(facts,
						Fact{Key: "min", Value: fmtFloat(p.Numeric.Min)},
						Fact{Key: "max", Value: fmtFloat(p.Numeric.Max)},
						Fact{Key: "mean", Value: fmtFloat(p.Numeric.Mean)},
						Fact{Key: "std", Value: fmtFloat(p.Numeric.Std)},
					)
				}
				return "continuous numeric measure", facts
			},
		},
		{
			code: "numeric_outliers", kind: FindingPrecaution, weight: 60,
			when: func(p ColumnProfile, _ Options) bool {
				return p.Numeric != nil && p.Numeric.Outliers > 0
			},
			build: func(p ColumnProfile, opt Options) (string, []Fact) {
				return "robust z-scores flag outlying values", []Fact{
					{Key: "outliers", Value: fmtInt(p.Numeric.Outliers)},
					{Key: "max_abs_z", Value: fmtFloat(p.Numeric.MaxAbsZ)},
					{Key: "threshold", Value: fmtFloat(opt.OutlierThreshold)},
				}
			},
		},
		{
			code: "numeric_scaling", kind: FindingSuggestion,
			build: func(ColumnProfile, Options) (string, []Fact) {
				return "standardize or min-max scale before distance-based modeling", nil
			},
		},
	},
	CategoryCategorical: {
		{
			code: "category_breakdown", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				facts := coverageFacts(p)
				for i, tv := range p.TopValues {
					facts = append(facts, Fact{Key: "top_" + fmtInt(i+1), Value: fmt.Sprintf("%s (%d)", tv.Value, tv.Count)})
				}
				return "low-cardinality column holding repeated labels", facts
			},
		},
		{
			code: "category_imbalance", kind: FindingObservation, weight: 10,
			when: func(p ColumnProfile, _ Options) bool {
				return p.Distinct > 1 && dominantShare(p) >= 0.8
			},
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "one label dominates the distribution", []Fact{
					{Key: "dominant_value", Value: p.TopValues[0].Value},
					{Key: "dominant_share", Value: fmtPct(dominantShare(p))},
				}
			},
		},
		{
			code: "category_encode", kind: FindingSuggestion,
			build: func(ColumnProfile, Options) (string, []Fact) {
				return "one-hot or frequency encode the labels for modeling", nil
			},
		},
	},
	CategoryFreeText: {
		{
			code: "text_profile", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "free-form text entries", append(coverageFacts(p),
					Fact{Key: "avg_length", Value: fmtFloat(p.AvgLen)},
					Fact{Key: "max_length", Value: fmtInt(p.MaxLen)})
			},
		},
		{
			code: "text_normalize", kind: FindingSuggestion,
			build: func(ColumnProfile, Options) (string, []Fact) {
				return "lowercase, strip punctuation, and tokenize before text analysis", nil
			},
		},
	},
	CategoryUnknown: {
		{
			code: "empty_column", kind: FindingPrecaution, weight: 100,
			when: func(p ColumnProfile, _ Options) bool { return p.NonNull() == 0 },
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				return "column is entirely empty", []Fact{
					{Key: "rows", Value: fmtInt(p.Rows)},
				}
			},
		},
		{
			code: "unresolved_type", kind: FindingObservation,
			build: func(p ColumnProfile, _ Options) (string, []Fact) {
				if p.NonNull() == 0 {
					return "no non-null values to characterize", coverageFacts(p)
				}
				return "values do not fit a single semantic shape", append(coverageFacts(p), sampleFact(p))
			},
		},
		{
			code: "unknown_review", kind: FindingSuggestion,
			when: func(p ColumnProfile, _ Options) bool { return p.NonNull() > 0 },
			build: func(ColumnProfile, Options) (string, []Fact) {
				return "review the source extraction; mixed shapes often point at an upstream export defect", nil
			},
		},
	},
}

// commonTemplates run for every column after its category templates.
var commonTemplates = []findingTemplate{
	{
		code: "high_nulls", kind: FindingPrecaution, weight: 90,
		when: func(p ColumnProfile, opt Options) bool {
			return p.NonNull() > 0 && opt.HighNullRatio > 0 && p.NullRatio >= opt.HighNullRatio
		},
		build: func(p ColumnProfile, _ Options) (string, []Fact) {
			return "a large share of values is missing", []Fact{
				{Key: "missing_rows", Value: fmtInt(p.Nulls)},
				{Key: "missing_share", Value: fmtPct(p.NullRatio)},
			}
		},
	},
	{
		code: "constant_column", kind: FindingObservation, weight: 50,
		when: func(p ColumnProfile, _ Options) bool {
			return p.Distinct == 1 && p.NonNull() > 0
		},
		build: func(p ColumnProfile, _ Options) (string, []Fact) {
			return "every non-null value is identical", []Fact{
				{Key: "value", Value: p.Sample[0]},
			}
		},
	},
}
