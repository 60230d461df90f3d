package analysis

import "time"

// Options controls profiling, classification, and finding synthesis.
type Options struct {
	// SampleValues caps the distinct values kept per column profile,
	// in first-encountered order.
	SampleValues int
	// TopValues caps the most frequent values kept per column profile.
	TopValues int
	// SampleRows determines how many example rows the outline includes.
	SampleRows int
	// CategoricalMaxDistinct marks a column categorical when its distinct
	// count stays at or below this.
	CategoricalMaxDistinct int
	// CategoricalMaxRatio marks a column categorical when distinct/non-null
	// stays at or below this.
	CategoricalMaxRatio float64
	// ContinuousMinDistinct marks a numeric column continuous above this
	// distinct count.
	ContinuousMinDistinct int
	// ContinuousMinRatio marks a numeric column continuous above this
	// distinct/non-null ratio.
	ContinuousMinRatio float64
	// FreeTextMinAvgLen marks a string column free text at or above this
	// average length.
	FreeTextMinAvgLen float64
	// DatetimeMinRatio is the share of non-null values that must parse as
	// dates for an untyped column to classify as datetime.
	DatetimeMinRatio float64
	// HighNullRatio triggers the missing-data precaution.
	HighNullRatio float64
	// OutlierThreshold counts numeric values with robust |z| above it.
	OutlierThreshold float64
	// Workers > 1 profiles columns in parallel. Output order never changes.
	Workers int
	// Title overrides the outline title. Empty means "Analysis of <source>".
	Title string
	// Now supplies the outline timestamp; nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		SampleValues:           10,
		TopValues:              5,
		SampleRows:             5,
		CategoricalMaxDistinct: 20,
		CategoricalMaxRatio:    0.05,
		ContinuousMinDistinct:  25,
		ContinuousMinRatio:     0.6,
		FreeTextMinAvgLen:      40,
		DatetimeMinRatio:       0.9,
		HighNullRatio:          0.1,
		OutlierThreshold:       3.5,
		Workers:                1,
	}
}
