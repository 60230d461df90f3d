package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// FindingKind orders findings inside a section: precautions surface first,
// then observations, then suggestions.
type FindingKind string

const (
	FindingPrecaution  FindingKind = "precaution"
	FindingObservation FindingKind = "observation"
	FindingSuggestion  FindingKind = "suggestion"
)

func kindRank(k FindingKind) int {
	switch k {
	case FindingPrecaution:
		return 0
	case FindingObservation:
		return 1
	case FindingSuggestion:
		return 2
	default:
		return 3
	}
}

// Fact is one key/value pair of a finding's structured payload. A slice of
// pairs keeps payload order stable where a map would not.
type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Finding is a single structured statement about a column or the dataset.
type Finding struct {
	Code    string      `json:"code"`
	Kind    FindingKind `json:"kind"`
	Summary string      `json:"summary"`
	Facts   []Fact      `json:"facts,omitempty"`
}

type scoredFinding struct {
	Finding
	rank   int
	weight int
	idx    int
}

func sortScored(picked []scoredFinding) []Finding {
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].rank != picked[j].rank {
			return picked[i].rank < picked[j].rank
		}
		if picked[i].weight != picked[j].weight {
			return picked[i].weight > picked[j].weight
		}
		return picked[i].idx < picked[j].idx
	})
	out := make([]Finding, len(picked))
	for i, s := range picked {
		out[i] = s.Finding
	}
	return out
}

// Synthesize turns a profile and its category into findings by walking the
// static template table. It is total: the baseline template of every
// category matches unconditionally, so no column comes back empty-handed.
func Synthesize(p ColumnProfile, cat Category, opt Options) []Finding {
	var picked []scoredFinding
	idx := 0
	walk := func(ts []findingTemplate) {
		for _, t := range ts {
			if t.when == nil || t.when(p, opt) {
				summary, facts := t.build(p, opt)
				picked = append(picked, scoredFinding{
					Finding: Finding{Code: t.code, Kind: t.kind, Summary: summary, Facts: facts},
					rank:    kindRank(t.kind),
					weight:  t.weight,
					idx:     idx,
				})
			}
			idx++
		}
	}
	walk(categoryTemplates[cat])
	walk(commonTemplates)
	return sortScored(picked)
}

// SynthesizeCross derives dataset-scope findings from already-computed
// profiles. It compares and groups; it never reprofiles values.
func SynthesizeCross(ds *dataset.Dataset, profiles []ColumnProfile, opt Options) []Finding {
	var picked []scoredFinding
	idx := 0
	add := func(code string, kind FindingKind, weight int, summary string, facts []Fact) {
		picked = append(picked, scoredFinding{
			Finding: Finding{Code: code, Kind: kind, Summary: summary, Facts: facts},
			rank:    kindRank(kind),
			weight:  weight,
			idx:     idx,
		})
		idx++
	}

	var cells, nulls int
	for _, p := range profiles {
		cells += p.Rows
		nulls += p.Nulls
	}
	if cells > 0 && opt.HighNullRatio > 0 {
		ratio := float64(nulls) / float64(cells)
		if ratio >= opt.HighNullRatio {
			add("dataset_missingness", FindingPrecaution, 90,
				"a substantial share of all cells is missing",
				[]Fact{
					{Key: "missing_cells", Value: strconv.Itoa(nulls)},
					{Key: "missing_share", Value: fmtPct(ratio)},
				})
		}
	}

	if pairs := duplicateColumnPairs(profiles); len(pairs) > 0 {
		add("duplicate_columns", FindingPrecaution, 40,
			"some columns carry identical statistics and samples and may be duplicates",
			[]Fact{{Key: "pairs", Value: strings.Join(pairs, "; ")}})
	}

	var constants []string
	for _, p := range profiles {
		if p.Distinct == 1 && p.NonNull() > 0 {
			constants = append(constants, p.Name)
		}
	}
	if len(constants) > 0 {
		add("constant_columns", FindingObservation, 50,
			"some columns never change value",
			[]Fact{{Key: "columns", Value: strings.Join(constants, ", ")}})
	}

	if ds.Truncated {
		add("ingestion_capped", FindingObservation, 30,
			"row ingestion stopped at the configured cap; statistics cover the loaded rows only",
			[]Fact{{Key: "rows_loaded", Value: strconv.Itoa(ds.Rows)}})
	}

	return sortScored(picked)
}

// duplicateColumnPairs reports column pairs whose kind, cardinality, null
// count, and sample all coincide.
func duplicateColumnPairs(profiles []ColumnProfile) []string {
	sig := make([]string, len(profiles))
	for i, p := range profiles {
		if p.NonNull() == 0 {
			continue
		}
		sig[i] = fmt.Sprintf("%s|%d|%d|%s", p.Kind, p.Distinct, p.Nulls, strings.Join(p.Sample, "\x1f"))
	}
	var pairs []string
	for i := range profiles {
		if sig[i] == "" {
			continue
		}
		for j := i + 1; j < len(profiles); j++ {
			if sig[j] != "" && sig[i] == sig[j] {
				pairs = append(pairs, profiles[i].Name+" ~ "+profiles[j].Name)
			}
		}
	}
	return pairs
}

func fmtInt(v int) string { return strconv.Itoa(v) }

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func fmtPct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }
