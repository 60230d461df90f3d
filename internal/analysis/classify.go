package analysis

import (
	"regexp"
	"strings"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// Category is the semantic class assigned to a column.
type Category string

const (
	CategoryIdentifier  Category = "identifier"
	CategoryCategorical Category = "categorical"
	CategoryContinuous  Category = "continuous"
	CategoryDatetime    Category = "datetime"
	CategoryBooleanFlag Category = "boolean_flag"
	CategoryFreeText    Category = "free_text"
	CategoryUnknown     Category = "unknown"
)

// Categories lists every category in rule order, for reports and tests.
func Categories() []Category {
	return []Category{
		CategoryIdentifier, CategoryBooleanFlag, CategoryDatetime,
		CategoryContinuous, CategoryCategorical, CategoryFreeText,
		CategoryUnknown,
	}
}

type classifyRule struct {
	name     string
	category Category
	match    func(p ColumnProfile, opt Options) bool
}

// classifyRules is evaluated top to bottom; the first match wins. An empty
// column short-circuits to unknown before any shape rule runs, and a
// two-valued column lands on boolean_flag before categorical can claim it.
var classifyRules = []classifyRule{
	{name: "empty", category: CategoryUnknown, match: isEmpty},
	{name: "identifier", category: CategoryIdentifier, match: isIdentifier},
	{name: "boolean_flag", category: CategoryBooleanFlag, match: isBooleanFlag},
	{name: "datetime", category: CategoryDatetime, match: isDatetime},
	{name: "continuous", category: CategoryContinuous, match: isContinuous},
	{name: "categorical", category: CategoryCategorical, match: isCategorical},
	{name: "free_text", category: CategoryFreeText, match: isFreeText},
}

// Classify assigns exactly one category to a profile. It is total and
// deterministic: no error path, and the same profile always yields the same
// category.
func Classify(p ColumnProfile, opt Options) Category {
	for _, r := range classifyRules {
		if r.match(p, opt) {
			return r.category
		}
	}
	return CategoryUnknown
}

func isEmpty(p ColumnProfile, _ Options) bool {
	return p.NonNull() == 0
}

var idNameRe = regexp.MustCompile(`^(id|uuid|guid|key)$|^id[_-]|[_-](id|uuid|guid|key)$`)

func isIdentifier(p ColumnProfile, _ Options) bool {
	if idNameRe.MatchString(normalizeName(p.Name)) {
		return true
	}
	// Uniqueness route: every value distinct and shaped like a key.
	// Requiring more than two distinct values keeps tiny binary columns out,
	// and the kind gate keeps all-distinct measurements (floats) out.
	if p.Distinct == p.NonNull() && p.Distinct > 2 {
		return p.Kind == dataset.KindInteger || (p.Kind == dataset.KindString && p.IDShaped)
	}
	return false
}

func isBooleanFlag(p ColumnProfile, _ Options) bool {
	if p.Kind == dataset.KindBoolean {
		return true
	}
	// Two-valued string or integer columns are flags whatever the labels,
	// so active/inactive and Y/N land here rather than on categorical.
	if p.Kind != dataset.KindString && p.Kind != dataset.KindInteger {
		return false
	}
	return p.Distinct > 0 && p.Distinct <= 2
}

func isDatetime(p ColumnProfile, opt Options) bool {
	if p.Kind == dataset.KindDatetime {
		return true
	}
	return p.DatetimeRatio > 0 && p.DatetimeRatio >= opt.DatetimeMinRatio
}

func isContinuous(p ColumnProfile, opt Options) bool {
	if p.Kind != dataset.KindInteger && p.Kind != dataset.KindFloat {
		return false
	}
	nonNull := p.NonNull()
	if nonNull == 0 {
		return false
	}
	if p.Distinct > opt.ContinuousMinDistinct {
		return true
	}
	return float64(p.Distinct)/float64(nonNull) > opt.ContinuousMinRatio
}

func isCategorical(p ColumnProfile, opt Options) bool {
	nonNull := p.NonNull()
	if nonNull == 0 {
		return false
	}
	// Long text never counts as categorical, whatever its cardinality.
	if p.Kind == dataset.KindString && p.AvgLen >= opt.FreeTextMinAvgLen {
		return false
	}
	if p.Distinct <= opt.CategoricalMaxDistinct {
		return true
	}
	return float64(p.Distinct)/float64(nonNull) <= opt.CategoricalMaxRatio
}

func isFreeText(p ColumnProfile, opt Options) bool {
	return p.Kind == dataset.KindString && p.AvgLen >= opt.FreeTextMinAvgLen
}

func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
