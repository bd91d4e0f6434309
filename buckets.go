package fundval

import (
	"fmt"
	"math"
	"strings"
)

// AnalysisPage is a spending category. The set is closed: budget totals are
// built by iterating AnalysisPages, never by discovering keys at runtime.
type AnalysisPage int

const (
	PageIncome AnalysisPage = iota
	PageBills
	PageFood
	PageGeneral
	PageHoliday
	PageSocial
)

// AnalysisPages lists every category.
var AnalysisPages = []AnalysisPage{PageIncome, PageBills, PageFood, PageGeneral, PageHoliday, PageSocial}

func (p AnalysisPage) String() string {
	switch p {
	case PageIncome:
		return "income"
	case PageBills:
		return "bills"
	case PageFood:
		return "food"
	case PageGeneral:
		return "general"
	case PageHoliday:
		return "holiday"
	case PageSocial:
		return "social"
	default:
		return fmt.Sprintf("page(%d)", int(p))
	}
}

// ParseAnalysisPage parses a category name.
func ParseAnalysisPage(s string) (AnalysisPage, error) {
	for _, p := range AnalysisPages {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return PageIncome, fmt.Errorf("unknown analysis page %q", s)
}

// MarshalText renders the page name, so buckets serialise with readable pages.
func (p AnalysisPage) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *AnalysisPage) UnmarshalText(b []byte) error {
	parsed, err := ParseAnalysisPage(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Bucket is one budget entry within a category. The bucket with an empty
// FilterCategory is the category's catch-all: it absorbs all spend not
// matched by a more specific filter. Exactly one catch-all must exist per
// category; that is a precondition owned by the bucket-creation flow.
type Bucket struct {
	ID             int64        `json:"id"`
	Page           AnalysisPage `json:"page"`
	FilterCategory string       `json:"filterCategory,omitempty"`
	ExpectedValue  float64      `json:"expectedValue"`
	ActualValue    float64      `json:"actualValue"`
}

// IsCatchAll reports whether the bucket absorbs unmatched spend.
func (b Bucket) IsCatchAll() bool { return b.FilterCategory == "" }

// InvestmentBucket is the budget target for net new investment.
type InvestmentBucket struct {
	ExpectedValue float64 `json:"expectedValue"`
	PurchaseValue float64 `json:"purchaseValue,omitempty"`
}

// ScaleExpectedValues multiplies per-month expected values up to the number
// of months in view. The input is not mutated.
func ScaleExpectedValues(buckets []Bucket, months int) []Bucket {
	out := make([]Bucket, len(buckets))
	for i, b := range buckets {
		b.ExpectedValue *= float64(months)
		out[i] = b
	}
	return out
}

// MoveBucketRemainderToCatchAll reallocates each category's underspend into
// its catch-all bucket: whatever the itemized buckets came in under budget is
// subtracted from the catch-all's apparent spend. Itemized buckets are never
// touched, so the category's total drops by the underspend moved off the
// catch-all. Each category's buckets come back catch-all first,
// itemized buckets in their original order, categories in order of first
// appearance.
//
// A category without a catch-all breaks the creation-flow precondition and
// is an error, never silently patched over.
func MoveBucketRemainderToCatchAll(buckets []Bucket) ([]Bucket, error) {
	var pages []AnalysisPage
	byPage := make(map[AnalysisPage][]Bucket)
	for _, b := range buckets {
		if _, ok := byPage[b.Page]; !ok {
			pages = append(pages, b.Page)
		}
		byPage[b.Page] = append(byPage[b.Page], b)
	}

	out := make([]Bucket, 0, len(buckets))
	for _, page := range pages {
		group := byPage[page]

		catchAll := -1
		var leftover float64
		for i, b := range group {
			if b.IsCatchAll() {
				if catchAll >= 0 {
					return nil, fmt.Errorf("page %s has more than one catch-all bucket", page)
				}
				catchAll = i
				continue
			}
			leftover += b.ExpectedValue - b.ActualValue
		}
		if catchAll < 0 {
			return nil, fmt.Errorf("page %s has no catch-all bucket", page)
		}
		leftover = math.Max(0, leftover)

		moved := group[catchAll]
		moved.ActualValue -= leftover
		out = append(out, moved)
		for i, b := range group {
			if i != catchAll {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// BudgetTotals holds one figure per category plus the funds target, which
// lives outside the bucket list.
type BudgetTotals struct {
	Pages map[AnalysisPage]float64 `json:"pages"`
	Funds float64                  `json:"funds"`
}

func sumForPage(buckets []Bucket, page AnalysisPage, value func(Bucket) float64) float64 {
	var sum float64
	for _, b := range buckets {
		if b.Page == page {
			sum += value(b)
		}
	}
	return sum
}

func totals(buckets []Bucket, funds float64, value func(Bucket) float64) BudgetTotals {
	t := BudgetTotals{Pages: make(map[AnalysisPage]float64, len(AnalysisPages)), Funds: funds}
	for _, page := range AnalysisPages {
		t.Pages[page] = sumForPage(buckets, page, value)
	}
	return t
}

// ExpectedTotals sums the budgeted value per category, with the investment
// bucket's target as the funds figure.
func ExpectedTotals(buckets []Bucket, investment InvestmentBucket) BudgetTotals {
	return totals(buckets, investment.ExpectedValue, func(b Bucket) float64 { return b.ExpectedValue })
}

// ActualTotals sums the recorded value per category. The actual investment
// figure is capped at zero from below: disinvestment does not free budget.
func ActualTotals(buckets []Bucket, actualInvested float64) BudgetTotals {
	return totals(buckets, math.Max(0, actualInvested), func(b Bucket) float64 { return b.ActualValue })
}

// NonIncome sums everything except the income category.
func (t BudgetTotals) NonIncome() float64 {
	sum := t.Funds
	for _, page := range AnalysisPages {
		if page != PageIncome {
			sum += t.Pages[page]
		}
	}
	return sum
}

// HealthStatus derives the budget's pass/fail signal. Over-budgeting beats
// overspending in the report; a healthy budget has empty text.
func HealthStatus(expected, actual BudgetTotals) (healthy bool, text string) {
	if nonIncome := expected.NonIncome(); nonIncome >= expected.Pages[PageIncome] {
		return false, fmt.Sprintf("Budget exceeds income by %s", AbbreviateGBP(nonIncome-expected.Pages[PageIncome]))
	}
	if nonIncome := actual.NonIncome(); nonIncome >= actual.Pages[PageIncome] {
		return false, fmt.Sprintf("Overspent by %s", AbbreviateGBP(nonIncome-actual.Pages[PageIncome]))
	}
	return true, ""
}
