/**
 * @description
 * Pure aggregation functions turning a creator's transaction list into the
 * dashboard's revenue analytics: monthly time series, per-category breakdown,
 * month-over-month growth and averages. Everything here is deterministic and
 * side-effect free; the store is never touched.
 */

package app

import (
	"sort"
	"time"

	"github.com/creatorhq/revenue-service/internal/domain"
)

// MonthlyBucket is one month of summed revenue. Key is "YYYY-MM"; Label is
// the short month name used by dashboard charts.
type MonthlyBucket struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// CategoryBucket is the summed revenue for one transaction category.
type CategoryBucket struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// AnalyticsSummary is the full payload returned by the analytics endpoint.
type AnalyticsSummary struct {
	Range             string           `json:"range"`
	Monthly           []MonthlyBucket  `json:"monthly"`
	Categories        []CategoryBucket `json:"categories"`
	Total             float64          `json:"total"`
	Currency          string           `json:"currency"`
	TotalDisplay      string           `json:"total_display"`
	GrowthRate        float64          `json:"growth_rate"`
	AvgPerActiveMonth float64          `json:"avg_per_active_month"`
	TopCategory       string           `json:"top_category"`
}

// BuildSummary aggregates transactions into the analytics summary. window is
// the number of trailing months to keep; 0 means no limit. Category sums,
// totals and averages are computed over the same trailing window as the
// monthly series so the payload is internally consistent.
func BuildSummary(txs []domain.Transaction, window int) *AnalyticsSummary {
	monthly := MonthlySeries(txs, window)

	var windowed []domain.Transaction
	if window > 0 && len(monthly) > 0 {
		cutoff := monthly[0].Key
		for _, tx := range txs {
			if monthKey(tx.Date) >= cutoff {
				windowed = append(windowed, tx)
			}
		}
	} else {
		windowed = txs
	}

	categories := CategorySeries(windowed)

	var total float64
	for _, bucket := range monthly {
		total += bucket.Total
	}

	topCategory := ""
	if len(categories) > 0 {
		topCategory = categories[0].Category
	}

	avg := 0.0
	if len(monthly) > 0 {
		avg = total / float64(len(monthly))
	}

	return &AnalyticsSummary{
		Monthly:           monthly,
		Categories:        categories,
		Total:             total,
		GrowthRate:        GrowthRate(monthly),
		AvgPerActiveMonth: avg,
		TopCategory:       topCategory,
	}
}

// MonthlySeries groups transactions by calendar month, sums each bucket and
// returns the trailing `window` buckets in chronological order. Months with
// no transactions are absent; there is no zero-fill.
func MonthlySeries(txs []domain.Transaction, window int) []MonthlyBucket {
	sums := make(map[string]float64)
	for _, tx := range txs {
		sums[monthKey(tx.Date)] += tx.Amount
	}
	if len(sums) == 0 {
		return nil
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if window > 0 && len(keys) > window {
		keys = keys[len(keys)-window:]
	}

	buckets := make([]MonthlyBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, MonthlyBucket{
			Key:   key,
			Label: monthLabel(key),
			Total: sums[key],
		})
	}
	return buckets
}

// CategorySeries sums transactions per category, ordered by total descending.
// Ties keep the order in which the categories were first encountered.
func CategorySeries(txs []domain.Transaction) []CategoryBucket {
	sums := make(map[string]float64)
	var order []string
	for _, tx := range txs {
		if _, seen := sums[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		sums[tx.Category] += tx.Amount
	}
	if len(order) == 0 {
		return nil
	}

	buckets := make([]CategoryBucket, 0, len(order))
	for _, category := range order {
		buckets = append(buckets, CategoryBucket{Category: category, Total: sums[category]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Total > buckets[j].Total
	})
	return buckets
}

// GrowthRate returns the percentage change between the last two monthly
// buckets. A zero previous month reads as 100% growth when the current month
// has revenue, 0% otherwise. Fewer than two buckets yields 0.
func GrowthRate(monthly []MonthlyBucket) float64 {
	if len(monthly) < 2 {
		return 0
	}
	prev := monthly[len(monthly)-2].Total
	cur := monthly[len(monthly)-1].Total
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return (cur - prev) / prev * 100
}

func monthKey(date time.Time) string {
	return date.UTC().Format("2006-01")
}

func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Month().String()[:3]
}
