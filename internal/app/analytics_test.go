package app

import (
	"math"
	"testing"
	"time"

	"github.com/creatorhq/revenue-service/internal/domain"
)

func tx(amount float64, category, date string) domain.Transaction {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return domain.Transaction{
		Amount:   amount,
		Category: category,
		Date:     parsed,
		Status:   domain.TransactionCompleted,
	}
}

func TestMonthlySeries_GroupsAndOrders(t *testing.T) {
	txs := []domain.Transaction{
		tx(100, domain.CategoryBrandDeal, "2025-01-15"),
		tx(200, domain.CategoryAdRevenue, "2025-02-03"),
		tx(50, domain.CategoryBrandDeal, "2025-02-20"),
	}

	monthly := MonthlySeries(txs, 0)
	if len(monthly) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(monthly))
	}
	if monthly[0].Key != "2025-01" || monthly[0].Total != 100 {
		t.Fatalf("unexpected first bucket: %+v", monthly[0])
	}
	if monthly[1].Key != "2025-02" || monthly[1].Total != 250 {
		t.Fatalf("unexpected second bucket: %+v", monthly[1])
	}
	if monthly[0].Label != "Jan" || monthly[1].Label != "Feb" {
		t.Fatalf("unexpected labels: %q %q", monthly[0].Label, monthly[1].Label)
	}
}

func TestMonthlySeries_TrailingWindow(t *testing.T) {
	var txs []domain.Transaction
	months := []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01", "2024-05-01", "2024-06-01", "2024-07-01", "2024-08-01"}
	for _, m := range months {
		txs = append(txs, tx(10, domain.CategoryOther, m))
	}

	monthly := MonthlySeries(txs, 6)
	if len(monthly) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(monthly))
	}
	if monthly[0].Key != "2024-03" {
		t.Fatalf("expected window to start at 2024-03, got %s", monthly[0].Key)
	}
	if monthly[5].Key != "2024-08" {
		t.Fatalf("expected window to end at 2024-08, got %s", monthly[5].Key)
	}
}

func TestMonthlySeries_NoZeroFill(t *testing.T) {
	txs := []domain.Transaction{
		tx(100, domain.CategoryBrandDeal, "2025-01-15"),
		tx(100, domain.CategoryBrandDeal, "2025-04-15"),
	}

	monthly := MonthlySeries(txs, 0)
	if len(monthly) != 2 {
		t.Fatalf("expected gaps to stay absent, got %d buckets", len(monthly))
	}
}

func TestCategorySeries_SortsDescWithStableTies(t *testing.T) {
	txs := []domain.Transaction{
		tx(50, domain.CategoryAffiliate, "2025-01-01"),
		tx(300, domain.CategoryBrandDeal, "2025-01-02"),
		tx(50, domain.CategoryAdRevenue, "2025-01-03"),
	}

	categories := CategorySeries(txs)
	if len(categories) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(categories))
	}
	if categories[0].Category != domain.CategoryBrandDeal {
		t.Fatalf("expected Brand Deal first, got %s", categories[0].Category)
	}
	// Affiliate and Ad Revenue tie at 50; Affiliate appeared first.
	if categories[1].Category != domain.CategoryAffiliate || categories[2].Category != domain.CategoryAdRevenue {
		t.Fatalf("tie order not stable: %s then %s", categories[1].Category, categories[2].Category)
	}
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name    string
		monthly []MonthlyBucket
		want    float64
	}{
		{
			name:    "normal growth",
			monthly: []MonthlyBucket{{Total: 100}, {Total: 250}},
			want:    150,
		},
		{
			name:    "decline",
			monthly: []MonthlyBucket{{Total: 200}, {Total: 100}},
			want:    -50,
		},
		{
			name:    "zero previous with revenue",
			monthly: []MonthlyBucket{{Total: 0}, {Total: 80}},
			want:    100,
		},
		{
			name:    "zero previous without revenue",
			monthly: []MonthlyBucket{{Total: 0}, {Total: 0}},
			want:    0,
		},
		{
			name:    "single bucket",
			monthly: []MonthlyBucket{{Total: 100}},
			want:    0,
		},
		{
			name:    "empty",
			monthly: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthRate(tt.monthly)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected growth %f, got %f", tt.want, got)
			}
		})
	}
}

func TestBuildSummary_Conservation(t *testing.T) {
	txs := []domain.Transaction{
		tx(100, domain.CategoryBrandDeal, "2025-01-15"),
		tx(200, domain.CategoryAdRevenue, "2025-02-03"),
		tx(50, domain.CategoryBrandDeal, "2025-02-20"),
		tx(25, domain.CategoryOther, "2025-03-01"),
	}

	summary := BuildSummary(txs, 0)

	var monthlySum, categorySum float64
	for _, b := range summary.Monthly {
		monthlySum += b.Total
	}
	for _, b := range summary.Categories {
		categorySum += b.Total
	}
	if math.Abs(monthlySum-375) > 1e-9 || math.Abs(categorySum-375) > 1e-9 || math.Abs(summary.Total-375) > 1e-9 {
		t.Fatalf("sums diverge: monthly=%f categories=%f total=%f", monthlySum, categorySum, summary.Total)
	}
	if summary.TopCategory != domain.CategoryAdRevenue {
		t.Fatalf("expected top category Ad Revenue, got %s", summary.TopCategory)
	}
	if math.Abs(summary.AvgPerActiveMonth-125) > 1e-9 {
		t.Fatalf("expected avg per active month 125, got %f", summary.AvgPerActiveMonth)
	}
}

func TestBuildSummary_WindowRestrictsCategories(t *testing.T) {
	txs := []domain.Transaction{
		tx(1000, domain.CategoryDigitalProduct, "2024-01-01"),
		tx(500, domain.CategoryAffiliate, "2024-02-01"),
	}
	// Six more recent months push the first two buckets out of the window.
	months := []string{"2024-03-15", "2024-04-15", "2024-05-15", "2024-06-15", "2024-07-15", "2024-08-15"}
	for _, m := range months {
		txs = append(txs, tx(50, domain.CategoryBrandDeal, m))
	}

	summary := BuildSummary(txs, 6)
	if math.Abs(summary.Total-300) > 1e-9 {
		t.Fatalf("expected windowed total 300, got %f", summary.Total)
	}
	for _, b := range summary.Categories {
		if b.Category == domain.CategoryDigitalProduct {
			t.Fatalf("category outside window leaked into summary")
		}
	}
}

func TestBuildSummary_Empty(t *testing.T) {
	summary := BuildSummary(nil, 6)
	if summary.Total != 0 || summary.GrowthRate != 0 || summary.AvgPerActiveMonth != 0 {
		t.Fatalf("expected zero-valued summary, got %+v", summary)
	}
	if len(summary.Monthly) != 0 || len(summary.Categories) != 0 {
		t.Fatalf("expected empty series, got %+v", summary)
	}
	if summary.TopCategory != "" {
		t.Fatalf("expected empty top category, got %q", summary.TopCategory)
	}
}
