package app

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"usd with grouping", 1234.5, "USD", "$1,234.50"},
		{"usd small", 7.25, "USD", "$7.25"},
		{"eur", 999999.99, "EUR", "€999,999.99"},
		{"gbp", 0, "GBP", "£0.00"},
		{"jpy has no fraction digits", 1234.56, "JPY", "¥1,235"},
		{"ngn", 250000, "NGN", "₦250,000.00"},
		{"negative", -1234.5, "USD", "-$1,234.50"},
		{"unknown code falls back to usd", 10, "XXX", "$10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoney(tt.amount, tt.code)
			if got != tt.want {
				t.Fatalf("FormatMoney(%f, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatMoney_Deterministic(t *testing.T) {
	first := FormatMoney(98765.43, "USD")
	for i := 0; i < 10; i++ {
		if got := FormatMoney(98765.43, "USD"); got != first {
			t.Fatalf("formatting is not deterministic: %q vs %q", got, first)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{45321, "45.3k"},
		{999999, "1000.0k"},
		{1000000, "1.0M"},
		{2450000, "2.5M"},
	}

	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Fatalf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
