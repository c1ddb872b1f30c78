/**
 * @description
 * Display formatting helpers for the dashboard: currency amounts with
 * locale-aware digit grouping and compact follower counts. Both functions are
 * pure and deterministic for a given input.
 *
 * @dependencies
 * - golang.org/x/text/message: Locale-aware number formatting.
 */

package app

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/creatorhq/revenue-service/internal/domain"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount as its currency symbol followed by the
// grouped number, with the currency's fraction digits (JPY has none).
// Unknown codes fall back to the default currency.
func FormatMoney(amount float64, code string) string {
	currency, ok := domain.CurrencyByCode(code)
	if !ok {
		currency, _ = domain.CurrencyByCode(domain.DefaultCurrency)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	var formatted string
	if currency.FractionDigits == 0 {
		formatted = moneyPrinter.Sprintf("%.0f", amount)
	} else {
		formatted = moneyPrinter.Sprintf("%.2f", amount)
	}
	return sign + currency.Symbol + formatted
}

// FormatCount renders a follower count compactly: 1.2M, 45.3k, or the plain
// integer below a thousand.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}
