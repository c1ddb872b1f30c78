package domain

// Currency is one entry in the fixed display-currency table offered by the
// dashboard settings view.
type Currency struct {
	Code           string `json:"code"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	FractionDigits int    `json:"fraction_digits"`
}

// Currencies is the fixed list of supported display currencies.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", FractionDigits: 2},
	{Code: "EUR", Symbol: "€", Name: "Euro", FractionDigits: 2},
	{Code: "GBP", Symbol: "£", Name: "British Pound", FractionDigits: 2},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", FractionDigits: 0},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", FractionDigits: 2},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", FractionDigits: 2},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", FractionDigits: 2},
	{Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", FractionDigits: 2},
}

// DefaultCurrency is used when a user has no stored preference.
const DefaultCurrency = "USD"

// CurrencyByCode looks up a currency in the fixed table. The boolean is false
// when the code is not supported.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// ValidCurrency reports whether code appears in the fixed currency table.
func ValidCurrency(code string) bool {
	_, ok := CurrencyByCode(code)
	return ok
}
