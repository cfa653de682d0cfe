package enums

import "fmt"

// Currency represents supported monetary denominations.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyBRL Currency = "BRL"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyBRL,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// Exponent returns the number of minor-unit digits for the currency.
func (c Currency) Exponent() int32 {
	// every supported fiat currency uses two minor-unit digits today
	return 2
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
