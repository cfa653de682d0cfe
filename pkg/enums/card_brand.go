package enums

// CardBrand identifies the issuing network derived from a card number's BIN.
type CardBrand string

const (
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandUnknown    CardBrand = "unknown"
)

// String implements fmt.Stringer.
func (c CardBrand) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CardBrand.
func (c CardBrand) IsValid() bool {
	switch c {
	case CardBrandVisa, CardBrandMastercard, CardBrandUnknown:
		return true
	default:
		return false
	}
}
