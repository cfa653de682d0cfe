package payments

import (
	"strconv"
	"strings"

	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// ClassifyCard derives the issuing network and the last four digits from a
// raw card number. Classification is purely prefix-based (BIN ranges); no
// network lookup and no storage of the full number ever happens.
func ClassifyCard(number string) (enums.CardBrand, string) {
	normalized := normalizeCardNumber(number)
	last4 := normalized
	if len(normalized) > 4 {
		last4 = normalized[len(normalized)-4:]
	}
	return classifyBIN(normalized), last4
}

func normalizeCardNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func classifyBIN(number string) enums.CardBrand {
	if number == "" {
		return enums.CardBrandUnknown
	}
	if strings.HasPrefix(number, "4") {
		return enums.CardBrandVisa
	}
	if len(number) >= 2 {
		if twoDigit, err := strconv.Atoi(number[:2]); err == nil && twoDigit >= 51 && twoDigit <= 55 {
			return enums.CardBrandMastercard
		}
	}
	// newer Mastercard range introduced in 2017
	if len(number) >= 4 {
		if fourDigit, err := strconv.Atoi(number[:4]); err == nil && fourDigit >= 2221 && fourDigit <= 2720 {
			return enums.CardBrandMastercard
		}
	}
	return enums.CardBrandUnknown
}
