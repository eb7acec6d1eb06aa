package deposit

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// ToUnits converts a human-readable decimal amount to the token's
// smallest-unit integer form, exactly. An amount with more precision than
// the token carries is a caller bug, not something to round away, so it
// fails with domain.ErrFractionalUnits unless the excess digits are zero.
func ToUnits(amount string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, fmt.Errorf("deposit: empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("deposit: negative amount %q", amount)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("deposit: malformed amount %q", amount)
	}

	if len(fracPart) > decimals {
		if strings.Trim(fracPart[decimals:], "0") != "" {
			return nil, fmt.Errorf("deposit: %q at %d decimals: %w", amount, decimals, domain.ErrFractionalUnits)
		}
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	units, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("deposit: malformed amount %q", amount)
	}
	return units, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
