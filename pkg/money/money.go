// Package money provides integer minor-unit currency arithmetic for billing.
//
// All amounts inside the engine are int64 kobo (1/100 NGN). Floating point is
// never used for aggregation; conversion to display currency happens only at
// presentation boundaries.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Amount is a currency amount in minor units (kobo).
type Amount int64

// DefaultCurrency is the ISO code the engine bills in.
const DefaultCurrency = "NGN"

// MinorUnitsPerMajor is the number of minor units in one major unit.
const MinorUnitsPerMajor = 100

// FromMajor converts whole major units (naira) to an Amount.
func FromMajor(major int64) Amount {
	return Amount(major * MinorUnitsPerMajor)
}

// Major returns the truncated major-unit part of the amount.
func (a Amount) Major() int64 {
	return int64(a) / MinorUnitsPerMajor
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// String formats the amount as "NGN 1,234.56" for logs and receipts.
func (a Amount) String() string {
	return Format(a, DefaultCurrency)
}

// Format renders an amount in major units with thousands separators.
func Format(a Amount, currency string) string {
	neg := a < 0
	if neg {
		a = -a
	}
	major := int64(a) / MinorUnitsPerMajor
	minor := int64(a) % MinorUnitsPerMajor

	digits := strconv.FormatInt(major, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%s %s.%02d", sign, currency, b.String(), minor)
}

// TaxBasisPoints applies a basis-point tax rate with half-up rounding.
// 1000 basis points = 10%.
func TaxBasisPoints(subtotal Amount, basisPoints int64) Amount {
	if subtotal <= 0 || basisPoints <= 0 {
		return 0
	}
	raw := int64(subtotal) * basisPoints
	return Amount((raw + 5000) / 10000)
}

// ParseMajorString parses a gateway-style decimal string ("1520.00") into
// minor units. Gateways report amounts as decimals; our records are kobo.
func ParseMajorString(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	parts := strings.SplitN(s, ".", 2)
	major, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	var minor int64
	if len(parts) == 2 {
		frac := parts[1]
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		minor, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}

	total := major*MinorUnitsPerMajor + minor
	if neg {
		total = -total
	}
	return Amount(total), nil
}

// MajorString renders an amount as a plain decimal string ("1520.00") for
// gateway requests.
func (a Amount) MajorString() string {
	neg := a < 0
	if neg {
		a = -a
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, int64(a)/MinorUnitsPerMajor, int64(a)%MinorUnitsPerMajor)
}
