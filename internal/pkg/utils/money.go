package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const minorUnitExponent = 2

// FormatMinorUnits renders an amount stored in minor units as a fixed two-decimal string.
func FormatMinorUnits(amount int64) string {
	return decimal.New(amount, -minorUnitExponent).StringFixed(minorUnitExponent)
}

func MinorUnitsToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -minorUnitExponent)
}

// DecimalToMinorUnits rejects values with sub-minor precision instead of rounding them.
func DecimalToMinorUnits(amount decimal.Decimal) (int64, error) {
	scaled := amount.Shift(minorUnitExponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount.String(), minorUnitExponent)
	}
	return scaled.IntPart(), nil
}

// ParseMinorUnits parses a decimal string such as "500.00" into minor units.
func ParseMinorUnits(value string) (int64, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	return DecimalToMinorUnits(amount)
}
