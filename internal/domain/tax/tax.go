// Package tax converts between tax-inclusive and tax-exclusive prices for the
// supported purchase tax classes.
package tax

import (
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Class is a purchase tax class
type Class string

const (
	ClassStandard  Class = "16%"
	ClassZeroRated Class = "zero_rated"
	ClassExempted  Class = "exempted"
)

// MoneyScale is the number of decimal places money is persisted with
const MoneyScale int32 = 2

var standardRate = decimal.NewFromFloat(0.16)

// IsValid checks if the class is one of the supported classes
func (c Class) IsValid() bool {
	switch c {
	case ClassStandard, ClassZeroRated, ClassExempted:
		return true
	}
	return false
}

func (c Class) String() string {
	return string(c)
}

// AllClasses returns the supported classes
func AllClasses() []Class {
	return []Class{ClassStandard, ClassZeroRated, ClassExempted}
}

// ParseClass validates and converts a raw class string
func ParseClass(raw string) (Class, error) {
	c := Class(raw)
	if !c.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("unsupported tax class %q", raw))
	}
	return c, nil
}

// RateFor returns the tax rate of the class. Zero-rated and exempted are both 0.
func RateFor(c Class) decimal.Decimal {
	if c == ClassStandard {
		return standardRate
	}
	return decimal.Zero
}

// ExclusiveFromInclusive removes tax from a tax-inclusive unit price.
// The result is not rounded.
func ExclusiveFromInclusive(inclusive decimal.Decimal, c Class) (decimal.Decimal, error) {
	if inclusive.IsNegative() {
		return decimal.Zero, shared.NewValidationError("price cannot be negative")
	}
	return inclusive.Div(decimal.NewFromInt(1).Add(RateFor(c))), nil
}

// InclusiveFromExclusive applies the class rate to a tax-exclusive price
func InclusiveFromExclusive(exclusive decimal.Decimal, c Class) (decimal.Decimal, error) {
	if exclusive.IsNegative() {
		return decimal.Zero, shared.NewValidationError("price cannot be negative")
	}
	return exclusive.Mul(decimal.NewFromInt(1).Add(RateFor(c))), nil
}

// TaxAmount is the tax contained in quantity units bought at a tax-inclusive price
func TaxAmount(inclusive decimal.Decimal, quantity int64, c Class) (decimal.Decimal, error) {
	if quantity < 0 {
		return decimal.Zero, shared.NewValidationError("quantity cannot be negative")
	}
	exclusive, err := ExclusiveFromInclusive(inclusive, c)
	if err != nil {
		return decimal.Zero, err
	}
	return inclusive.Sub(exclusive).Mul(decimal.NewFromInt(quantity)), nil
}

// LineTotalInclusive is quantity times the tax-inclusive unit price
func LineTotalInclusive(quantity int64, inclusive decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 0 {
		return decimal.Zero, shared.NewValidationError("quantity cannot be negative")
	}
	if inclusive.IsNegative() {
		return decimal.Zero, shared.NewValidationError("price cannot be negative")
	}
	return inclusive.Mul(decimal.NewFromInt(quantity)), nil
}

// RoundMoney rounds half-up to the persisted money scale
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
