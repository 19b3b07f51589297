package types

import (
	"github.com/shopspring/decimal"
)

// Number is a decimal value which serializes to a bare JSON number instead of
// the quoted string produced by decimal.Decimal, matching what FTX expects in
// request bodies.
type Number decimal.Decimal

// NewNumber parses a decimal string into a Number
func NewNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, err
	}
	return Number(d), nil
}

// NumberFromFloat returns a Number from a float64
func NumberFromFloat(f float64) Number {
	return Number(decimal.NewFromFloat(f))
}

// Decimal returns the underlying decimal
func (n Number) Decimal() decimal.Decimal { return decimal.Decimal(n) }

// IsZero reports whether the number is zero
func (n Number) IsZero() bool { return n.Decimal().IsZero() }

// String returns the shortest decimal representation
func (n Number) String() string { return n.Decimal().String() }

// MarshalJSON serializes the number as a bare JSON number
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalJSON deserializes a JSON number or numeric string
func (n *Number) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = Number(d)
	return nil
}
