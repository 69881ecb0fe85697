package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal wraps apd.Decimal so prices never travel through binary floats
// once they enter the domain layer.
type Decimal struct {
	apd.Decimal
}

// DefaultContext is used for arithmetic and rounding operations.
var DefaultContext = apd.BaseContext.WithPrecision(20)

// Zero constant for convenience
var Zero = NewDecimalFromInt(0)

// NewDecimalFromInt creates a Decimal from an int64
func NewDecimalFromInt(v int64) Decimal {
	d := Decimal{}
	d.SetInt64(v)
	return d
}

// NewDecimalFromString creates a Decimal from a string
func NewDecimalFromString(v string) (Decimal, error) {
	d := Decimal{}
	_, _, err := d.SetString(v)
	if err != nil {
		return d, fmt.Errorf("invalid decimal string %s: %w", v, err)
	}
	return d, nil
}

// NewDecimalFromFloat creates a Decimal from a float64. Prices arrive from
// upstream JSON as floats; converting once at the edge keeps the rest of the
// pipeline exact.
func NewDecimalFromFloat(v float64) (Decimal, error) {
	d := Decimal{}
	if _, err := d.SetFloat64(v); err != nil {
		return d, fmt.Errorf("invalid decimal float %v: %w", v, err)
	}
	return d, nil
}

// String implements the fmt.Stringer interface.
func (d Decimal) String() string {
	return d.Decimal.String()
}

func (d Decimal) IsZero() bool {
	return d.Decimal.IsZero()
}

func (d Decimal) Equal(other Decimal) bool {
	return d.Decimal.Cmp(&other.Decimal) == 0
}

func (d Decimal) Cmp(other Decimal) int {
	return d.Decimal.Cmp(&other.Decimal)
}

// MarshalJSON implements the json.Marshaler interface.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	// Remove quotes if present
	s := string(data)
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	_, _, err := d.SetString(s)
	return err
}

// FixedString renders the decimal in plain notation with exactly the given
// number of decimal places, e.g. 195.5 with places=4 becomes "195.5000".
func (d Decimal) FixedString(places int32) (string, error) {
	ctx := apd.BaseContext.WithPrecision(20)
	ctx.Rounding = apd.RoundHalfUp

	y := Decimal{}
	y.SetFinite(0, -places)

	res := Decimal{}
	if _, err := ctx.Quantize(&res.Decimal, &d.Decimal, y.Exponent); err != nil {
		return "", fmt.Errorf("quantize operation failed: %w", err)
	}
	return res.Text('f'), nil
}

// FormatPrice converts an upstream float price into the canonical
// four-decimal string used by quote responses.
func FormatPrice(price float64) (string, error) {
	d, err := NewDecimalFromFloat(price)
	if err != nil {
		return "", err
	}
	return d.FixedString(4)
}
