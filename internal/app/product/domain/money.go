package domain

import (
	"fmt"
	"math/big"
)

// Money represents a monetary value held as an exact rational number.
// Prices are stored as decimal(12,2), so values are compared in cents.
type Money struct {
	rat *big.Rat
}

// ParseMoney parses a decimal amount such as "49.90".
func ParseMoney(s string) (*Money, error) {
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal amount", ErrInvalidPrice, s)
	}
	return &Money{rat: rat}, nil
}

// NewMoneyFromFloat converts a stored price.
func NewMoneyFromFloat(f float64) *Money {
	rat := new(big.Rat)
	if rat.SetFloat64(f) == nil {
		rat.SetInt64(0)
	}
	return &Money{rat: rat}
}

// Cents returns the value rounded half away from zero to two decimals.
func (m *Money) Cents() *Money {
	rat, _ := new(big.Rat).SetString(m.rat.FloatString(2))
	return &Money{rat: rat}
}

// IsPositive returns true if the money value is positive.
func (m *Money) IsPositive() bool {
	return m.rat.Sign() > 0
}

// Equals compares two values in cents.
func (m *Money) Equals(other *Money) bool {
	return m.Cents().rat.Cmp(other.Cents().rat) == 0
}

// Float64 returns the value rounded to cents, for storage.
func (m *Money) Float64() float64 {
	f, _ := m.Cents().rat.Float64()
	return f
}

// String returns a string representation of the money value.
func (m *Money) String() string {
	return m.rat.FloatString(2)
}
