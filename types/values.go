package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// ParseGasLimit validates a gas limit given as a base-10 unsigned integer string
// fitting in 64 bits and returns its canonical form.
func ParseGasLimit(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return "", fmt.Errorf("%w: %q", ErrInvalidGasLimit, s)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidGasLimit, s, err)
	}
	if !v.IsUint64() {
		return "", fmt.Errorf("%w: %q: overflows uint64", ErrInvalidGasLimit, s)
	}
	return strconv.FormatUint(v.Uint64(), 10), nil
}

// ParseMinValue validates a non-negative decimal amount denominated in ether.
// The input string is kept as given, apart from surrounding whitespace.
func ParseMinValue(s string) (string, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidMinValue, s, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("%w: %q: negative", ErrInvalidMinValue, s)
	}
	return s, nil
}
