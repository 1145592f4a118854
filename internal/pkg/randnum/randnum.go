package randnum

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Digits returns n uniformly random decimal digits. Leading zeros are kept,
// so the result always has length n.
func Digits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate digits: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// Code returns a 6-digit one-time code.
func Code() (string, error) {
	return Digits(6)
}
