package service

import (
	"crypto/rand"
	"math/big"
)

// CodeGenerator produces a numeric one-time code of the given width.
type CodeGenerator func(length int) (string, error)

// GenerateCode draws each digit uniformly, so every code in the range is
// equally likely, leading zeros included.
func GenerateCode(length int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b[i] = digits[n.Int64()]
	}
	return string(b), nil
}
