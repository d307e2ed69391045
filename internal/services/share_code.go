package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	NumericAlphabet      = "0123456789"
	AlphanumericAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	MinShareCodeLength = 6
	MaxShareCodeLength = 8

	// Retry budget for the uniqueness loop. Hitting it means the code
	// space is badly undersized for the number of live commitments and
	// is treated as a fatal configuration error.
	maxShareCodeAttempts = 1000
)

var (
	ErrInvalidShareCodePolicy = errors.New("invalid share code policy")
	ErrShareCodeExhausted     = errors.New("share code space exhausted")
)

// ShareCodePolicy controls the shape of generated codes. Historical
// versions of this logic disagreed on numeric vs alphanumeric and on
// length, so both are configuration rather than constants.
type ShareCodePolicy struct {
	Length   int
	Alphabet string
}

func DefaultShareCodePolicy() ShareCodePolicy {
	return ShareCodePolicy{Length: 6, Alphabet: NumericAlphabet}
}

func (policy ShareCodePolicy) Validate() error {
	if policy.Length < MinShareCodeLength || policy.Length > MaxShareCodeLength {
		return fmt.Errorf("%w: length %d outside [%d, %d]", ErrInvalidShareCodePolicy, policy.Length, MinShareCodeLength, MaxShareCodeLength)
	}
	if len(policy.Alphabet) < 2 {
		return fmt.Errorf("%w: alphabet too small", ErrInvalidShareCodePolicy)
	}
	return nil
}

// Generate returns one candidate code, sampled without modulo bias.
func (policy ShareCodePolicy) Generate() (string, error) {
	if err := policy.Validate(); err != nil {
		return "", err
	}

	limit := big.NewInt(int64(len(policy.Alphabet)))
	code := make([]byte, policy.Length)
	for index := range code {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[index] = policy.Alphabet[position.Int64()]
	}
	return string(code), nil
}

// ShareCodeIndex answers whether a code is already held by a live
// commitment.
type ShareCodeIndex interface {
	ShareCodeInUse(code string) (bool, error)
}

// GenerateUniqueShareCode retries generation until the code is not in
// use by any non-deleted commitment.
func GenerateUniqueShareCode(policy ShareCodePolicy, index ShareCodeIndex) (string, error) {
	for attempt := 0; attempt < maxShareCodeAttempts; attempt++ {
		code, err := policy.Generate()
		if err != nil {
			return "", err
		}
		inUse, err := index.ShareCodeInUse(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrShareCodeExhausted
}
