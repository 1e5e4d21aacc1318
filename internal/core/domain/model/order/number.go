package order

import (
	"math/rand/v2"
	"strconv"
)

const (
	numberMin = 10_000_000
	numberMax = 99_999_999
)

// GenerateNumber returns a uniformly random 8-digit display number.
// Uniqueness is enforced by storage, callers retry on conflict.
func GenerateNumber() string {
	return strconv.Itoa(numberMin + rand.IntN(numberMax-numberMin+1)) //nolint:gosec // display number, not a secret
}

func IsValidNumber(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && len(s) == 8 && n >= numberMin && n <= numberMax
}
