package common

import (
	"crypto/rand"
	"math/big"
)

// RandomString returns a string of length n whose symbols are drawn uniformly
// from alphabet using crypto/rand.
//
// It returns an error if the random number generator fails.
func RandomString(alphabet string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}

	return string(b), nil
}
