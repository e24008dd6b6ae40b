package veriauth

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

func newVerificationToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// newOTPCode draws uniformly from [100000, 999999], so the code is always
// six digits with no leading zero.
func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return n.Add(n, big.NewInt(100000)).String(), nil
}
