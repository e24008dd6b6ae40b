package veriauth

import "testing"

func TestNewOTPCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := newOTPCode()
		if err != nil {
			t.Fatalf("newOTPCode: %v", err)
		}
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("code %q out of range", code)
		}
	}
}

func TestNewVerificationTokenHex(t *testing.T) {
	a, err := newVerificationToken(32)
	if err != nil {
		t.Fatalf("newVerificationToken: %v", err)
	}
	b, _ := newVerificationToken(32)
	if len(a) != 64 || a == b {
		t.Fatalf("bad token material: %q %q", a, b)
	}
}
