package veriauth

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitKeyLayout(t *testing.T) {
	got := rateLimitKey(actionRegister, "10.0.0.1", "a@x.com")
	want := "register-rate-limit:10.0.0.1:a@x.com"
	if got != want {
		t.Fatalf("key layout changed: got %q want %q", got, want)
	}
}

func TestRateLimiterCheckHasNoSideEffects(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	l := newRateLimiter(rdb, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, err := l.Allowed(context.Background(), actionLogin, "c1", "a@x.com")
		if err != nil {
			t.Fatalf("Allowed: %v", err)
		}
		if !allowed {
			t.Fatal("gate must stay open until armed")
		}
	}
}

func TestRateLimiterArmClosesGateUntilTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	l := newRateLimiter(rdb, time.Minute)

	if err := l.Arm(context.Background(), actionLogin, "c1", "a@x.com"); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	allowed, err := l.Allowed(context.Background(), actionLogin, "c1", "a@x.com")
	if err != nil || allowed {
		t.Fatalf("expected closed gate, allowed=%v err=%v", allowed, err)
	}

	// joint key: other clients and other emails are independent
	if allowed, _ := l.Allowed(context.Background(), actionLogin, "c2", "a@x.com"); !allowed {
		t.Fatal("different client must not be throttled")
	}
	if allowed, _ := l.Allowed(context.Background(), actionLogin, "c1", "b@x.com"); !allowed {
		t.Fatal("different email must not be throttled")
	}
	if allowed, _ := l.Allowed(context.Background(), actionRegister, "c1", "a@x.com"); !allowed {
		t.Fatal("different action must not be throttled")
	}

	mr.FastForward(61 * time.Second)
	if allowed, _ := l.Allowed(context.Background(), actionLogin, "c1", "a@x.com"); !allowed {
		t.Fatal("gate must reopen after TTL")
	}
}
