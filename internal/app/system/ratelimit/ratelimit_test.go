package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys are independent")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second request in window should be limited")
	}
	now = now.Add(2 * time.Minute)
	if !l.Allow("k") {
		t.Error("request after window should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := ClientIP(r); got != "10.0.0.1" {
		t.Errorf("ClientIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.5" {
		t.Errorf("ClientIP with XFF = %q", got)
	}
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiter(1, time.Minute)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/auth/login", nil)
	if !ll.Allow(r, "A@example.com") {
		t.Fatal("first attempt should be allowed")
	}
	if ll.Allow(r, "a@example.com ") {
		t.Error("same email, different case, should share the window")
	}
	if !ll.Allow(r, "b@example.com") {
		t.Error("different email should be allowed")
	}
	ll.Succeeded(r, "a@example.com")
	if !ll.Allow(r, "a@example.com") {
		t.Error("success should reset the window")
	}
}
