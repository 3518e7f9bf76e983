package signal

import (
	"testing"
	"time"
)

func TestJoinRateLimiter(t *testing.T) {
	rl := NewJoinRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("u1") {
		t.Error("fourth attempt should be blocked")
	}
	// Other users are unaffected.
	if !rl.Allow("u2") {
		t.Error("separate user should be allowed")
	}
}

func TestJoinRateLimiter_WindowSlides(t *testing.T) {
	rl := NewJoinRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("u1") {
		t.Fatal("first attempt should be allowed")
	}
	if rl.Allow("u1") {
		t.Fatal("second immediate attempt should be blocked")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Error("attempt after the window should be allowed")
	}
}
