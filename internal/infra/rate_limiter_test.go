package infra

import (
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Fatalf("burst token %d should be available", i)
		}
	}
	if rl.TryAcquire() {
		t.Error("bucket should be empty after the burst")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(1, 100) // refills fast for test speed

	if !rl.TryAcquire() {
		t.Fatal("first token should be available")
	}
	if rl.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(30 * time.Millisecond)
	if !rl.TryAcquire() {
		t.Error("token should have refilled")
	}
}

func TestRateLimiter_WaitBlocksUntilToken(t *testing.T) {
	rl := NewRateLimiter(1, 50)
	rl.Wait() // consume the burst token

	start := time.Now()
	rl.Wait()
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Wait returned too fast: %v", elapsed)
	}
}
