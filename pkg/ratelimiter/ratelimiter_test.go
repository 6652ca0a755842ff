package ratelimiter

import (
	"testing"
	"time"
)

func TestTokenBucket_AllowsBurstUpToCapacity(t *testing.T) {
	tb := NewTokenBucket(1, 3)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d denied within burst capacity", i+1)
		}
	}
	if tb.Allow() {
		t.Fatal("request allowed after bucket drained")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := NewTokenBucket(100, 1) // 每 10ms 产生一个令牌

	if !tb.Allow() {
		t.Fatal("first request denied")
	}
	if tb.Allow() {
		t.Fatal("second request allowed with empty bucket")
	}

	time.Sleep(20 * time.Millisecond)
	if !tb.Allow() {
		t.Fatal("request denied after refill interval")
	}
}

func TestFixedWindowCounter_LimitsWithinWindow(t *testing.T) {
	fw := NewFixedWindowCounter(2, time.Hour)

	if !fw.Allow() || !fw.Allow() {
		t.Fatal("requests denied within the window limit")
	}
	if fw.Allow() {
		t.Fatal("request allowed past the window limit")
	}
}

func TestFixedWindowCounter_ResetsOnNewWindow(t *testing.T) {
	fw := NewFixedWindowCounter(1, 10*time.Millisecond)

	if !fw.Allow() {
		t.Fatal("first request denied")
	}
	if fw.Allow() {
		t.Fatal("second request allowed within the same window")
	}

	time.Sleep(20 * time.Millisecond)
	if !fw.Allow() {
		t.Fatal("request denied after window reset")
	}
}
