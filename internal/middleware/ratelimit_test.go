package middleware

import "testing"

func TestTokenBucketAllow(t *testing.T) {
	l := NewTokenBucket(3, 3)

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("allow() = false on request %d, want true", i+1)
		}
	}
	if l.allow("1.2.3.4") {
		t.Error("allow() = true after bucket drained, want false")
	}

	// Other keys are independent
	if !l.allow("5.6.7.8") {
		t.Error("allow() = false for fresh key, want true")
	}
}

func TestTokenBucketCapacityFallback(t *testing.T) {
	l := NewTokenBucket(0, 2)
	if l.capacity != 2 {
		t.Errorf("capacity = %d, want 2", l.capacity)
	}
}
