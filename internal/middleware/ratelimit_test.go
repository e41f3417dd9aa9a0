package middleware

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	ml := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, _, err := ml.Allow(ctx, "gen:user-a", 5, 10*time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !allowed {
			t.Fatalf("hit %d should have been allowed", i+1)
		}
	}

	allowed, retryAfter, err := ml.Allow(ctx, "gen:user-a", 5, 10*time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if allowed {
		t.Fatal("sixth hit should have been rejected")
	}
	if retryAfter <= 0 || retryAfter > 10*time.Minute {
		t.Fatalf("unexpected retry-after: %v", retryAfter)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	ml := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if allowed, _, _ := ml.Allow(ctx, "exp:user-a", 3, 10*time.Minute); !allowed {
			t.Fatalf("hit %d for user-a should have been allowed", i+1)
		}
	}
	if allowed, _, _ := ml.Allow(ctx, "exp:user-a", 3, 10*time.Minute); allowed {
		t.Fatal("user-a should be limited")
	}
	if allowed, _, _ := ml.Allow(ctx, "exp:user-b", 3, 10*time.Minute); !allowed {
		t.Fatal("user-b should not be affected by user-a's hits")
	}
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	ml := NewMemoryLimiter().(*memoryLimiter)
	ctx := context.Background()

	if allowed, _, _ := ml.Allow(ctx, "gen:user-a", 1, 10*time.Minute); !allowed {
		t.Fatal("first hit should be allowed")
	}
	if allowed, _, _ := ml.Allow(ctx, "gen:user-a", 1, 10*time.Minute); allowed {
		t.Fatal("second hit should be rejected")
	}

	// Age the recorded hit past the window.
	ml.mu.Lock()
	ml.hits["gen:user-a"][0] = time.Now().Add(-11 * time.Minute)
	ml.mu.Unlock()

	if allowed, _, _ := ml.Allow(ctx, "gen:user-a", 1, 10*time.Minute); !allowed {
		t.Fatal("hit after window expiry should be allowed")
	}
}
