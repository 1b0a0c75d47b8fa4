package cache

import (
	"context"
	"testing"
	"time"
)

// TestNoOpCache verifies that NoOpCache implements the Cache interface correctly
func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	// Test GetSearchResult - should always return nil (cache miss)
	result, err := cache.GetSearchResult(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (cache miss), got %v", result)
	}

	// Test SetSearchResult - should succeed silently
	err = cache.SetSearchResult(ctx, "test-key", &SearchResult{
		Query:   "hello",
		Results: []byte(`[{"id":"123","score":0.9}]`),
		Total:   1,
	}, 1*time.Hour)
	if err != nil {
		t.Errorf("Expected no error on SetSearchResult, got %v", err)
	}

	// Verify it still returns nil (nothing was actually cached)
	result, err = cache.GetSearchResult(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (no-op cache doesn't store), got %v", result)
	}

	// Test InvalidateSearches - should succeed silently
	err = cache.InvalidateSearches(ctx)
	if err != nil {
		t.Errorf("Expected no error on InvalidateSearches, got %v", err)
	}

	// Test Close - should succeed silently
	err = cache.Close()
	if err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}
