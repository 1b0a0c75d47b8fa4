package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	base := GenerateCacheKey("hello", 5, nil, false, true, true)

	if len(base) != 64 {
		t.Errorf("expected 64-char hex key, got %d chars", len(base))
	}

	// Deterministic for identical inputs
	if again := GenerateCacheKey("hello", 5, nil, false, true, true); again != base {
		t.Error("expected identical key for identical inputs")
	}

	// Filter map order must not matter
	f1 := GenerateCacheKey("hello", 5, map[string]any{"a": 1, "b": "x"}, false, true, true)
	f2 := GenerateCacheKey("hello", 5, map[string]any{"b": "x", "a": 1}, false, true, true)
	if f1 != f2 {
		t.Error("expected same key regardless of filter key order")
	}

	// Every input dimension must change the key
	variants := []string{
		GenerateCacheKey("other", 5, nil, false, true, true),
		GenerateCacheKey("hello", 10, nil, false, true, true),
		GenerateCacheKey("hello", 5, map[string]any{"a": 1}, false, true, true),
		GenerateCacheKey("hello", 5, nil, true, true, true),
		GenerateCacheKey("hello", 5, nil, false, false, true),
		GenerateCacheKey("hello", 5, nil, false, true, false),
	}
	seen := map[string]bool{base: true}
	for i, v := range variants {
		if seen[v] {
			t.Errorf("variant %d collided with a previous key", i)
		}
		seen[v] = true
	}
}
