package store

import (
	"testing"

	"embed-gateway/internal/embeddings"
)

func TestVectorToString(t *testing.T) {
	tests := []struct {
		name     string
		vec      embeddings.Vector
		expected string
	}{
		{"empty", embeddings.Vector{}, "[]"},
		{"single", embeddings.Vector{0.5}, "[0.5]"},
		{"multiple", embeddings.Vector{0.1, -0.2, 1}, "[0.1,-0.2,1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vectorToString(tt.vec); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseVectorRoundTrip(t *testing.T) {
	original := embeddings.Vector{0.123, -4.56, 0, 1e-7, 42}
	parsed, err := parseVector(vectorToString(original))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed) != len(original) {
		t.Fatalf("expected %d elements, got %d", len(original), len(parsed))
	}
	for i := range original {
		if parsed[i] != original[i] {
			t.Errorf("element %d: expected %v, got %v", i, original[i], parsed[i])
		}
	}
}

func TestParseVectorInvalid(t *testing.T) {
	if _, err := parseVector("[1,notafloat]"); err == nil {
		t.Error("expected error for malformed vector text")
	}
}

func TestFilterArg(t *testing.T) {
	arg, err := filterArg(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arg != nil {
		t.Errorf("expected nil arg for empty filter, got %v", arg)
	}

	arg, err = filterArg(map[string]any{"category": "docs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arg != `{"category":"docs"}` {
		t.Errorf("unexpected filter encoding: %v", arg)
	}
}

func TestRecordMetadataAccessors(t *testing.T) {
	rec := Record{Metadata: map[string]any{
		MetaText:      "hello",
		MetaTimestamp: "2026-01-02T03:04:05Z",
	}}
	if rec.Text() != "hello" {
		t.Errorf("expected text 'hello', got %q", rec.Text())
	}
	if rec.Timestamp() != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected timestamp %q", rec.Timestamp())
	}

	empty := Record{Metadata: map[string]any{MetaText: 42}}
	if empty.Text() != "" {
		t.Errorf("expected empty text for non-string metadata, got %q", empty.Text())
	}
}
