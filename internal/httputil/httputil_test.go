package httputil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]string{"id": "abc"})

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	want := "{\n  \"id\": \"abc\"\n}\n"
	if string(body) != want {
		t.Errorf("expected pretty-printed body with trailing newline, got %q", string(body))
	}
}

func TestCORS(t *testing.T) {
	r := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Get("/hello", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"preflight any path", http.MethodOptions, "/anything/at/all", http.StatusOK, ""},
		{"preflight known path", http.MethodOptions, "/hello", http.StatusOK, ""},
		{"plain route", http.MethodGet, "/hello", http.StatusOK, ""},
		{"unmatched route", http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
		{"wrong method", http.MethodPut, "/hello", http.StatusNotFound, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != AllowOrigin {
				t.Errorf("expected allow-origin %q, got %q", AllowOrigin, got)
			}
			if got := resp.Header.Get("Access-Control-Allow-Methods"); got != AllowMethods {
				t.Errorf("expected allow-methods %q, got %q", AllowMethods, got)
			}
			if got := resp.Header.Get("Access-Control-Allow-Headers"); got != AllowHeaders {
				t.Errorf("expected allow-headers %q, got %q", AllowHeaders, got)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, string(body))
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"valid", "Bearer sk-test-123", "sk-test-123", true},
		{"missing", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"no token", "Bearer ", "", false},
		{"bare value", "sk-test-123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/embed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			token, ok := BearerToken(req)
			if ok != tt.wantOK {
				t.Errorf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if token != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, token)
			}
		})
	}
}
