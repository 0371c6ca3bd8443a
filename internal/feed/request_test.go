package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestStatusError(t *testing.T) {
	t.Run("Error method", func(t *testing.T) {
		err := &StatusError{
			Source:     "coingecko",
			StatusCode: 404,
			Message:    "Not Found",
			Body:       []byte(`{"error": "coin not found"}`),
		}
		expected := "coingecko feed error 404: Not Found"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("IsRetryable", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{500, true},
			{502, true},
			{503, true},
			{429, true},
			{400, false},
			{403, false},
			{404, false},
			{499, false},
		}

		for _, tt := range tests {
			err := &StatusError{StatusCode: tt.code}
			if got := err.IsRetryable(); got != tt.expected {
				t.Errorf("IsRetryable() for status %d = %v, want %v", tt.code, got, tt.expected)
			}
		}
	})
}

func TestDoRequest(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q, want %q", r.Header.Get("Accept"), "application/json")
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		tr := newTransport("test", server.URL)
		body, err := tr.doRequest(context.Background(), "/test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"status": "ok"}` {
			t.Errorf("body = %q, want %q", string(body), `{"status": "ok"}`)
		}
	})

	t.Run("4xx error returns StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}))
		defer server.Close()

		tr := newTransport("test", server.URL)
		_, err := tr.doRequest(context.Background(), "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		statusErr, ok := err.(*StatusError)
		if !ok {
			t.Fatalf("expected *StatusError, got %T", err)
		}
		if statusErr.StatusCode != 404 {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, 404)
		}
		if !strings.Contains(string(statusErr.Body), "not found") {
			t.Errorf("Body should contain 'not found', got %q", string(statusErr.Body))
		}
	})
}

func TestDoWithRetry(t *testing.T) {
	t.Run("retries 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		tr := newTransport("test", server.URL, WithRetries(3, time.Millisecond))
		body, err := tr.doWithRetry(context.Background(), "/test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"ok": true}` {
			t.Errorf("body = %q, want %q", string(body), `{"ok": true}`)
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("server saw %d calls, want 3", got)
		}
	})

	t.Run("does not retry 4xx", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		tr := newTransport("test", server.URL, WithRetries(3, time.Millisecond))
		_, err := tr.doWithRetry(context.Background(), "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("server saw %d calls, want 1 (no retry on 4xx)", got)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		tr := newTransport("test", server.URL, WithRetries(2, time.Millisecond))
		_, err := tr.doWithRetry(context.Background(), "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "max retries exceeded") {
			t.Errorf("error = %v, want max retries exceeded", err)
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("server saw %d calls, want 3 (initial + 2 retries)", got)
		}
	})

	t.Run("respects context cancellation between retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		tr := newTransport("test", server.URL, WithRetries(3, time.Minute))
		_, err := tr.doWithRetry(ctx, "/test", nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestGetJSONInvalidPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	tr := newTransport("test", server.URL)
	var out map[string]any
	err := tr.getJSON(context.Background(), "/test", nil, &out)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}
