package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestRerankerServiceComplete(t *testing.T) {
	log := zerolog.Nop()

	t.Run("returns the first choice content", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")

			var req completionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if req.Model != "test-model" || len(req.Messages) != 1 {
				t.Errorf("unexpected request: %+v", req)
			}

			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[\"id-1\"]"}}]}`))
		}))
		defer server.Close()

		svc := NewRerankerService(server.URL, "sk-test", "test-model", time.Second, log)
		got, err := svc.Complete(context.Background(), "rank these")
		if err != nil {
			t.Fatalf("Complete returned error: %v", err)
		}
		if got != `["id-1"]` {
			t.Errorf("content = %q", got)
		}
		if gotAuth != "Bearer sk-test" {
			t.Errorf("authorization header = %q", gotAuth)
		}
	})

	t.Run("non-2xx wraps the unavailable sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := NewRerankerService(server.URL, "sk-test", "test-model", time.Second, log)
		_, err := svc.Complete(context.Background(), "rank these")
		if !errors.Is(err, ErrRerankerUnavailable) {
			t.Errorf("expected ErrRerankerUnavailable, got %v", err)
		}
	})

	t.Run("empty choices wraps the unavailable sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		svc := NewRerankerService(server.URL, "sk-test", "test-model", time.Second, log)
		_, err := svc.Complete(context.Background(), "rank these")
		if !errors.Is(err, ErrRerankerUnavailable) {
			t.Errorf("expected ErrRerankerUnavailable, got %v", err)
		}
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewRerankerService(server.URL, "sk-test", "test-model", time.Second, log)
		for i := 0; i < 5; i++ {
			if _, err := svc.Complete(context.Background(), "rank"); err == nil {
				t.Fatalf("call %d unexpectedly succeeded", i)
			}
		}

		upstream := calls
		_, err := svc.Complete(context.Background(), "rank")
		if !errors.Is(err, ErrRerankerUnavailable) {
			t.Errorf("expected ErrRerankerUnavailable from the open breaker, got %v", err)
		}
		if calls != upstream {
			t.Errorf("open breaker should not hit the upstream, calls went %d -> %d", upstream, calls)
		}
	})
}
