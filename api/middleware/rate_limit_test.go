package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
)

type fakeCounterStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limitedRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/crm", nil)
	req.RemoteAddr = ip + ":4455"
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRateLimitBlocksOverLimit(t *testing.T) {
	cfg := config.RateLimitConfig{WebhookWindow: time.Minute, WebhookIPLimit: 2}
	handler := WebhookRateLimit(cfg, &fakeCounterStore{}, nil)(okHandler())

	for i := 0; i < 2; i++ {
		if rec := limitedRequest(handler, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
	if rec := limitedRequest(handler, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// A different caller has its own window.
	if rec := limitedRequest(handler, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other ip: status = %d, want 200", rec.Code)
	}
}

func TestWebhookRateLimitDisabledPassesThrough(t *testing.T) {
	handler := WebhookRateLimit(config.RateLimitConfig{}, &fakeCounterStore{}, nil)(okHandler())
	for i := 0; i < 10; i++ {
		if rec := limitedRequest(handler, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
}

func TestWebhookRateLimitStoreFailure(t *testing.T) {
	cfg := config.RateLimitConfig{WebhookWindow: time.Minute, WebhookIPLimit: 2}
	store := &fakeCounterStore{err: fmt.Errorf("redis down")}
	handler := WebhookRateLimit(cfg, store, nil)(okHandler())

	if rec := limitedRequest(handler, "10.0.0.1"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestWebhookRateLimitUsesForwardedFor(t *testing.T) {
	cfg := config.RateLimitConfig{WebhookWindow: time.Minute, WebhookIPLimit: 1}
	store := &fakeCounterStore{}
	handler := WebhookRateLimit(cfg, store, nil)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/crm", nil)
	req.RemoteAddr = "127.0.0.1:9000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	handler.ServeHTTP(rec, req)

	if _, ok := store.counts["rl:ip:webhook:203.0.113.9"]; !ok {
		t.Errorf("expected forwarded ip key, got %v", store.counts)
	}
}
