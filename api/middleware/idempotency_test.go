package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"create intent", http.MethodPost, "/api/v1/payments/intents", defaultIdempotencyTTL, true},
		{"create intent trailing slash", http.MethodPost, "/api/v1/payments/intents/", defaultIdempotencyTTL, true},
		{"authorize", http.MethodPost, "/api/v1/payments/intents/123/authorize", defaultIdempotencyTTL, true},
		{"capture", http.MethodPost, "/api/v1/payments/intents/123/capture", criticalIdempotencyTTL, true},
		{"refund", http.MethodPost, "/api/v1/payments/intents/123/refund", criticalIdempotencyTTL, true},
		{"3ds confirm", http.MethodPost, "/api/v1/payments/intents/123/3ds/confirm", defaultIdempotencyTTL, true},
		{"resolved chi pattern", http.MethodPost, "/api/v1/payments/intents/{intentId}/capture", criticalIdempotencyTTL, true},
		{"get is never idempotency-guarded", http.MethodGet, "/api/v1/payments/intents/123", 0, false},
		{"order creation", http.MethodPost, "/api/v1/orders", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyEngagesOnSubrouterWildcard(t *testing.T) {
	// mounted with r.Use on the /api/v1 subrouter the middleware runs before
	// the final route resolves, so chi reports /api/v1/* and the rules must
	// fall back to the concrete request path
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/payments/intents/123/capture", "/api/v1/*", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatal("handler must not run without an idempotency key")
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored for a rejected request, got %d records", len(store.data))
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/payments/intents", "/api/v1/payments/intents", strings.NewReader(`{"order_id":"x"}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatal("handler should not run without idempotency key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	makeRequest := func() *httptest.ResponseRecorder {
		req := requestWithPattern(http.MethodPost, "/api/v1/payments/intents/123/capture", "/api/v1/*", strings.NewReader(`{"foo":"bar"}`))
		req.Header.Set("Idempotency-Key", "abc")
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		return resp
	}

	first := makeRequest()
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", first.Code)
	}
	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
	if len(store.data) != 1 {
		t.Fatalf("expected one stored record, got %d", len(store.data))
	}

	second := makeRequest()
	if second.Code != http.StatusAccepted {
		t.Fatalf("expected replayed 202 got %d", second.Code)
	}
	if calls != 1 {
		t.Fatalf("replay must not re-run the handler, got %d calls", calls)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("replayed content type = %q", ct)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := requestWithPattern(http.MethodPost, "/api/v1/payments/intents/123/refund", "/api/v1/*", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "refund-1")
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		return resp
	}

	if resp := send(`{"amount":"200"}`); resp.Code != http.StatusOK {
		t.Fatalf("expected first refund 200 got %d", resp.Code)
	}

	resp := send(`{"amount":"300"}`)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("error code = %q, want %q", envelope.Error.Code, pkgerrors.CodeIdempotency)
	}
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	// no Idempotency-Key, but order creation is not a guarded route
	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/*", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if !handlerCalled || resp.Code != http.StatusOK {
		t.Fatalf("unguarded route must pass through, called=%v code=%d", handlerCalled, resp.Code)
	}
	if len(store.data) != 0 {
		t.Fatalf("unguarded route must not store records, got %d", len(store.data))
	}
}
