package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HuggingFace {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewHuggingFace("test-token", 2*time.Second)
	provider.baseURL = server.URL
	return provider
}

func TestDisabledProvider(t *testing.T) {
	provider := NewDisabled()
	if provider.Available() {
		t.Error("disabled provider must not report availability")
	}
	if _, err := provider.Embed(context.Background(), "text"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHuggingFaceWithoutToken(t *testing.T) {
	provider := NewHuggingFace("", 0)
	if provider.Available() {
		t.Error("provider without token must not report availability")
	}
	if _, err := provider.Embed(context.Background(), "text"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHuggingFaceParsesBatchedShape(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Inputs != "hello" {
			t.Errorf("unexpected inputs %q", req.Inputs)
		}
		json.NewEncoder(w).Encode([][]float64{{0.1, 0.2, 0.3}})
	})

	vector, err := provider.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	want := []float64{0.1, 0.2, 0.3}
	if len(vector) != len(want) {
		t.Fatalf("vector length %d, want %d", len(vector), len(want))
	}
	for i := range want {
		if vector[i] != want[i] {
			t.Errorf("vector[%d] = %v, want %v", i, vector[i], want[i])
		}
	}
}

func TestHuggingFaceParsesFlatShape(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]float64{0.5, 0.6})
	})

	vector, err := provider.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vector) != 2 || vector[0] != 0.5 || vector[1] != 0.6 {
		t.Errorf("vector = %v, want [0.5 0.6]", vector)
	}
}

func TestHuggingFaceErrorStatus(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := provider.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestHuggingFaceUnexpectedShape(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "loading"})
	})

	if _, err := provider.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on unexpected response shape")
	}
}

func TestHuggingFaceHonorsContextCancellation(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can detect the
		// client disconnect and cancel the request context.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := provider.Embed(ctx, "hello"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
