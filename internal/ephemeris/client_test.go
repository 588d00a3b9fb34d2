package ephemeris

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Calculate_Success(t *testing.T) {
	t.Parallel()

	const body = `{"bodies":[
		{"object":"Asc","rasi":"Leo","degree":12.5,"house":1,"nakshatra":"Magha","pada":2},
		{"object":"Sun","rasi":"Cancer","degree":3.2,"house":12},
		{"object":"Rahu"}
	]}`

	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/charts/vedic" {
			t.Errorf("path = %s, want /v1/charts/vedic", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: time.Second}, newTestLogger())

	req := Request{Year: 1990, Month: 7, Day: 15, Hour: 6, Minute: 30, Latitude: 19.07, Longitude: 72.87, Timezone: "Asia/Kolkata"}
	result, err := client.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if got != req {
		t.Errorf("server received %+v, want %+v", got, req)
	}
	if len(result.Bodies) != 3 {
		t.Fatalf("expected 3 bodies, got %d", len(result.Bodies))
	}
	asc := result.Bodies[0]
	if asc.Object != "Asc" || asc.Rasi == nil || *asc.Rasi != "Leo" || asc.Pada == nil || *asc.Pada != 2 {
		t.Errorf("unexpected ascendant body: %+v", asc)
	}
	if result.Bodies[2].Rasi != nil {
		t.Error("missing rasi should decode as nil")
	}
	if result.Raw != body {
		t.Error("Raw should hold the response body verbatim")
	}
}

func TestClient_Calculate_NonOK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown timezone", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, newTestLogger())

	_, err := client.Calculate(context.Background(), Request{Timezone: "Mars/Olympus"})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "status=422") {
		t.Errorf("error should mention status, got %v", err)
	}
}

func TestClient_Calculate_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bodies": [`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, newTestLogger())

	if _, err := client.Calculate(context.Background(), Request{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_Calculate_NotConfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{}, newTestLogger())

	_, err := client.Calculate(context.Background(), Request{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_Calculate_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Calculate(ctx, Request{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
