package catalog

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSource_Fetch(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"shared-1"}]`))
	}))
	defer srv.Close()

	src := NewHTTPSource(time.Second, "addrbook-test/1.0")
	status, body, err := src.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != `[{"id":"shared-1"}]` {
		t.Errorf("body = %q", body)
	}

	got := <-headers
	wantHeaders := map[string]string{
		"Accept":        "application/json",
		"Cache-Control": "no-cache",
		"Pragma":        "no-cache",
		"User-Agent":    "addrbook-test/1.0",
	}
	for k, want := range wantHeaders {
		if v := got.Get(k); v != want {
			t.Errorf("header %s = %q, want %q", k, v, want)
		}
	}
}

func TestHTTPSource_ErrorStatusIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	status, _, err := NewHTTPSource(time.Second, "").Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestHTTPSource_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, _, err := NewHTTPSource(time.Second, "").Fetch(context.Background(), url); err == nil {
		t.Error("Fetch() against closed server expected error")
	}
}

func TestHTTPSource_InvalidURL(t *testing.T) {
	t.Parallel()

	if _, _, err := NewHTTPSource(0, "").Fetch(context.Background(), "://bad"); err == nil {
		t.Error("Fetch() with invalid URL expected error")
	}
}

func TestHTTPSource_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewHTTPSource(time.Second, "").Fetch(ctx, srv.URL); err == nil {
		t.Error("Fetch() with cancelled context expected error")
	}
}

func TestHTTPSource_BodyTooLarge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte(" "), MaxBodyBytes+1))
	}))
	defer srv.Close()

	if _, _, err := NewHTTPSource(5*time.Second, "").Fetch(context.Background(), srv.URL); err == nil {
		t.Error("Fetch() of oversized body expected error")
	}
}
