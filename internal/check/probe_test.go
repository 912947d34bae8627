package check

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeGet(t *testing.T) {
	var gotMethod, gotAgent, gotDNT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAgent = r.Header.Get("User-Agent")
		gotDNT = r.Header.Get("DNT")
		w.Write([]byte("<repomd></repomd>"))
	}))
	defer srv.Close()

	p := NewProber(srv.Client())
	if err := p.Probe(context.Background(), srv.URL, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotAgent != browserHeaders["User-Agent"] {
		t.Errorf("User-Agent = %q, want the browser header set", gotAgent)
	}
	if gotDNT != "1" {
		t.Errorf("DNT = %q, want %q", gotDNT, "1")
	}
}

func TestProbeHead(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer srv.Close()

	p := NewProber(srv.Client())
	if err := p.Probe(context.Background(), srv.URL, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodHead {
		t.Errorf("method = %q, want HEAD", gotMethod)
	}
}

func TestProbeHTTPErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		wantOK bool
	}{
		{"ok", http.StatusOK, true},
		{"no content", http.StatusNoContent, true},
		{"not found", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, false},
		{"forbidden", http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewProber(srv.Client()).Probe(context.Background(), srv.URL, true)
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Errorf("expected an error for status %d", tt.status)
			}
		})
	}
}

func TestProbeConnectionError(t *testing.T) {
	// RFC 5737 TEST-NET address, guaranteed unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := NewProber(nil).Probe(ctx, "http://192.0.2.1:1/repodata/repomd.xml", true)
	if err == nil {
		t.Fatal("expected an error for an unreachable host")
	}
}

func TestProbeCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewProber(srv.Client()).Probe(ctx, srv.URL, true)
	}()
	cancel()

	err := <-done
	if err == nil {
		t.Fatal("expected an error from a cancelled probe")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in its chain", err)
	}
}

func TestProbeTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Announce more content than is sent so the body read fails.
		w.Header().Set("Content-Length", "1024")
		w.Write([]byte("<repomd>"))
	}))
	defer srv.Close()

	err := NewProber(srv.Client()).Probe(context.Background(), srv.URL, true)
	if err == nil {
		t.Fatal("expected an error for a truncated body")
	}
}
