package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestFetch_DownloadsToTempFile(t *testing.T) {
	body := "Service Name,Port Number\nhttp,80\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := &Fetcher{URL: srv.URL, UserAgent: "test-agent"}
	path, cleanup, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != body {
		t.Errorf("downloaded %q, want %q", got, body)
	}
}

func TestFetch_CleanupRemovesTempFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	f := &Fetcher{URL: srv.URL}
	path, cleanup, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleanup()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup: %s", path)
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := &Fetcher{URL: srv.URL}
	_, _, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error %v does not wrap ErrNetwork", err)
	}
}

func TestFetch_UnreachableHost(t *testing.T) {
	// Reserve a port, then close it so the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := &Fetcher{URL: url}
	_, _, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error %v does not wrap ErrNetwork", err)
	}
}

func TestFetch_FailureLeavesNoTempFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{URL: srv.URL}
	path, _, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if path != "" {
		t.Errorf("path = %q, want empty on failure", path)
	}
}
