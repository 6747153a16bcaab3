// Package registry downloads and parses the IANA service-names-port-numbers
// registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultURL is the canonical location of the IANA registry CSV.
const DefaultURL = "https://www.iana.org/assignments/service-names-port-numbers/service-names-port-numbers.csv"

const (
	fetchTimeout = 60 * time.Second
	fetchMaxBody = 50 * 1024 * 1024 // 50MB
)

// ErrNetwork marks a failure to retrieve the remote registry.
var ErrNetwork = errors.New("network error")

// Fetcher downloads the registry CSV to a temporary file.
type Fetcher struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Fetch downloads the registry to a temporary file and returns its path
// together with a cleanup func that removes it. Cleanup is safe to call on
// every exit path, including after a failed fetch.
func (f *Fetcher) Fetch(ctx context.Context) (string, func(), error) {
	url := f.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = fetchTimeout
	}

	tmp, err := os.CreateTemp("", "iana-ports-*.csv")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	if err := f.download(ctx, url, tmp, timeout); err != nil {
		tmp.Close()
		cleanup()
		return "", func() {}, err
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp file: %w", err)
	}

	return path, cleanup, nil
}

func (f *Fetcher) download(ctx context.Context, url string, dest io.Writer, timeout time.Duration) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: registry returned status %d", ErrNetwork, resp.StatusCode)
	}

	if _, err := io.Copy(dest, io.LimitReader(resp.Body, fetchMaxBody)); err != nil {
		return fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	return nil
}
