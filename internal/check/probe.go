package check

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathanspw/mirrors/internal/safety"
)

const (
	// probeTimeout bounds a single metadata request end to end.
	probeTimeout = 30 * time.Second
	// maxMetadataBytes caps how much of a repomd.xml response is read.
	maxMetadataBytes int64 = 4 * 1024 * 1024
)

// browserHeaders is sent with every probe. Some mirrors sit behind CDNs or
// filters that answer non-browser clients differently, so the check has to
// look like the browser a user would point at the mirror list.
// Accept-Encoding is left to the transport: it negotiates gzip and
// decompresses the body itself, so a corrupted repomd.xml surfaces as a
// read error instead of passing through unchecked.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/56.0.2924.76 Safari/537.36",
	"Upgrade-Insecure-Requests": "1",
	"DNT":                       "1",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
}

// Prober issues single availability probes. All probes for a mirror share
// one pooled client, so connections to the same host are reused.
type Prober struct {
	client *http.Client
}

// NewProber creates a Prober. A nil client gets the default pooled client
// with the standard probe timeout.
func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = safety.NewPooledClient(probeTimeout)
	}
	return &Prober{client: client}
}

// Probe checks one URL. A nil return means the URL is reachable. The error
// describes why the URL counts as unreachable: timeouts, transport
// failures, HTTP error statuses, unreadable bodies and caller cancellation
// all land here. With useGet the whole body is read, which is what catches
// mirrors serving truncated or undecodable metadata; HEAD only confirms
// the status line.
func (p *Prober) Probe(ctx context.Context, rawURL string, useGet bool) error {
	method := http.MethodHead
	if useGet {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if useGet {
		if _, err := safety.ReadAllWithLimit(resp.Body, maxMetadataBytes); err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
	}
	return nil
}
