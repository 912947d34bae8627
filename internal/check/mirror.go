// Package check implements the mirror availability engine: enumerating the
// metadata URLs a mirror must serve, probing them concurrently and
// aggregating the probes into a single verdict per mirror.
package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonathanspw/mirrors/internal/config"
	"github.com/jonathanspw/mirrors/internal/safety"
)

// Checker decides mirror availability against one service config. It is
// safe for concurrent use; the config and whitelist tables are read-only.
type Checker struct {
	cfg    *config.ServiceConfig
	prober *Prober
	logger *slog.Logger
	useGet bool
}

// New creates a Checker probing with GET requests and the default pooled
// HTTP client.
func New(cfg *config.ServiceConfig, logger *slog.Logger) *Checker {
	return NewWithClient(cfg, nil, logger)
}

// NewWithClient creates a Checker using the given HTTP client. A nil
// client gets the default pooled client.
func NewWithClient(cfg *config.ServiceConfig, client *http.Client, logger *slog.Logger) *Checker {
	return &Checker{
		cfg:    cfg,
		prober: NewProber(client),
		logger: logger,
		useGet: true,
	}
}

// SetUseGet switches between GET probes (full body read, the default) and
// HEAD probes.
func (c *Checker) SetUseGet(useGet bool) {
	c.useGet = useGet
}

type probeResult struct {
	candidate Candidate
	err       error
}

// CheckMirror reports whether the mirror currently serves every required
// metadata URL. Private and whitelisted mirrors are available without any
// probe. All candidate URLs are probed concurrently and the first observed
// failure cancels the rest: the verdict is already decided, so the
// remaining network work would be wasted.
//
// The error return is reserved for upstream contract violations (a config
// producing unparseable URLs); an unreachable mirror is (false, nil).
func (c *Checker) CheckMirror(ctx context.Context, m *config.Mirror) (bool, error) {
	log := c.logger.With("mirror", m.Name)
	log.Info("checking mirror")

	if m.Private {
		log.Info("mirror is private and won't be checked")
		return true, nil
	}
	if _, ok := alwaysAvailable[m.Name]; ok {
		log.Info("mirror is always treated as available")
		return true, nil
	}

	if _, ok := BaseURL(c.cfg, m); !ok {
		log.Error("mirror has no address with a required protocol",
			"required_protocols", c.cfg.RequiredProtocols)
		return false, nil
	}

	candidates, err := Enumerate(c.cfg, m)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		// An eligible protocol but nothing to check means the config
		// matrix excluded every combination for this mirror.
		log.Warn("no check URLs for mirror")
		return false, nil
	}
	for _, cand := range candidates {
		if _, err := safety.ValidateHTTPURL(cand.URL); err != nil {
			return false, fmt.Errorf("mirror %q: check URL %q: %w", m.Name, cand.URL, err)
		}
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan probeResult, len(candidates))
	for _, cand := range candidates {
		go func(cand Candidate) {
			results <- probeResult{
				candidate: cand,
				err:       c.prober.Probe(probeCtx, cand.URL, c.useGet),
			}
		}(cand)
	}

	for range candidates {
		r := <-results
		if r.err == nil {
			continue
		}
		// A cancelled probe is the short-circuit signal, not a mirror
		// fault; the failure that triggered it has already been logged.
		if !errors.Is(r.err, context.Canceled) {
			log.Warn("mirror is not available",
				"version", r.candidate.Version,
				"repo_path", r.candidate.RepoPath,
				"error", r.err)
		}
		cancel()
		return false, nil
	}

	log.Info("mirror is available")
	return true, nil
}
