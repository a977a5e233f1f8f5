package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Checker probes every registered source URL with a HEAD request and
// records the result, so `import list` can show which datasets have
// gone stale or moved.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		// Redirects are not followed: a 3xx already proves the URL
		// answers, and the final status is recorded as-is.
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start sweeps immediately, then once per interval until ctx ends.
func (c *Checker) Start(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce probes every source and persists each result.
func (c *Checker) RunOnce(ctx context.Context) {
	sources, err := c.sources.List()
	if err != nil {
		c.logger.Error("source check: list failed", "error", err)
		return
	}
	if len(sources) == 0 {
		return
	}

	var ok, failed int
	for _, src := range sources {
		if ctx.Err() != nil {
			return
		}

		status, probeErr := c.probe(ctx, src.SourceURL)
		errMsg := ""
		if probeErr != nil {
			errMsg = probeErr.Error()
		}
		if err := c.sources.RecordCheck(src.AdapterID, status, errMsg); err != nil {
			c.logger.Error("source check: record failed", "adapter", src.AdapterID, "error", err)
		}

		if status >= 200 && status < 400 {
			ok++
			continue
		}
		failed++
		c.logger.Warn("source unreachable",
			"adapter", src.AdapterID,
			"url", src.SourceURL,
			"status", status,
			"error", errMsg,
		)
	}

	c.logger.Info("source check complete", "total", ok+failed, "ok", ok, "failed", failed)
}

// probe returns the HTTP status of a HEAD request, or 0 on network error.
func (c *Checker) probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
