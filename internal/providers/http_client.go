// Package providers holds the outbound HTTP collaborators: the
// prediction model service and the sentiment service. Every call goes
// through a per-provider rate limiter and circuit breaker.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ClientConfig tunes the shared outbound-call plumbing.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// guardedClient is the shared rate-limited, breaker-wrapped HTTP caller.
type guardedClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func newGuardedClient(name string, cfg ClientConfig, log zerolog.Logger) *guardedClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	}
	return &guardedClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log.With().Str("provider", name).Logger(),
	}
}

// do runs one HTTP round trip through the limiter and breaker and
// decodes the JSON response into out.
func (c *guardedClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}
