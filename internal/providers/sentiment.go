package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/quantrow/signalrun/internal/risk"
)

// SentimentClient fetches per-source sentiment scores from the
// sentiment service: GET /sentiment?symbol=X returning news, social and
// technical readings in [0,1].
type SentimentClient struct {
	client *guardedClient
}

// NewSentimentClient builds a sentiment provider against the given base URL.
func NewSentimentClient(cfg ClientConfig, log zerolog.Logger) *SentimentClient {
	return &SentimentClient{client: newGuardedClient("sentiment", cfg, log)}
}

// Analyze fetches the current sentiment readings for a symbol. Scores
// outside [0,1] are rejected rather than clamped so a misbehaving
// source is visible.
func (s *SentimentClient) Analyze(ctx context.Context, symbol string) (risk.SentimentData, error) {
	var data risk.SentimentData
	path := "/sentiment?symbol=" + url.QueryEscape(symbol)
	if err := s.client.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return risk.SentimentData{}, err
	}
	for _, v := range []float64{data.News, data.Social, data.Technical} {
		if v < 0 || v > 1 {
			return risk.SentimentData{}, fmt.Errorf("sentiment score %.4f outside [0,1] for %s", v, symbol)
		}
	}
	return data, nil
}
