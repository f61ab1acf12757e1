package providers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantrow/signalrun/internal/signal"
)

// PredictorClient calls the external model service over HTTP. The
// service exposes POST /forward taking a recent price window and
// returning per-step forecasts.
type PredictorClient struct {
	client *guardedClient
}

// NewPredictorClient builds a predictor against the given base URL.
func NewPredictorClient(cfg ClientConfig, log zerolog.Logger) *PredictorClient {
	return &PredictorClient{client: newGuardedClient("predictor", cfg, log)}
}

type forwardRequest struct {
	Prices []float64 `json:"prices"`
}

// Forward requests a forecast for the supplied price window.
func (p *PredictorClient) Forward(ctx context.Context, prices []float64) (*signal.Prediction, error) {
	var pred signal.Prediction
	if err := p.client.do(ctx, http.MethodPost, "/forward", forwardRequest{Prices: prices}, &pred); err != nil {
		return nil, err
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}
	return &pred, nil
}
