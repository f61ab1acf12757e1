// Package http exposes the scoring pipeline over REST: signal
// generation, standalone risk scoring, and backtest runs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/feed"
	"github.com/quantrow/signalrun/internal/indicators"
	"github.com/quantrow/signalrun/internal/metrics"
	"github.com/quantrow/signalrun/internal/persistence"
	"github.com/quantrow/signalrun/internal/regime"
	"github.com/quantrow/signalrun/internal/risk"
	"github.com/quantrow/signalrun/internal/signal"
)

// Config tunes the server surface.
type Config struct {
	Addr         string  `yaml:"addr"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	Burst        int     `yaml:"burst"`
}

// Server wires the pipeline behind mux routes with rate limiting and
// request metrics. Repos and caches are optional; nil disables them.
type Server struct {
	cfg        Config
	generator  *signal.Generator
	aggregator *risk.Aggregator
	simulator  *backtest.Simulator
	signals    persistence.SignalRepo
	backtests  persistence.BacktestRepo
	cache      SignalCache
	windows    MarketWindows
	metrics    *metrics.Registry
	limiter    *rate.Limiter
	log        zerolog.Logger
	http       *http.Server
}

// SignalCache is the optional read-through cache for generated signals.
type SignalCache interface {
	Get(ctx context.Context, symbol string) (*signal.TradeSignal, bool, error)
	Set(ctx context.Context, sig *signal.TradeSignal) error
}

// MarketWindows supplies live rolling history per symbol, fed by the
// streaming market feed.
type MarketWindows interface {
	Window(symbol string) (feed.Window, bool)
}

// Deps are the server's collaborators.
type Deps struct {
	Generator  *signal.Generator
	Aggregator *risk.Aggregator
	Simulator  *backtest.Simulator
	Signals    persistence.SignalRepo
	Backtests  persistence.BacktestRepo
	Cache      SignalCache
	Windows    MarketWindows
	Metrics    *metrics.Registry
}

// NewServer builds the REST server.
func NewServer(cfg Config, deps Deps, log zerolog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		generator:  deps.Generator,
		aggregator: deps.Aggregator,
		simulator:  deps.Simulator,
		signals:    deps.Signals,
		backtests:  deps.Backtests,
		cache:      deps.Cache,
		windows:    deps.Windows,
		metrics:    deps.Metrics,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.Burst),
		log:        log.With().Str("component", "http").Logger(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/v1").Subrouter()
	api.Use(s.rateLimit, s.observe)
	api.HandleFunc("/signal", s.handleSignal).Methods(http.MethodPost)
	api.HandleFunc("/signal/{symbol}", s.handleLiveSignal).Methods(http.MethodGet)
	api.HandleFunc("/signals/{symbol}", s.handleLatestSignals).Methods(http.MethodGet)
	api.HandleFunc("/risk", s.handleRisk).Methods(http.MethodPost)
	api.HandleFunc("/backtest", s.handleBacktest).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.ObserveRequest(route, strconv.Itoa(rec.status), time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, risk.ErrInvalidInput),
		errors.Is(err, signal.ErrInvalidPrediction),
		errors.Is(err, regime.ErrNoData),
		errors.Is(err, regime.ErrZeroVolume),
		errors.Is(err, backtest.ErrEmptyHistory):
		return http.StatusBadRequest
	case errors.Is(err, risk.ErrInsufficientData),
		errors.Is(err, indicators.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, risk.ErrDegenerateMarket):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
