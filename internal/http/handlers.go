package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/risk"
)

// signalRequest asks for a fresh trade signal from aligned history.
type signalRequest struct {
	Symbol  string    `json:"symbol"`
	Prices  []float64 `json:"prices"`
	Volumes []float64 `json:"volumes"`
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	s.produceSignal(w, r, req.Symbol, req.Prices, req.Volumes)
}

// handleLiveSignal scores a symbol from the streaming feed's rolling
// window instead of caller-supplied history.
func (s *Server) handleLiveSignal(w http.ResponseWriter, r *http.Request) {
	if s.windows == nil {
		writeError(w, http.StatusNotImplemented, "market feed not configured")
		return
	}
	symbol := mux.Vars(r)["symbol"]
	window, ok := s.windows.Window(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "no market data for "+symbol)
		return
	}
	s.produceSignal(w, r, symbol, window.Prices, window.Volumes)
}

// produceSignal runs the cache-generate-record flow shared by the
// posted-history and live-window routes.
func (s *Server) produceSignal(w http.ResponseWriter, r *http.Request, symbol string, prices, volumes []float64) {
	ctx := r.Context()
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, symbol); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache lookup failed")
		} else if ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	sig, err := s.generator.Generate(ctx, symbol, prices, volumes)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.ObserveSignal(string(sig.Action), sig.Analysis.RiskScore)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, sig); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache write failed")
		}
	}
	if s.signals != nil {
		if err := s.signals.Insert(ctx, sig); err != nil {
			s.log.Error().Err(err).Str("signal_id", sig.ID).Msg("Signal persist failed")
		}
	}

	writeJSON(w, http.StatusOK, sig)
}

func (s *Server) handleLatestSignals(w http.ResponseWriter, r *http.Request) {
	if s.signals == nil {
		writeError(w, http.StatusNotImplemented, "signal store not configured")
		return
	}
	symbol := mux.Vars(r)["symbol"]
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be in [1,500]")
			return
		}
		limit = n
	}

	signals, err := s.signals.Latest(r.Context(), symbol, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

// riskRequest asks for a standalone risk assessment.
type riskRequest struct {
	Market    risk.MarketData    `json:"market"`
	Sentiment risk.SentimentData `json:"sentiment"`
	Portfolio risk.PortfolioData `json:"portfolio"`
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := s.aggregator.Score(req.Market, req.Sentiment, req.Portfolio)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.RiskScore.Observe(result.Score)
	}
	writeJSON(w, http.StatusOK, result)
}

// backtestRequest asks for one simulation run.
type backtestRequest struct {
	Periods []backtest.Period `json:"periods"`
	Params  *backtest.Params  `json:"params,omitempty"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	params := backtest.DefaultParams()
	if req.Params != nil {
		params = *req.Params
	}

	result, err := s.simulator.Run(req.Periods, params)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.BacktestRuns.Inc()
	}
	if s.backtests != nil {
		if err := s.backtests.InsertRun(r.Context(), result, params); err != nil {
			s.log.Error().Err(err).Str("run_id", result.RunID).Msg("Backtest persist failed")
		}
	}
	writeJSON(w, http.StatusOK, result)
}
