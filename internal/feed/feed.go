// Package feed maintains rolling price and volume windows from a
// WebSocket market stream, feeding the indicator and regime layers.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Tick is one streamed market observation.
type Tick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	Time   time.Time `json:"time"`
}

// Window is a snapshot of the rolling history for one symbol, oldest
// first, aligned index-for-index.
type Window struct {
	Prices  []float64
	Volumes []float64
}

// Feed consumes ticks from a WebSocket endpoint and keeps a bounded
// window of recent history per symbol.
type Feed struct {
	url     string
	size    int
	log     zerolog.Logger
	mu      sync.RWMutex
	windows map[string]*window
}

type window struct {
	prices  []float64
	volumes []float64
}

// New creates a feed against the given WebSocket URL keeping size
// observations per symbol.
func New(url string, size int, log zerolog.Logger) *Feed {
	if size <= 0 {
		size = 100
	}
	return &Feed{
		url:     url,
		size:    size,
		log:     log.With().Str("component", "feed").Logger(),
		windows: make(map[string]*window),
	}
}

// Run connects and consumes ticks until the context is cancelled,
// reconnecting with backoff on stream errors.
func (f *Feed) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := f.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Dur("backoff", backoff).Msg("Stream dropped, reconnecting")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (f *Feed) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.url, err)
	}
	defer conn.Close()

	f.log.Info().Str("url", f.url).Msg("Feed connected")

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var tick Tick
		if err := json.Unmarshal(data, &tick); err != nil {
			f.log.Warn().Err(err).Msg("Skipping malformed tick")
			continue
		}
		f.Apply(tick)
	}
}

// Apply records one tick into the symbol's window. Exposed so offline
// sources can drive the same windows the stream does.
func (f *Feed) Apply(tick Tick) {
	if tick.Symbol == "" || tick.Price <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.windows[tick.Symbol]
	if !ok {
		w = &window{
			prices:  make([]float64, 0, f.size),
			volumes: make([]float64, 0, f.size),
		}
		f.windows[tick.Symbol] = w
	}
	w.prices = append(w.prices, tick.Price)
	w.volumes = append(w.volumes, tick.Volume)
	if len(w.prices) > f.size {
		w.prices = w.prices[len(w.prices)-f.size:]
		w.volumes = w.volumes[len(w.volumes)-f.size:]
	}
}

// Window returns a copy of the current history for a symbol, or false
// when the symbol has never ticked.
func (f *Feed) Window(symbol string) (Window, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	w, ok := f.windows[symbol]
	if !ok {
		return Window{}, false
	}
	out := Window{
		Prices:  make([]float64, len(w.prices)),
		Volumes: make([]float64, len(w.volumes)),
	}
	copy(out.Prices, w.prices)
	copy(out.Volumes, w.volumes)
	return out, true
}

// Symbols lists symbols with at least one observation.
func (f *Feed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	symbols := make([]string, 0, len(f.windows))
	for s := range f.windows {
		symbols = append(symbols, s)
	}
	return symbols
}
