// Package broker defines the execution collaborator contract, an
// in-memory paper implementation and an Executor that routes actionable
// signals to it. Live exchange connectivity stays out of the engine.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Side is an order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

var (
	// ErrUnknownSymbol is returned for symbols the broker has no quote
	// for.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrInvalidQuantity is returned for non-positive order quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Order is a placed order record.
type Order struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol"`
	Side     Side      `json:"side"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	PlacedAt time.Time `json:"placed_at"`
}

// Broker is the execution collaborator contract.
type Broker interface {
	Price(ctx context.Context, symbol string) (float64, error)
	Balances(ctx context.Context) (map[string]float64, error)
	PlaceOrder(ctx context.Context, symbol string, side Side, quantity float64) (*Order, error)
}

// Paper is an in-memory broker: fixed quotes, a mutable balance book and
// an order log. Safe for concurrent use.
type Paper struct {
	mu       sync.Mutex
	prices   map[string]float64
	balances map[string]float64
	orders   []Order
}

// NewPaper creates a paper broker with the given quotes and balances.
func NewPaper(prices, balances map[string]float64) *Paper {
	p := &Paper{
		prices:   make(map[string]float64, len(prices)),
		balances: make(map[string]float64, len(balances)),
	}
	for s, v := range prices {
		p.prices[s] = v
	}
	for a, v := range balances {
		p.balances[a] = v
	}
	return p
}

// SetPrice updates a quote.
func (p *Paper) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = price
}

// Price returns the current quote for the symbol.
func (p *Paper) Price(_ context.Context, symbol string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return price, nil
}

// Balances returns a copy of the balance book.
func (p *Paper) Balances(context.Context) (map[string]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]float64, len(p.balances))
	for a, v := range p.balances {
		out[a] = v
	}
	return out, nil
}

// PlaceOrder records a market order at the current quote.
func (p *Paper) PlaceOrder(_ context.Context, symbol string, side Side, quantity float64) (*Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %.4f", ErrInvalidQuantity, quantity)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	order := Order{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		PlacedAt: time.Now().UTC(),
	}
	p.orders = append(p.orders, order)
	return &order, nil
}

// Orders returns a copy of the order log.
func (p *Paper) Orders() []Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Order, len(p.orders))
	copy(out, p.orders)
	return out
}
