package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperQuotes(t *testing.T) {
	paper := NewPaper(map[string]float64{"BTC": 50000}, map[string]float64{"USD": 10000})

	price, err := paper.Price(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, price)

	paper.SetPrice("BTC", 51000)
	price, err = paper.Price(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 51000.0, price)

	_, err = paper.Price(context.Background(), "DOGE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestPaperBalances(t *testing.T) {
	paper := NewPaper(nil, map[string]float64{"USD": 10000})

	balances, err := paper.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balances["USD"])

	// Mutating the returned map does not affect the broker.
	balances["USD"] = 0
	again, _ := paper.Balances(context.Background())
	assert.Equal(t, 10000.0, again["USD"])
}

func TestPaperPlaceOrder(t *testing.T) {
	paper := NewPaper(map[string]float64{"BTC": 50000}, nil)

	order, err := paper.PlaceOrder(context.Background(), "BTC", SideBuy, 0.5)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, SideBuy, order.Side)
	assert.Equal(t, 50000.0, order.Price)
	assert.False(t, order.PlacedAt.IsZero())

	orders := paper.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPaperPlaceOrderErrors(t *testing.T) {
	paper := NewPaper(map[string]float64{"BTC": 50000}, nil)

	_, err := paper.PlaceOrder(context.Background(), "BTC", SideBuy, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = paper.PlaceOrder(context.Background(), "DOGE", SideSell, 1)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}
