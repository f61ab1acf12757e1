package risk

// BrokerLimits captures a venue's hard trading constraints.
type BrokerLimits struct {
	MaxLeverage       float64 `json:"max_leverage"`
	MinNotional       float64 `json:"min_notional"` // account currency
	MaxOpenOrders     int     `json:"max_open_orders,omitempty"`
	PatternDayTrading bool    `json:"pattern_day_trading,omitempty"`
}

// brokerLimits is the static per-venue constraint table.
var brokerLimits = map[string]BrokerLimits{
	"binance": {
		MaxLeverage:   20,
		MinNotional:   10, // USDT
		MaxOpenOrders: 100,
	},
	"interactive_brokers": {
		MaxLeverage:       4,
		MinNotional:       100, // USD
		PatternDayTrading: true,
	},
}

// LimitsFor returns the risk limits for a broker. The second return is
// false for unknown venues.
func LimitsFor(broker string) (BrokerLimits, bool) {
	limits, ok := brokerLimits[broker]
	return limits, ok
}
