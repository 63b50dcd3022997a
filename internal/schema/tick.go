package schema

// FeatureDim is the dimension of the directional model's feature vector.
const FeatureDim = 4

// FeatureVector holds normalised price, normalised spread, book imbalance and normalised momentum.
type FeatureVector [FeatureDim]float64

// OwnTrade is one of the agent's executions as reported by the simulator.
type OwnTrade struct {
	Symbol    string
	Timestamp int64
	Price     int64
	Quantity  int64
	Buyer     string
	Seller    string
	Side      TradeSide
}

// SideFor resolves which side agentID took. An explicit Side wins over the buyer and seller names.
func (t OwnTrade) SideFor(agentID string) TradeSide {
	if t.Side != "" {
		return t.Side
	}
	if t.Buyer == agentID {
		return TradeSideBuy
	}
	return TradeSideSell
}

// Tick is the simulator snapshot handed to the engine on every invocation.
type Tick struct {
	Timestamp int64
	Books     map[string]Book
	Positions map[string]int64
	OwnTrades map[string][]OwnTrade
}

// Position returns the agent's position in symbol, zero when absent.
func (t Tick) Position(symbol string) int64 {
	if t.Positions == nil {
		return 0
	}
	return t.Positions[symbol]
}
