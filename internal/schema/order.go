package schema

// TradeSide captures the direction of an order or fill.
type TradeSide string

const (
	// TradeSideBuy indicates the agent bought.
	TradeSideBuy TradeSide = "buy"
	// TradeSideSell indicates the agent sold.
	TradeSideSell TradeSide = "sell"
)

// Order is a limit order request. Positive quantity buys, negative quantity sells.
type Order struct {
	Symbol   string `json:"symbol"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// NewOrder builds an order with the quantity signed according to side.
func NewOrder(symbol string, side TradeSide, price, size int64) Order {
	qty := size
	if side == TradeSideSell {
		qty = -size
	}
	return Order{Symbol: symbol, Price: price, Quantity: qty}
}

// Side derives the order direction from the quantity sign.
func (o Order) Side() TradeSide {
	if o.Quantity < 0 {
		return TradeSideSell
	}
	return TradeSideBuy
}

// Size returns the absolute order quantity.
func (o Order) Size() int64 {
	return absInt64(o.Quantity)
}
