package domain

// TradeDirection is the side of a trade leg.
type TradeDirection string

// Trade directions.
const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
)

// TradeStatus is the state of a single trade leg. A leg is created Pending
// and transitions exactly once to Success or Failed.
type TradeStatus string

// Trade statuses.
const (
	TradePending TradeStatus = "PENDING"
	TradeSuccess TradeStatus = "SUCCESS"
	TradeFailed  TradeStatus = "FAILED"
)

// TradeLogEntry records one trade leg (one half of a buy/sell pair).
type TradeLogEntry struct {
	ID          string // UUID
	TimestampMs int64  // last status transition, unix ms
	Direction   TradeDirection
	AmountSOL   float64
	Status      TradeStatus
	TxSignature string // set on success
	ErrorDetail string // set on failure
}
