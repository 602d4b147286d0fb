package models

// Side — сторона ордера: "buy"/"sell".
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PositionSide возвращает сторону позиции, которую открывает ордер этой стороны.
func (s Side) PositionSide() PositionSide {
	if s == SideSell {
		return PositionShort
	}
	return PositionLong
}

type IntentKind string

const (
	IntentLadder   IntentKind = "ladder"
	IntentClose    IntentKind = "close"
	IntentStopLoss IntentKind = "stop_loss"
)

// OrderIntent — ордер, который планировщик хочет видеть на бирже.
// Rung — единственная связь ордера с уровнем конверта (1..N), order id не хранится.
type OrderIntent struct {
	Symbol       string
	Kind         IntentKind
	Side         Side
	Price        float64 // лимитная цена, 0 = market
	TriggerPrice float64 // 0 = обычный лимитный ордер
	Size         float64
	ReduceOnly   bool
	Rung         int
}

// IsTrigger — ордер активируется только после пересечения TriggerPrice.
func (i OrderIntent) IsTrigger() bool { return i.TriggerPrice > 0 }
