package schemas

// Holding is a generated (ticker, quantity) pair before any price is resolved.
type Holding struct {
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

// ValuedHolding is a holding joined with its latest close and day-over-day move.
type ValuedHolding struct {
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name"`
	Qty            int     `json:"qty"`
	Price          float64 `json:"price"`
	DailyChangePct float64 `json:"dailyChangePct"`
	Value          float64 `json:"value"`
}

type PortfolioResponse struct {
	Holdings   []ValuedHolding `json:"holdings"`
	TotalValue float64         `json:"totalValue"`
}
