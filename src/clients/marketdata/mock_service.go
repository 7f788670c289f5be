package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"portfolio-api/src/utils"
)

type mockTicker struct {
	Name      string
	Sector    string
	BasePrice float64
}

// mockTickerData mirrors a realistic snapshot of large caps so the service
// stays usable when the live source rate-limits us.
var mockTickerData = map[string]mockTicker{
	"AAPL":  {Name: "Apple Inc.", Sector: "Technology", BasePrice: 192.50},
	"GOOGL": {Name: "Alphabet Inc.", Sector: "Technology", BasePrice: 141.80},
	"MSFT":  {Name: "Microsoft Corporation", Sector: "Technology", BasePrice: 378.91},
	"TSLA":  {Name: "Tesla, Inc.", Sector: "Automotive", BasePrice: 242.84},
	"NVDA":  {Name: "NVIDIA Corporation", Sector: "Technology", BasePrice: 140.15},
	"AMZN":  {Name: "Amazon.com, Inc.", Sector: "Consumer Cyclical", BasePrice: 197.50},
	"META":  {Name: "Meta Platforms, Inc.", Sector: "Technology", BasePrice: 352.00},
	"JPM":   {Name: "JPMorgan Chase & Co.", Sector: "Financial Services", BasePrice: 225.00},
	"V":     {Name: "Visa Inc.", Sector: "Financial Services", BasePrice: 295.00},
	"WMT":   {Name: "Walmart Inc.", Sector: "Consumer Defensive", BasePrice: 85.00},
}

// MockServiceClient synthesizes plausible ticker data without touching the
// network. Output is stable within a calendar day for a given symbol.
type MockServiceClient struct{}

// NewMockClient creates a new instance of MockServiceClient
func NewMockClient() *MockServiceClient {
	return &MockServiceClient{}
}

func (c *MockServiceClient) GetTickerInfo(_ context.Context, symbol string) (*TickerInfo, error) {
	info, ok := mockTickerData[symbol]
	if !ok {
		info = mockTicker{
			Name:      symbol + " Inc.",
			Sector:    utils.UnknownSector,
			BasePrice: utils.DefaultMockClose,
		}
	}
	return &TickerInfo{Symbol: symbol, Name: info.Name, Sector: info.Sector}, nil
}

// GetDailyBars walks a random daily move of up to 3% off the base price,
// skipping weekends, oldest bar first.
func (c *MockServiceClient) GetDailyBars(_ context.Context, symbol string, lookbackDays int) ([]Bar, error) {
	info, ok := mockTickerData[symbol]
	if !ok {
		info = mockTicker{BasePrice: utils.DefaultMockClose}
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	rng := rand.New(rand.NewSource(mockSeed(symbol, end)))

	current := info.BasePrice * uniform(rng, 0.95, 1.05)
	var bars []Bar
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		current = current * (1 + uniform(rng, -0.03, 0.03))
		open := current * uniform(rng, 0.99, 1.01)
		high := math.Max(open, current) * uniform(rng, 1.0, 1.02)
		low := math.Min(open, current) * uniform(rng, 0.98, 1.0)

		bars = append(bars, Bar{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  current,
			Volume: int64(uniform(rng, 50_000_000, 150_000_000)),
		})
	}

	return bars, nil
}

// mockSeed keys the generator off symbol and calendar day so repeated runs in
// one day upsert identical bars.
func mockSeed(symbol string, day time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	_, _ = h.Write([]byte(day.Format(utils.ShortDashDateLayout)))
	return int64(h.Sum64())
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}
