package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio-api/src/clients/marketdata"
	"portfolio-api/src/models"
)

// fakeTickerRepo keeps tickers in memory and records whether each symbol was
// written through Upsert or Ensure.
type fakeTickerRepo struct {
	mu       sync.Mutex
	tickers  map[string]*models.Ticker
	nextID   int
	upserted []string
	ensured  []string
	err      error
}

func newFakeTickerRepo() *fakeTickerRepo {
	return &fakeTickerRepo{tickers: map[string]*models.Ticker{}, nextID: 1}
}

func (r *fakeTickerRepo) GetAll(_ context.Context) ([]models.Ticker, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	symbols := make([]string, 0, len(r.tickers))
	for symbol := range r.tickers {
		symbols = append(symbols, symbol)
	}
	// Sorted like the real query.
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			if symbols[j] < symbols[i] {
				symbols[i], symbols[j] = symbols[j], symbols[i]
			}
		}
	}
	all := make([]models.Ticker, 0, len(symbols))
	for _, symbol := range symbols {
		all = append(all, *r.tickers[symbol])
	}
	return all, nil
}

func (r *fakeTickerRepo) GetBySymbol(_ context.Context, symbol string) (*models.Ticker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticker, ok := r.tickers[symbol]
	if !ok {
		return nil, nil
	}
	copied := *ticker
	return &copied, nil
}

func (r *fakeTickerRepo) Upsert(_ context.Context, ticker *models.Ticker) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, ticker.Symbol)
	if existing, ok := r.tickers[ticker.Symbol]; ok {
		existing.Name = ticker.Name
		existing.Sector = ticker.Sector
		ticker.ID = existing.ID
		return nil
	}
	ticker.ID = r.nextID
	r.nextID++
	copied := *ticker
	r.tickers[ticker.Symbol] = &copied
	return nil
}

func (r *fakeTickerRepo) Ensure(_ context.Context, ticker *models.Ticker) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured = append(r.ensured, ticker.Symbol)
	if existing, ok := r.tickers[ticker.Symbol]; ok {
		ticker.ID = existing.ID
		return nil
	}
	ticker.ID = r.nextID
	r.nextID++
	copied := *ticker
	r.tickers[ticker.Symbol] = &copied
	return nil
}

// fakePriceRepo emulates the (ticker_id, date) uniqueness constraint.
type fakePriceRepo struct {
	mu   sync.Mutex
	rows map[string]models.Price
	err  error
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{rows: map[string]models.Price{}}
}

func priceKey(tickerID int, date time.Time) string {
	return fmt.Sprintf("%d|%s", tickerID, date.Format("2006-01-02"))
}

func (r *fakePriceRepo) UpsertBatch(_ context.Context, prices []models.Price) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, price := range prices {
		r.rows[priceKey(price.TickerID, price.Date)] = price
	}
	return nil
}

func (r *fakePriceRepo) GetLatestTwoByTickerIDs(_ context.Context, tickerIDs []int) (map[int][]models.Price, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[int][]models.Price)
	for _, id := range tickerIDs {
		var prices []models.Price
		for _, price := range r.rows {
			if price.TickerID == id {
				prices = append(prices, price)
			}
		}
		// Newest first, at most two, like the ranked query.
		for i := 0; i < len(prices); i++ {
			for j := i + 1; j < len(prices); j++ {
				if prices[j].Date.After(prices[i].Date) {
					prices[i], prices[j] = prices[j], prices[i]
				}
			}
		}
		if len(prices) > 2 {
			prices = prices[:2]
		}
		if len(prices) > 0 {
			result[id] = prices
		}
	}
	return result, nil
}

func (r *fakePriceRepo) CountByTickerID(_ context.Context, tickerID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, price := range r.rows {
		if price.TickerID == tickerID {
			count++
		}
	}
	return count, nil
}

func (r *fakePriceRepo) rowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// fakeUserRepo keeps users in memory keyed by email.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return errors.New("duplicate email")
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

// fixedMarketClient serves canned bars and infos, with optional per-symbol
// failures.
type fixedMarketClient struct {
	infos map[string]*marketdata.TickerInfo
	bars  map[string][]marketdata.Bar
	fails map[string]error
}

func (c *fixedMarketClient) GetTickerInfo(_ context.Context, symbol string) (*marketdata.TickerInfo, error) {
	if err, ok := c.fails[symbol]; ok {
		return nil, err
	}
	if info, ok := c.infos[symbol]; ok {
		return info, nil
	}
	return &marketdata.TickerInfo{Symbol: symbol, Name: symbol + " Inc.", Sector: "Unknown"}, nil
}

func (c *fixedMarketClient) GetDailyBars(_ context.Context, symbol string, _ int) ([]marketdata.Bar, error) {
	if err, ok := c.fails[symbol]; ok {
		return nil, err
	}
	return c.bars[symbol], nil
}
