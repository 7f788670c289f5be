package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"portfolio-api/src/config"
	"portfolio-api/src/models"
	"portfolio-api/src/repositories"
	"portfolio-api/src/schemas"
	"portfolio-api/src/utils"
	redis_utils "portfolio-api/src/utils/redis"
)

type PortfolioServiceI interface {
	GetUserPortfolio(ctx context.Context, userID int) (*schemas.PortfolioResponse, error)
	GenerateHoldings(userID int, universe []models.Ticker) []schemas.Holding
}

type PortfolioService struct {
	tickerRepo repositories.TickerRepository
	priceRepo  repositories.PriceRepository
	cache      *redis_utils.RedisHandler
	cacheTTL   time.Duration
}

// NewPortfolioService wires the repositories and an optional response cache.
// A nil cache disables caching entirely.
func NewPortfolioService(
	tickerRepo repositories.TickerRepository,
	priceRepo repositories.PriceRepository,
	cache *redis_utils.RedisHandler,
	cfg *config.Config,
) *PortfolioService {
	return &PortfolioService{
		tickerRepo: tickerRepo,
		priceRepo:  priceRepo,
		cache:      cache,
		cacheTTL:   time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
	}
}

// GenerateHoldings derives a stable pseudo-random set of holdings from the
// user id alone. The same id against the same universe always reproduces the
// same selection, across requests and restarts. The universe arrives sorted
// by symbol, which is what makes the seed position-independent of row order.
func (s *PortfolioService) GenerateHoldings(userID int, universe []models.Ticker) []schemas.Holding {
	if len(universe) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(int64(userID)))

	count := len(universe)
	if count >= 3 {
		upper := len(universe)
		if upper > 7 {
			upper = 7
		}
		count = 3 + rng.Intn(upper-3+1)
	}

	perm := rng.Perm(len(universe))
	holdings := make([]schemas.Holding, 0, count)
	for _, idx := range perm[:count] {
		holdings = append(holdings, schemas.Holding{
			Symbol:   universe[idx].Symbol,
			Quantity: 5 + rng.Intn(46),
		})
	}
	return holdings
}

// GetUserPortfolio generates the user's holdings, joins them with the two most
// recent closes per ticker and aggregates the total. Holdings without any
// price history are skipped rather than failing the request.
func (s *PortfolioService) GetUserPortfolio(ctx context.Context, userID int) (*schemas.PortfolioResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	if cached := s.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	universe, err := s.tickerRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	holdings := s.GenerateHoldings(userID, universe)
	if len(holdings) == 0 {
		logger.Warn("no tickers available to generate portfolio")
		return &schemas.PortfolioResponse{Holdings: []schemas.ValuedHolding{}, TotalValue: 0}, nil
	}

	bySymbol := make(map[string]models.Ticker, len(universe))
	for _, ticker := range universe {
		bySymbol[ticker.Symbol] = ticker
	}

	tickerIDs := make([]int, 0, len(holdings))
	for _, holding := range holdings {
		tickerIDs = append(tickerIDs, bySymbol[holding.Symbol].ID)
	}

	prices, err := s.priceRepo.GetLatestTwoByTickerIDs(ctx, tickerIDs)
	if err != nil {
		return nil, err
	}

	valued := make([]schemas.ValuedHolding, 0, len(holdings))
	var total float64
	for _, holding := range holdings {
		ticker := bySymbol[holding.Symbol]
		bars := prices[ticker.ID]
		if len(bars) == 0 {
			logger.WithField("ticker", ticker.Symbol).Debug("no price history, holding skipped")
			continue
		}

		latest := bars[0]
		change := 0.0
		if len(bars) > 1 && bars[1].ClosePrice != 0 {
			change = (latest.ClosePrice - bars[1].ClosePrice) / bars[1].ClosePrice * 100
		}

		value := latest.ClosePrice * float64(holding.Quantity)
		total += value

		valued = append(valued, schemas.ValuedHolding{
			Ticker:         ticker.Symbol,
			Name:           ticker.Name,
			Qty:            holding.Quantity,
			Price:          utils.Round2(latest.ClosePrice),
			DailyChangePct: utils.Round2(change),
			Value:          utils.Round2(value),
		})
	}

	response := &schemas.PortfolioResponse{Holdings: valued, TotalValue: utils.Round2(total)}
	s.toCache(ctx, userID, response)
	return response, nil
}

func (s *PortfolioService) fromCache(ctx context.Context, userID int) *schemas.PortfolioResponse {
	if s.cache == nil {
		return nil
	}
	var cached schemas.PortfolioResponse
	err := s.cache.Get(portfolioCacheKey(userID), &cached)
	if err != nil {
		if err != redis_utils.ErrKeyNotFound {
			utils.LoggerFromContext(ctx).WithError(err).Debug("portfolio cache read failed")
		}
		return nil
	}
	return &cached
}

func (s *PortfolioService) toCache(ctx context.Context, userID int, response *schemas.PortfolioResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(portfolioCacheKey(userID), response, s.cacheTTL); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Debug("portfolio cache write failed")
	}
}

func portfolioCacheKey(userID int) string {
	return fmt.Sprintf("portfolio:%d", userID)
}
