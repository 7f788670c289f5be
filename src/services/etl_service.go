package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"portfolio-api/src/clients/marketdata"
	"portfolio-api/src/config"
	"portfolio-api/src/models"
	"portfolio-api/src/repositories"
	"portfolio-api/src/utils"
)

const symbolFetchTimeout = 30 * time.Second

type ETLServiceI interface {
	Run(ctx context.Context) error
}

// ETLService pulls daily bars for the configured universe and upserts them.
// Fetches run concurrently per symbol; a failing symbol never takes the batch
// down, it just falls back to synthetic data.
type ETLService struct {
	tickerRepo   repositories.TickerRepository
	priceRepo    repositories.PriceRepository
	liveClient   marketdata.ServiceClientI
	mockClient   marketdata.ServiceClientI
	symbols      []string
	lookbackDays int
	concurrency  int

	// mockMode is sticky: once the live source rate-limits one symbol the
	// remaining symbols skip straight to synthetic data.
	mockMode atomic.Bool
}

type symbolResult struct {
	symbol string
	info   *marketdata.TickerInfo
	bars   []marketdata.Bar
	mock   bool
	err    error
}

func NewETLService(
	tickerRepo repositories.TickerRepository,
	priceRepo repositories.PriceRepository,
	liveClient marketdata.ServiceClientI,
	mockClient marketdata.ServiceClientI,
	cfg *config.Config,
) *ETLService {
	s := &ETLService{
		tickerRepo:   tickerRepo,
		priceRepo:    priceRepo,
		liveClient:   liveClient,
		mockClient:   mockClient,
		symbols:      cfg.ETL.TickerSymbols(),
		lookbackDays: cfg.ETL.LookbackDays,
		concurrency:  cfg.ETL.Concurrency,
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	s.mockMode.Store(cfg.ETL.UseMockData)
	return s
}

// Run fetches all symbols with bounded concurrency, then upserts the merged
// results serially. Fetch errors are isolated per symbol; storage errors abort
// the run.
func (s *ETLService) Run(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)
	logger.Infof("starting ETL for %d tickers: %v", len(s.symbols), s.symbols)

	results := make([]symbolResult, len(s.symbols))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, symbol := range s.symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.fetchSymbol(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.err != nil {
			logger.WithField("ticker", result.symbol).WithError(result.err).Error("ticker processing failed")
			failed++
			continue
		}
		if err := s.store(ctx, result); err != nil {
			return fmt.Errorf("storing %s: %w", result.symbol, err)
		}
		succeeded++
	}

	logger.Infof("ETL completed: %d successful, %d errors", succeeded, failed)
	return nil
}

func (s *ETLService) fetchSymbol(ctx context.Context, symbol string) symbolResult {
	ctx, cancel := context.WithTimeout(ctx, symbolFetchTimeout)
	defer cancel()

	logger := utils.LoggerFromContext(ctx)

	if !s.mockMode.Load() {
		info, bars, err := s.fetch(ctx, s.liveClient, symbol)
		if err == nil {
			return symbolResult{symbol: symbol, info: info, bars: bars}
		}
		logger.WithField("ticker", symbol).WithError(err).Warn("live fetch failed, switching to mock data")
		s.mockMode.Store(true)
	}

	info, bars, err := s.fetch(ctx, s.mockClient, symbol)
	return symbolResult{symbol: symbol, info: info, bars: bars, mock: true, err: err}
}

func (s *ETLService) fetch(ctx context.Context, client marketdata.ServiceClientI, symbol string) (*marketdata.TickerInfo, []marketdata.Bar, error) {
	info, err := client.GetTickerInfo(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	bars, err := client.GetDailyBars(ctx, symbol, s.lookbackDays)
	if err != nil {
		return nil, nil, err
	}
	if len(bars) == 0 {
		return nil, nil, fmt.Errorf("no historical data for %s", symbol)
	}
	return info, bars, nil
}

func (s *ETLService) store(ctx context.Context, result symbolResult) error {
	ticker := &models.Ticker{
		Symbol: result.symbol,
		Name:   result.info.Name,
		Sector: result.info.Sector,
	}

	// Synthetic metadata must not overwrite live-sourced metadata.
	var err error
	if result.mock {
		err = s.tickerRepo.Ensure(ctx, ticker)
	} else {
		err = s.tickerRepo.Upsert(ctx, ticker)
	}
	if err != nil {
		return err
	}

	prices := make([]models.Price, 0, len(result.bars))
	for _, bar := range result.bars {
		prices = append(prices, models.Price{
			TickerID:   ticker.ID,
			Date:       time.Date(bar.Date.Year(), bar.Date.Month(), bar.Date.Day(), 0, 0, 0, 0, time.UTC),
			OpenPrice:  bar.Open,
			HighPrice:  bar.High,
			LowPrice:   bar.Low,
			ClosePrice: bar.Close,
			Volume:     bar.Volume,
		})
	}
	if err := s.priceRepo.UpsertBatch(ctx, prices); err != nil {
		return err
	}

	utils.LoggerFromContext(ctx).WithField("ticker", result.symbol).Infof("stored %d price records", len(prices))
	return nil
}
