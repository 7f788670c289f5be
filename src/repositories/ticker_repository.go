package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/src/models"
)

type TickerRepository interface {
	GetAll(ctx context.Context) ([]models.Ticker, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Ticker, error)
	Upsert(ctx context.Context, ticker *models.Ticker) error
	Ensure(ctx context.Context, ticker *models.Ticker) error
}

type tickerRepo struct {
	db *pgxpool.Pool
}

func NewTickerRepository(db *pgxpool.Pool) TickerRepository {
	return &tickerRepo{db: db}
}

// GetAll returns the known universe ordered by symbol. The stable order
// matters: portfolio generation seeds off it.
func (r *tickerRepo) GetAll(ctx context.Context) ([]models.Ticker, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, symbol, name, sector, updated_at FROM tickers ORDER BY symbol ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []models.Ticker
	for rows.Next() {
		var ticker models.Ticker
		if err := rows.Scan(&ticker.ID, &ticker.Symbol, &ticker.Name, &ticker.Sector, &ticker.UpdatedAt); err != nil {
			return nil, err
		}
		tickers = append(tickers, ticker)
	}
	return tickers, rows.Err()
}

func (r *tickerRepo) GetBySymbol(ctx context.Context, symbol string) (*models.Ticker, error) {
	var ticker models.Ticker
	err := r.db.QueryRow(ctx,
		`SELECT id, symbol, name, sector, updated_at FROM tickers WHERE symbol = $1`, symbol).
		Scan(&ticker.ID, &ticker.Symbol, &ticker.Name, &ticker.Sector, &ticker.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (r *tickerRepo) Upsert(ctx context.Context, ticker *models.Ticker) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tickers (symbol, name, sector)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			updated_at = NOW()
		 RETURNING id`,
		ticker.Symbol, ticker.Name, ticker.Sector,
	).Scan(&ticker.ID)
}

// Ensure inserts the ticker if the symbol is new but leaves an existing row
// untouched, so synthetic metadata never overwrites live-sourced metadata.
// The no-op update keeps RETURNING populated on conflict.
func (r *tickerRepo) Ensure(ctx context.Context, ticker *models.Ticker) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tickers (symbol, name, sector)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (symbol) DO UPDATE SET symbol = EXCLUDED.symbol
		 RETURNING id`,
		ticker.Symbol, ticker.Name, ticker.Sector,
	).Scan(&ticker.ID)
}
