package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/src/models"
)

type PriceRepository interface {
	UpsertBatch(ctx context.Context, prices []models.Price) error
	GetLatestTwoByTickerIDs(ctx context.Context, tickerIDs []int) (map[int][]models.Price, error)
	CountByTickerID(ctx context.Context, tickerID int) (int, error)
}

type priceRepo struct {
	db *pgxpool.Pool
}

func NewPriceRepository(db *pgxpool.Pool) PriceRepository {
	return &priceRepo{db: db}
}

// UpsertBatch writes bars inside one transaction. The unique constraint on
// (ticker_id, date) makes re-running the same batch a no-op row-count wise.
func (r *priceRepo) UpsertBatch(ctx context.Context, prices []models.Price) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		INSERT INTO prices (ticker_id, date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker_id, date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume`

	for i := range prices {
		p := &prices[i]
		if _, err = tx.Exec(ctx, query,
			p.TickerID, p.Date, p.OpenPrice, p.HighPrice, p.LowPrice, p.ClosePrice, p.Volume,
		); err != nil {
			return err
		}
	}

	err = tx.Commit(ctx)
	return err
}

// GetLatestTwoByTickerIDs returns up to the two most recent bars per ticker,
// newest first, keyed by ticker id.
func (r *priceRepo) GetLatestTwoByTickerIDs(ctx context.Context, tickerIDs []int) (map[int][]models.Price, error) {
	result := make(map[int][]models.Price, len(tickerIDs))
	if len(tickerIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, ticker_id, date, open_price, high_price, low_price, close_price, volume
		FROM (
			SELECT p.*, ROW_NUMBER() OVER (PARTITION BY ticker_id ORDER BY date DESC) AS rn
			FROM prices p
			WHERE ticker_id = ANY($1)
		) ranked
		WHERE rn <= 2
		ORDER BY ticker_id, date DESC`, tickerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var price models.Price
		if err := rows.Scan(&price.ID, &price.TickerID, &price.Date,
			&price.OpenPrice, &price.HighPrice, &price.LowPrice, &price.ClosePrice, &price.Volume); err != nil {
			return nil, err
		}
		result[price.TickerID] = append(result[price.TickerID], price)
	}
	return result, rows.Err()
}

func (r *priceRepo) CountByTickerID(ctx context.Context, tickerID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM prices WHERE ticker_id = $1`, tickerID).Scan(&count)
	return count, err
}
