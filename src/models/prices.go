package models

import "time"

type Price struct {
	ID         int       `db:"id"`
	TickerID   int       `db:"ticker_id"`
	Date       time.Time `db:"date"`
	OpenPrice  float64   `db:"open_price"`
	HighPrice  float64   `db:"high_price"`
	LowPrice   float64   `db:"low_price"`
	ClosePrice float64   `db:"close_price"`
	Volume     int64     `db:"volume"`
}
