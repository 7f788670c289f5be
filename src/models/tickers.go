package models

import "time"

type Ticker struct {
	ID        int       `db:"id"`
	Symbol    string    `db:"symbol"`
	Name      string    `db:"name"`
	Sector    string    `db:"sector"`
	UpdatedAt time.Time `db:"updated_at"`
}
