// Package store persists the wheel's prize list and draw history.
//
// The Store interface is the only surface the rest of the service sees; the
// SQLite implementation is the local backing store, and Fallback layers a
// remote key-value sync service on top of it.
package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store provides the ordered prize list and the draw history log.
type Store interface {
	Close() error
	Migrate() error

	// ListPrizes returns the current prize list in wheel order.
	ListPrizes() ([]Prize, error)
	// ReplacePrizes swaps the entire prize list atomically, preserving the
	// given order.
	ReplacePrizes(prizes []Prize) error
	// ResetPrizes restores the built-in default prize list and returns it.
	ResetPrizes() ([]Prize, error)

	// AppendDraw records one resolved spin outcome.
	AppendDraw(draw *Draw) error
	// ListDraws returns draws newest-first.
	ListDraws(limit, offset int) (*DrawsPage, error)
	// ClearDraws empties the history log.
	ClearDraws() error
}

// Prize is one segment of the wheel.
type Prize struct {
	ID        int64           `json:"id" db:"id"`
	Label     string          `json:"label" db:"label"`
	Color     string          `json:"color" db:"color"`
	Value     decimal.Decimal `json:"value" db:"value"`
	Position  int             `json:"position" db:"position"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Draw is one recorded spin outcome: which prize won, the segment color shown
// to the player, and when it happened.
type Draw struct {
	ID         string    `json:"id" db:"id"`
	PrizeLabel string    `json:"prize_label" db:"prize_label"`
	Color      string    `json:"color" db:"color"`
	WonAt      time.Time `json:"won_at" db:"won_at"`
}

// DrawsPage is a page of draw history.
type DrawsPage struct {
	Draws      []Draw `json:"draws"`
	TotalCount int    `json:"total_count"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// DefaultPrizes returns the seed prize list applied to an empty database and
// by ResetPrizes. Eight segments, alternating warm/cool colors.
func DefaultPrizes() []Prize {
	mk := func(label, color string, value int64) Prize {
		return Prize{Label: label, Color: color, Value: decimal.NewFromInt(value)}
	}
	return []Prize{
		mk("Grand Prize", "#e74c3c", 100),
		mk("Free Spin", "#3498db", 0),
		mk("Second Prize", "#f39c12", 50),
		mk("Try Again", "#95a5a6", 0),
		mk("Third Prize", "#2ecc71", 20),
		mk("Small Gift", "#9b59b6", 5),
		mk("Lucky Bonus", "#1abc9c", 10),
		mk("Thanks for Playing", "#34495e", 0),
	}
}
