package store

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteDB implements Store using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) a SQLite database at the given path.
// ":memory:" is accepted for tests.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite serializes access per connection; a single pooled
	// connection also keeps :memory: databases from splitting per conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies embedded schema migrations and seeds the default prize list
// into an empty database.
func (s *SQLiteDB) Migrate() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM prizes").Scan(&count); err != nil {
		return fmt.Errorf("failed to count prizes: %w", err)
	}
	if count == 0 {
		if err := s.ReplacePrizes(DefaultPrizes()); err != nil {
			return fmt.Errorf("failed to seed default prizes: %w", err)
		}
	}
	return nil
}

// ListPrizes returns the prize list in wheel order.
func (s *SQLiteDB) ListPrizes() ([]Prize, error) {
	rows, err := s.db.Query(
		"SELECT id, label, color, value, position, created_at FROM prizes ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prizes []Prize
	for rows.Next() {
		var p Prize
		var value string
		if err := rows.Scan(&p.ID, &p.Label, &p.Color, &value, &p.Position, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("bad value for prize %d: %w", p.ID, err)
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

// ReplacePrizes swaps the entire prize list in one transaction.
func (s *SQLiteDB) ReplacePrizes(prizes []Prize) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM prizes"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO prizes (label, color, value, position, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, p := range prizes {
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.Exec(p.Label, p.Color, p.Value.String(), i, createdAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResetPrizes restores the built-in defaults and returns the stored list.
func (s *SQLiteDB) ResetPrizes() ([]Prize, error) {
	if err := s.ReplacePrizes(DefaultPrizes()); err != nil {
		return nil, err
	}
	return s.ListPrizes()
}

// AppendDraw records a resolved spin outcome. Missing ID and timestamp are
// filled in.
func (s *SQLiteDB) AppendDraw(draw *Draw) error {
	if draw.ID == "" {
		draw.ID = uuid.New().String()
	}
	if draw.WonAt.IsZero() {
		draw.WonAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		"INSERT INTO draws (id, prize_label, color, won_at) VALUES (?, ?, ?, ?)",
		draw.ID, draw.PrizeLabel, draw.Color, draw.WonAt,
	)
	return err
}

// ListDraws returns a newest-first page of draw history.
func (s *SQLiteDB) ListDraws(limit, offset int) (*DrawsPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM draws").Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT id, prize_label, color, won_at FROM draws ORDER BY won_at DESC, id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	draws := make([]Draw, 0, limit)
	for rows.Next() {
		var d Draw
		if err := rows.Scan(&d.ID, &d.PrizeLabel, &d.Color, &d.WonAt); err != nil {
			return nil, err
		}
		draws = append(draws, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &DrawsPage{
		Draws:      draws,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// ClearDraws empties the history log.
func (s *SQLiteDB) ClearDraws() error {
	_, err := s.db.Exec("DELETE FROM draws")
	return err
}
