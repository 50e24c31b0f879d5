package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/insights/internal/model"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
// URL takes precedence over the individual fields when set.
type ConnectionParams struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string passed to lib/pq
func (p ConnectionParams) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS symbol_profiles (
			symbol TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			exchange TEXT,
			sector TEXT,
			industry TEXT,
			currency TEXT,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS summary_subscriptions (
			chat_id BIGINT PRIMARY KEY,
			symbols TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			last_sent TIMESTAMP
		)
	`)
	return err
}

// GetProfile retrieves a symbol profile, or nil when none is stored
func (db *DB) GetProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	var p model.Profile
	var exchange, sector, industry, currency sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT symbol, name, exchange, sector, industry, currency
		FROM symbol_profiles
		WHERE symbol = $1
	`, strings.ToUpper(symbol)).Scan(&p.Symbol, &p.Name, &exchange, &sector, &industry, &currency)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No profile stored
		}
		return nil, err
	}

	p.Exchange = exchange.String
	p.Sector = sector.String
	p.Industry = industry.String
	p.Currency = currency.String
	return &p, nil
}

// UpsertProfile stores or replaces a symbol profile
func (db *DB) UpsertProfile(ctx context.Context, p *model.Profile) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO symbol_profiles (
			symbol, name, exchange, sector, industry, currency, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol)
		DO UPDATE SET
			name = EXCLUDED.name,
			exchange = EXCLUDED.exchange,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`,
		strings.ToUpper(p.Symbol), p.Name, nullString(p.Exchange), nullString(p.Sector),
		nullString(p.Industry), nullString(p.Currency), time.Now())

	return err
}

// Subscription is a Telegram chat that receives summaries for a list of symbols
type Subscription struct {
	ChatID    int64
	Symbols   []string
	CreatedAt time.Time
	LastSent  time.Time
}

// Subscribe creates or replaces the symbol list of a chat
func (db *DB) Subscribe(ctx context.Context, chatID int64, symbols []string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO summary_subscriptions (chat_id, symbols, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id)
		DO UPDATE SET symbols = EXCLUDED.symbols
	`, chatID, joinSymbols(symbols), time.Now())

	return err
}

// Subscriptions lists every chat subscription
func (db *DB) Subscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT chat_id, symbols, created_at, last_sent
		FROM summary_subscriptions
		ORDER BY chat_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var symbols string
		var lastSent sql.NullTime
		if err := rows.Scan(&sub.ChatID, &symbols, &sub.CreatedAt, &lastSent); err != nil {
			return nil, err
		}
		sub.Symbols = splitSymbols(symbols)
		if lastSent.Valid {
			sub.LastSent = lastSent.Time
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MarkSent records the time a chat last received its summaries
func (db *DB) MarkSent(ctx context.Context, chatID int64) error {
	_, err := db.ExecContext(ctx, `
		UPDATE summary_subscriptions
		SET last_sent = NOW()
		WHERE chat_id = $1
	`, chatID)

	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func joinSymbols(symbols []string) string {
	return strings.Join(normalizeSymbols(symbols), ",")
}

func splitSymbols(s string) []string {
	return normalizeSymbols(strings.Split(s, ","))
}

// normalizeSymbols upper-cases, trims and de-duplicates symbols, keeping order
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
