// Package store persists funds, budget buckets, net worth snapshots and the
// scraped price cache in a single sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
)

const schema = `
CREATE TABLE IF NOT EXISTS funds (
	id                INTEGER PRIMARY KEY,
	name              TEXT NOT NULL,
	allocation_target REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS transactions (
	fund_id INTEGER NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
	day     TEXT NOT NULL,
	units   REAL NOT NULL,
	price   REAL NOT NULL,
	fees    REAL NOT NULL DEFAULT 0,
	taxes   REAL NOT NULL DEFAULT 0,
	drip    INTEGER NOT NULL DEFAULT 0,
	pension INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_transactions_fund ON transactions(fund_id, day);
CREATE TABLE IF NOT EXISTS splits (
	fund_id INTEGER NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
	day     TEXT NOT NULL,
	ratio   REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS buckets (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	page            TEXT NOT NULL,
	filter_category TEXT NOT NULL DEFAULT '',
	expected_value  REAL NOT NULL DEFAULT 0,
	actual_value    REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS investment_bucket (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	expected_value REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS snapshots (
	day              TEXT PRIMARY KEY,
	cash_easy_access REAL NOT NULL DEFAULT 0,
	stocks           REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS blobs (
	key  TEXT PRIMARY KEY,
	data BLOB NOT NULL
);
`

const priceCacheKey = "price-cache"

// Store is an open database handle. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving store path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dsn := abs + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Funds loads every fund with its deal and split history, ordered by id,
// transactions and splits by date.
func (s *Store) Funds(ctx context.Context) ([]fundval.Fund, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, allocation_target FROM funds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing funds: %w", err)
	}
	defer rows.Close()

	var funds []fundval.Fund
	index := make(map[fundval.Id]int)
	for rows.Next() {
		var f fundval.Fund
		if err := rows.Scan(&f.ID, &f.Name, &f.AllocationTarget); err != nil {
			return nil, fmt.Errorf("scanning fund: %w", err)
		}
		index[f.ID] = len(funds)
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing funds: %w", err)
	}

	txRows, err := s.db.QueryContext(ctx,
		`SELECT fund_id, day, units, price, fees, taxes, drip, pension FROM transactions ORDER BY day, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var id fundval.Id
		var day string
		var t fundval.Transaction
		if err := txRows.Scan(&id, &day, &t.Units, &t.Price, &t.Fees, &t.Taxes, &t.Drip, &t.Pension); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("transaction of fund %d: %w", id, err)
		}
		if i, ok := index[id]; ok {
			funds[i].Transactions = append(funds[i].Transactions, t)
		}
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx, `SELECT fund_id, day, ratio FROM splits ORDER BY day, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing splits: %w", err)
	}
	defer splitRows.Close()
	for splitRows.Next() {
		var id fundval.Id
		var day string
		var sp fundval.StockSplit
		if err := splitRows.Scan(&id, &day, &sp.Ratio); err != nil {
			return nil, fmt.Errorf("scanning split: %w", err)
		}
		if sp.Date, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("split of fund %d: %w", id, err)
		}
		if i, ok := index[id]; ok {
			funds[i].Splits = append(funds[i].Splits, sp)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("listing splits: %w", err)
	}
	return funds, nil
}

// SaveFund writes a fund and its whole history, replacing any previous
// version atomically.
func (s *Store) SaveFund(ctx context.Context, f fundval.Fund) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving fund %d: %w", f.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO funds (id, name, allocation_target) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, allocation_target = excluded.allocation_target`,
		f.ID, f.Name, f.AllocationTarget); err != nil {
		return fmt.Errorf("saving fund %d: %w", f.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE fund_id = ?`, f.ID); err != nil {
		return fmt.Errorf("saving fund %d: %w", f.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM splits WHERE fund_id = ?`, f.ID); err != nil {
		return fmt.Errorf("saving fund %d: %w", f.ID, err)
	}
	for _, t := range f.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (fund_id, day, units, price, fees, taxes, drip, pension) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, t.Date.String(), t.Units, t.Price, t.Fees, t.Taxes, t.Drip, t.Pension); err != nil {
			return fmt.Errorf("saving fund %d: %w", f.ID, err)
		}
	}
	for _, sp := range f.Splits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO splits (fund_id, day, ratio) VALUES (?, ?, ?)`,
			f.ID, sp.Date.String(), sp.Ratio); err != nil {
			return fmt.Errorf("saving fund %d: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteFund removes a fund and, through the schema, its history.
func (s *Store) DeleteFund(ctx context.Context, id fundval.Id) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM funds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting fund %d: %w", id, err)
	}
	return nil
}

// Buckets loads every budget bucket, catch-alls included, ordered by id.
func (s *Store) Buckets(ctx context.Context) ([]fundval.Bucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, page, filter_category, expected_value, actual_value FROM buckets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}
	defer rows.Close()

	var buckets []fundval.Bucket
	for rows.Next() {
		var b fundval.Bucket
		var page string
		if err := rows.Scan(&b.ID, &page, &b.FilterCategory, &b.ExpectedValue, &b.ActualValue); err != nil {
			return nil, fmt.Errorf("scanning bucket: %w", err)
		}
		if b.Page, err = fundval.ParseAnalysisPage(page); err != nil {
			return nil, fmt.Errorf("bucket %d: %w", b.ID, err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// UpsertBucket inserts the bucket, or updates it when its id is set, and
// returns the stored id.
func (s *Store) UpsertBucket(ctx context.Context, b fundval.Bucket) (int64, error) {
	if b.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO buckets (page, filter_category, expected_value, actual_value) VALUES (?, ?, ?, ?)`,
			b.Page.String(), b.FilterCategory, b.ExpectedValue, b.ActualValue)
		if err != nil {
			return 0, fmt.Errorf("inserting bucket: %w", err)
		}
		return res.LastInsertId()
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE buckets SET page = ?, filter_category = ?, expected_value = ?, actual_value = ? WHERE id = ?`,
		b.Page.String(), b.FilterCategory, b.ExpectedValue, b.ActualValue, b.ID); err != nil {
		return 0, fmt.Errorf("updating bucket %d: %w", b.ID, err)
	}
	return b.ID, nil
}

// InvestmentBucket returns the stored investment target, zero when unset.
func (s *Store) InvestmentBucket(ctx context.Context) (fundval.InvestmentBucket, error) {
	var b fundval.InvestmentBucket
	err := s.db.QueryRowContext(ctx,
		`SELECT expected_value FROM investment_bucket WHERE id = 1`).Scan(&b.ExpectedValue)
	if errors.Is(err, sql.ErrNoRows) {
		return fundval.InvestmentBucket{}, nil
	}
	if err != nil {
		return fundval.InvestmentBucket{}, fmt.Errorf("reading investment bucket: %w", err)
	}
	return b, nil
}

// SetInvestmentBucket stores the investment target.
func (s *Store) SetInvestmentBucket(ctx context.Context, expected float64) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO investment_bucket (id, expected_value) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET expected_value = excluded.expected_value`, expected); err != nil {
		return fmt.Errorf("setting investment bucket: %w", err)
	}
	return nil
}

// AddSnapshot stores a net worth snapshot, overwriting any for the same day.
func (s *Store) AddSnapshot(ctx context.Context, snap fundval.NetWorthSnapshot) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (day, cash_easy_access, stocks) VALUES (?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET cash_easy_access = excluded.cash_easy_access, stocks = excluded.stocks`,
		snap.Date.String(), snap.CashEasyAccess, snap.Stocks); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot, reporting whether one
// exists.
func (s *Store) LatestSnapshot(ctx context.Context) (fundval.NetWorthSnapshot, bool, error) {
	var snap fundval.NetWorthSnapshot
	var day string
	err := s.db.QueryRowContext(ctx,
		`SELECT day, cash_easy_access, stocks FROM snapshots ORDER BY day DESC LIMIT 1`).
		Scan(&day, &snap.CashEasyAccess, &snap.Stocks)
	if errors.Is(err, sql.ErrNoRows) {
		return fundval.NetWorthSnapshot{}, false, nil
	}
	if err != nil {
		return fundval.NetWorthSnapshot{}, false, fmt.Errorf("reading snapshot: %w", err)
	}
	if snap.Date, err = date.Parse(day); err != nil {
		return fundval.NetWorthSnapshot{}, false, fmt.Errorf("reading snapshot: %w", err)
	}
	return snap, true, nil
}

// PriceCache loads the stored price cache. A store that has never scraped
// returns an empty cache, not an error.
func (s *Store) PriceCache(ctx context.Context) (*fundval.PriceCache, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, priceCacheKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &fundval.PriceCache{Prices: map[fundval.Id][]fundval.PriceGroup{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading price cache: %w", err)
	}

	var cache fundval.PriceCache
	if err := msgpack.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("decoding price cache: %w", err)
	}
	if cache.Prices == nil {
		cache.Prices = map[fundval.Id][]fundval.PriceGroup{}
	}
	if err := cache.Validate(); err != nil {
		return nil, fmt.Errorf("stored price cache: %w", err)
	}
	return &cache, nil
}

// SavePriceCache stores the price cache, rejecting malformed ones.
func (s *Store) SavePriceCache(ctx context.Context, cache *fundval.PriceCache) error {
	if err := cache.Validate(); err != nil {
		return fmt.Errorf("refusing to store price cache: %w", err)
	}
	data, err := msgpack.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encoding price cache: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		priceCacheKey, data); err != nil {
		return fmt.Errorf("saving price cache: %w", err)
	}
	return nil
}

// ImportFunds replaces the whole fund table with the given funds, for
// seeding a store from a JSONL export.
func (s *Store) ImportFunds(ctx context.Context, funds []fundval.Fund) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM funds`); err != nil {
		return fmt.Errorf("clearing funds: %w", err)
	}
	for _, f := range funds {
		if err := s.SaveFund(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
