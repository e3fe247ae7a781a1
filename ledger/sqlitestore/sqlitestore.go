// Package sqlitestore is a durable ledger.Store backed by modernc.org/sqlite
// (a pure-Go driver, no cgo), grounded on aristath-sentinel's
// internal/database/db.go for the connection-string/PRAGMA setup idiom and
// adapted to the ledger's single-table event schema.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
	"github.com/shopspring/decimal"

	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledgererr"
	"github.com/canledger/acb/money"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id                      TEXT PRIMARY KEY,
	external_id             TEXT NOT NULL DEFAULT '',
	date                    TEXT NOT NULL,
	seq                     INTEGER NOT NULL,
	type                    TEXT NOT NULL,
	account_id              TEXT NOT NULL,
	security_id             TEXT NOT NULL,
	quantity                TEXT NOT NULL,
	price_amount            TEXT NOT NULL,
	price_currency          TEXT NOT NULL,
	fees_amount             TEXT NOT NULL,
	fees_currency           TEXT NOT NULL,
	fx_rate                 TEXT,
	roc_per_share_amount    TEXT NOT NULL,
	roc_per_share_currency  TEXT NOT NULL,
	ratio                   TEXT,
	broker                  TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_events_external_id
	ON events(account_id, external_id) WHERE external_id != '';
CREATE INDEX IF NOT EXISTS idx_events_slice ON events(account_id, security_id);
`

// Store is a sqlite-backed ledger.Store. Zero value is not usable; use Open.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if absPath, err := filepath.Abs(path); err == nil {
			if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
			path = absPath
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	if err := conn.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping sqlite database %s: %w", path, err)
	}
	if _, err := conn.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: conn}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func decimalOrNil(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	v, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) Insert(ctx context.Context, r ledger.Record) (ledger.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Record{}, ledgererr.Wrap(ledgererr.DependencyFailure, "begin insert transaction", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM events`).Scan(&seq); err != nil {
		return ledger.Record{}, ledgererr.Wrap(ledgererr.DependencyFailure, "allocate seq", err)
	}
	r.Seq = uint64(seq)
	r.ID = newID()

	if _, err := tx.ExecContext(ctx, insertSQL,
		r.ID, r.ExternalID, r.Date.String(), r.Seq, string(r.Type), r.AccountID, r.SecurityID,
		r.Quantity.Decimal().String(),
		r.Price.Decimal().String(), r.Price.Currency(),
		r.Fees.Decimal().String(), r.Fees.Currency(),
		decimalOrNil(r.FXRate),
		r.ROCPerShare.Decimal().String(), r.ROCPerShare.Currency(),
		decimalOrNil(r.Ratio),
		r.Broker,
	); err != nil {
		if isUniqueViolation(err) {
			return ledger.Record{}, ledgererr.Duplicatef(
				"externalId %q already exists on account %q", r.ExternalID, r.AccountID)
		}
		return ledger.Record{}, ledgererr.Wrap(ledgererr.DependencyFailure, "insert event", err)
	}
	if err := tx.Commit(); err != nil {
		return ledger.Record{}, ledgererr.Wrap(ledgererr.DependencyFailure, "commit insert", err)
	}
	return r, nil
}

const insertSQL = `
INSERT INTO events (
	id, external_id, date, seq, type, account_id, security_id,
	quantity, price_amount, price_currency, fees_amount, fees_currency,
	fx_rate, roc_per_share_amount, roc_per_share_currency, ratio, broker
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *Store) Update(ctx context.Context, id string, patch ledger.Patch) (ledger.Record, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return ledger.Record{}, err
	}
	updated := patch.Apply(existing)

	_, err = s.db.ExecContext(ctx, `
		UPDATE events SET
			external_id = ?, date = ?, type = ?, account_id = ?, security_id = ?,
			quantity = ?, price_amount = ?, price_currency = ?, fees_amount = ?, fees_currency = ?,
			fx_rate = ?, roc_per_share_amount = ?, roc_per_share_currency = ?, ratio = ?, broker = ?
		WHERE id = ?`,
		updated.ExternalID, updated.Date.String(), string(updated.Type), updated.AccountID, updated.SecurityID,
		updated.Quantity.Decimal().String(),
		updated.Price.Decimal().String(), updated.Price.Currency(),
		updated.Fees.Decimal().String(), updated.Fees.Currency(),
		decimalOrNil(updated.FXRate),
		updated.ROCPerShare.Decimal().String(), updated.ROCPerShare.Currency(),
		decimalOrNil(updated.Ratio),
		updated.Broker, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.Record{}, ledgererr.Duplicatef(
				"externalId %q already exists on account %q", updated.ExternalID, updated.AccountID)
		}
		return ledger.Record{}, ledgererr.Wrap(ledgererr.DependencyFailure, "update event", err)
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return ledgererr.Wrap(ledgererr.DependencyFailure, "delete event", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ledgererr.NotFoundf("transaction %q not found", id)
	}
	return nil
}

func (s *Store) Restore(ctx context.Context, r ledger.Record) error {
	_, err := s.db.ExecContext(ctx, insertSQL,
		r.ID, r.ExternalID, r.Date.String(), r.Seq, string(r.Type), r.AccountID, r.SecurityID,
		r.Quantity.Decimal().String(),
		r.Price.Decimal().String(), r.Price.Currency(),
		r.Fees.Decimal().String(), r.Fees.Currency(),
		decimalOrNil(r.FXRate),
		r.ROCPerShare.Decimal().String(), r.ROCPerShare.Currency(),
		decimalOrNil(r.Ratio),
		r.Broker,
	)
	if err != nil {
		return ledgererr.Wrap(ledgererr.DependencyFailure, "restore event", err)
	}
	return nil
}

const selectCols = `
	id, external_id, date, seq, type, account_id, security_id,
	quantity, price_amount, price_currency, fees_amount, fees_currency,
	fx_rate, roc_per_share_amount, roc_per_share_currency, ratio, broker`

func scanRecord(row interface{ Scan(...any) error }) (ledger.Record, error) {
	var r ledger.Record
	var dateStr, quantityStr, priceAmt, priceCur, feesAmt, feesCur, rocAmt, rocCur string
	var fxRate, ratio sql.NullString

	if err := row.Scan(
		&r.ID, &r.ExternalID, &dateStr, &r.Seq, &r.Type, &r.AccountID, &r.SecurityID,
		&quantityStr, &priceAmt, &priceCur, &feesAmt, &feesCur,
		&fxRate, &rocAmt, &rocCur, &ratio, &r.Broker,
	); err != nil {
		return ledger.Record{}, err
	}

	parsedDate, err := date.Parse(dateStr)
	if err != nil {
		return ledger.Record{}, err
	}
	r.Date = parsedDate

	q, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return ledger.Record{}, err
	}
	r.Quantity = money.QD(q)

	price, err := decimal.NewFromString(priceAmt)
	if err != nil {
		return ledger.Record{}, err
	}
	r.Price = money.New(price, priceCur)

	fees, err := decimal.NewFromString(feesAmt)
	if err != nil {
		return ledger.Record{}, err
	}
	r.Fees = money.New(fees, feesCur)

	roc, err := decimal.NewFromString(rocAmt)
	if err != nil {
		return ledger.Record{}, err
	}
	r.ROCPerShare = money.New(roc, rocCur)

	if r.FXRate, err = nullDecimal(fxRate); err != nil {
		return ledger.Record{}, err
	}
	if r.Ratio, err = nullDecimal(ratio); err != nil {
		return ledger.Record{}, err
	}
	return r, nil
}

func (s *Store) Get(ctx context.Context, id string) (ledger.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM events WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return ledger.Record{}, ledgererr.NotFoundf("transaction %q not found", id)
		}
		return ledger.Record{}, ledgererr.Wrap(ledgererr.DependencyFailure, "get event", err)
	}
	return r, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.DependencyFailure, "query events", err)
	}
	defer rows.Close()

	var out []ledger.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, ledgererr.Wrap(ledgererr.DependencyFailure, "scan event", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, accountID, securityID string) ([]ledger.Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+selectCols+` FROM events WHERE account_id = ? AND security_id = ?`,
		accountID, securityID)
}

func (s *Store) ListAll(ctx context.Context) ([]ledger.Record, error) {
	return s.queryRecords(ctx, `SELECT `+selectCols+` FROM events`)
}
