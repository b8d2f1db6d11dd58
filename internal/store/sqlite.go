package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS bids (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL UNIQUE,
	subject         TEXT,
	sender          TEXT,
	received_at     DATETIME,
	fields          TEXT NOT NULL,
	final_cpi       TEXT,
	predicted_price TEXT,
	price_source    TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sync_log (
	id         TEXT PRIMARY KEY,
	day        TEXT NOT NULL UNIQUE,
	next_link  TEXT,
	status     TEXT NOT NULL,
	synced     INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_bids_sender ON bids(sender);
CREATE INDEX IF NOT EXISTS idx_bids_received_at ON bids(received_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertBid(ctx context.Context, bid model.Bid) (bool, error) {
	if err := checkFieldLengths(bid); err != nil {
		return false, err
	}

	fieldsJSON, err := json.Marshal(bid.Fields)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal fields")
	}

	id := bid.ID
	if id == "" {
		id = uuid.New().String()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO bids
		 (id, conversation_id, subject, sender, received_at, fields, final_cpi, predicted_price, price_source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, bid.ConversationID, bid.Subject, bid.Sender, bid.ReceivedAt,
		string(fieldsJSON), bid.FinalCPI, bid.PredictedPrice, bid.PriceSource, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert bid %s", bid.ConversationID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, subject, sender, received_at, fields,
		        final_cpi, predicted_price, price_source, created_at
		 FROM bids WHERE id = ?`, id)
	return scanBid(row)
}

func (s *SQLiteStore) ListBids(ctx context.Context, filter BidFilter) ([]model.Bid, error) {
	query := `SELECT id, conversation_id, subject, sender, received_at, fields,
	                 final_cpi, predicted_price, price_source, created_at
	          FROM bids WHERE 1=1`
	var args []any

	if filter.Sender != "" {
		query += ` AND sender = ?`
		args = append(args, filter.Sender)
	}
	query += ` ORDER BY received_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list bids")
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, eris.Wrap(rows.Err(), "sqlite: iterate bids")
}

func (s *SQLiteStore) UpdateBidPrice(ctx context.Context, id, price, source string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bids SET predicted_price = ?, price_source = ? WHERE id = ?`,
		price, source, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update bid price %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: bid %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) UpsertSync(ctx context.Context, entry model.SyncEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_log (id, day, next_link, status, synced, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET
		   next_link = excluded.next_link,
		   status    = excluded.status,
		   synced    = excluded.synced,
		   updated_at = excluded.updated_at`,
		id, entry.Day, entry.NextLink, string(entry.Status), entry.Synced, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert sync %s", entry.Day)
}

func (s *SQLiteStore) GetSync(ctx context.Context, day string) (*model.SyncEntry, error) {
	var (
		entry  model.SyncEntry
		status string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, day, next_link, status, synced, updated_at FROM sync_log WHERE day = ?`,
		day,
	).Scan(&entry.ID, &entry.Day, &entry.NextLink, &status, &entry.Synced, &entry.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get sync %s", day)
	}
	entry.Status = model.SyncStatus(status)
	return &entry, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBid(row scanner) (*model.Bid, error) {
	var (
		bid        model.Bid
		receivedAt sql.NullTime
		fieldsJSON string
		finalCPI   sql.NullString
		price      sql.NullString
		source     sql.NullString
	)
	err := row.Scan(&bid.ID, &bid.ConversationID, &bid.Subject, &bid.Sender,
		&receivedAt, &fieldsJSON, &finalCPI, &price, &source, &bid.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan bid")
	}
	if receivedAt.Valid {
		bid.ReceivedAt = receivedAt.Time
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &bid.Fields); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal fields")
	}
	bid.FinalCPI = finalCPI.String
	bid.PredictedPrice = price.String
	bid.PriceSource = source.String
	return &bid, nil
}
