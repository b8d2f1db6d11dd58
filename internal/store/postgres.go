package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pankajverma010101-svg/predict-cpi/internal/db"
	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS bids (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	conversation_id TEXT NOT NULL UNIQUE,
	subject         TEXT,
	sender          TEXT,
	received_at     TIMESTAMPTZ,
	fields          JSONB NOT NULL,
	final_cpi       TEXT,
	predicted_price TEXT,
	price_source    TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sync_log (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	day        TEXT NOT NULL UNIQUE,
	next_link  TEXT,
	status     TEXT NOT NULL,
	synced     INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bids_sender ON bids(sender);
CREATE INDEX IF NOT EXISTS idx_bids_received_at ON bids(received_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertBid(ctx context.Context, bid model.Bid) (bool, error) {
	if err := checkFieldLengths(bid); err != nil {
		return false, err
	}

	fieldsJSON, err := json.Marshal(bid.Fields)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal fields")
	}

	id := bid.ID
	if id == "" {
		id = uuid.New().String()
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO bids
		 (id, conversation_id, subject, sender, received_at, fields, final_cpi, predicted_price, price_source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (conversation_id) DO NOTHING`,
		id, bid.ConversationID, bid.Subject, bid.Sender, bid.ReceivedAt,
		fieldsJSON, bid.FinalCPI, bid.PredictedPrice, bid.PriceSource, time.Now().UTC(),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, eris.Wrapf(err, "postgres: insert bid %s", bid.ConversationID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, conversation_id, subject, sender, received_at, fields,
		        final_cpi, predicted_price, price_source, created_at
		 FROM bids WHERE id = $1`, id)
	return scanBidPG(row)
}

func (s *PostgresStore) ListBids(ctx context.Context, filter BidFilter) ([]model.Bid, error) {
	query := `SELECT id, conversation_id, subject, sender, received_at, fields,
	                 final_cpi, predicted_price, price_source, created_at
	          FROM bids WHERE 1=1`
	var args []any

	if filter.Sender != "" {
		args = append(args, filter.Sender)
		query += ` AND sender = $1`
	}
	query += ` ORDER BY received_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list bids")
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		bid, err := scanBidPG(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, eris.Wrap(rows.Err(), "postgres: iterate bids")
}

func (s *PostgresStore) UpdateBidPrice(ctx context.Context, id, price, source string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bids SET predicted_price = $1, price_source = $2 WHERE id = $3`,
		price, source, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update bid price %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: bid %s not found", id)
	}
	return nil
}

func (s *PostgresStore) UpsertSync(ctx context.Context, entry model.SyncEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_log (id, day, next_link, status, synced, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (day) DO UPDATE SET
		   next_link = EXCLUDED.next_link,
		   status    = EXCLUDED.status,
		   synced    = EXCLUDED.synced,
		   updated_at = EXCLUDED.updated_at`,
		id, entry.Day, entry.NextLink, string(entry.Status), entry.Synced, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert sync %s", entry.Day)
}

func (s *PostgresStore) GetSync(ctx context.Context, day string) (*model.SyncEntry, error) {
	var (
		entry  model.SyncEntry
		status string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, day, next_link, status, synced, updated_at FROM sync_log WHERE day = $1`,
		day,
	).Scan(&entry.ID, &entry.Day, &entry.NextLink, &status, &entry.Synced, &entry.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get sync %s", day)
	}
	entry.Status = model.SyncStatus(status)
	return &entry, nil
}

func scanBidPG(row pgx.Row) (*model.Bid, error) {
	var (
		bid        model.Bid
		receivedAt *time.Time
		fieldsJSON []byte
		finalCPI   *string
		price      *string
		source     *string
	)
	err := row.Scan(&bid.ID, &bid.ConversationID, &bid.Subject, &bid.Sender,
		&receivedAt, &fieldsJSON, &finalCPI, &price, &source, &bid.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan bid")
	}
	if receivedAt != nil {
		bid.ReceivedAt = *receivedAt
	}
	if err := json.Unmarshal(fieldsJSON, &bid.Fields); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal fields")
	}
	if finalCPI != nil {
		bid.FinalCPI = *finalCPI
	}
	if price != nil {
		bid.PredictedPrice = *price
	}
	if source != nil {
		bid.PriceSource = *source
	}
	return &bid, nil
}
