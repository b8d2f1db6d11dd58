package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
)

// anyArgs returns n pgxmock.AnyArg() matchers; pgxmock v4 requires the
// expected argument count to match even when the values are irrelevant.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPostgresWithPool(mock), mock
}

func TestPostgresInsertBid(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO bids").
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := s.InsertBid(context.Background(), testBid("conv-1"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertBidDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO bids").
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := s.InsertBid(context.Background(), testBid("conv-1"))
	require.NoError(t, err)
	assert.False(t, inserted, "conflict on conversation id is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertBidUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO bids").
		WithArgs(anyArgs(10)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	inserted, err := s.InsertBid(context.Background(), testBid("conv-1"))
	require.NoError(t, err, "a raced duplicate insert is not an error")
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetBid(t *testing.T) {
	s, mock := newMockStore(t)

	created := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "conversation_id", "subject", "sender", "received_at", "fields",
		"final_cpi", "predicted_price", "price_source", "created_at",
	}).AddRow(
		"bid-1", "conv-1", "usa study", "priya@acmepanel.com", (*time.Time)(nil),
		[]byte(`{"market":"usa"}`), (*string)(nil), (*string)(nil), (*string)(nil), created,
	)
	mock.ExpectQuery("FROM bids WHERE id").WithArgs("bid-1").WillReturnRows(rows)

	got, err := s.GetBid(context.Background(), "bid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conv-1", got.ConversationID)
	assert.Equal(t, "usa", got.Fields["market"])
	assert.True(t, got.ReceivedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetBidNoRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM bids WHERE id").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	got, err := s.GetBid(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateBidPriceNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE bids SET").
		WithArgs("3.00", "b2b_cover", "nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateBidPrice(context.Background(), "nope", "3.00", "b2b_cover")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertSync(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO sync_log").
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertSync(context.Background(), model.SyncEntry{
		Day: "2025-05-12", Status: model.SyncRunning, Synced: 10,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSyncNoRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM sync_log WHERE day").WithArgs("2025-05-12").WillReturnError(pgx.ErrNoRows)

	got, err := s.GetSync(context.Background(), "2025-05-12")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
