package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
)

// maxFieldLen caps any single persisted field value. Emails occasionally
// embed entire forwarded threads inside one cell; those rows are skipped
// rather than failing the whole sync batch.
const maxFieldLen = 4000

// ErrDataTooLong reports a bid with a field value too large to persist.
// Callers skip the bid and continue.
var ErrDataTooLong = eris.New("store: field value too long")

// BidFilter specifies criteria for listing bids.
type BidFilter struct {
	Sender string `json:"sender,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for extracted bids and mailbox
// sync progress.
type Store interface {
	// InsertBid inserts a bid if its conversation id is absent and reports
	// whether a row was written. Redelivered emails are a no-op, which makes
	// ingest idempotent.
	InsertBid(ctx context.Context, bid model.Bid) (bool, error)
	GetBid(ctx context.Context, id string) (*model.Bid, error)
	ListBids(ctx context.Context, filter BidFilter) ([]model.Bid, error)
	UpdateBidPrice(ctx context.Context, id, price, source string) error

	// Sync log
	UpsertSync(ctx context.Context, entry model.SyncEntry) error
	GetSync(ctx context.Context, day string) (*model.SyncEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// SuffixConversationID composes the per-row conversation id for the n-th bid
// of a multi-row email (1-based): "conv_01", "conv_02", ...
// A single-bid email keeps the bare id.
func SuffixConversationID(base string, index, total int) string {
	if total <= 1 {
		return base
	}
	return fmt.Sprintf("%s_%02d", base, index)
}

// checkFieldLengths guards against over-long field values before insert.
func checkFieldLengths(bid model.Bid) error {
	for k, v := range bid.Fields {
		if len(v) > maxFieldLen {
			return eris.Wrapf(ErrDataTooLong, "field %s (%d bytes)", k, len(v))
		}
	}
	return nil
}
