// Package ingest pages procurement emails out of a mailbox, extracts bid
// records, and persists them idempotently.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
	"github.com/pankajverma010101-svg/predict-cpi/internal/extract"
	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
	"github.com/pankajverma010101-svg/predict-cpi/internal/store"
	"github.com/pankajverma010101-svg/predict-cpi/pkg/msgraph"
)

// Stats summarizes one ingest run.
type Stats struct {
	Pages    int `json:"pages"`
	Messages int `json:"messages"`
	Bids     int `json:"bids"`
	Dupes    int `json:"dupes"`
	Skipped  int `json:"skipped"`
}

// Ingestor wires the mailbox client, extractor, classifier, and store into
// one sync loop.
type Ingestor struct {
	graph       msgraph.Client
	mailbox     string
	store       store.Store
	extractor   *extract.Extractor
	classifier  *extract.TypeClassifier
	limiter     *rate.Limiter
	concurrency int
}

// New builds an Ingestor. ratePerSecond throttles mailbox page fetches;
// concurrency bounds per-page message processing.
func New(graph msgraph.Client, mailbox string, st store.Store, ex *extract.Extractor,
	cl *extract.TypeClassifier, ratePerSecond float64, concurrency int) *Ingestor {
	if concurrency <= 0 {
		concurrency = 4
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &Ingestor{
		graph:       graph,
		mailbox:     mailbox,
		store:       st,
		extractor:   ex,
		classifier:  cl,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		concurrency: concurrency,
	}
}

// Run syncs one mailbox window. A failed run leaves its page cursor in the
// sync log, so the next run resumes instead of restarting; message-level
// failures are logged and skipped, never aborting the window.
func (in *Ingestor) Run(ctx context.Context, since, until time.Time) (*Stats, error) {
	day := since.UTC().Format("2006-01-02")

	nextLink := ""
	if entry, err := in.store.GetSync(ctx, day); err != nil {
		return nil, eris.Wrap(err, "ingest: read sync log")
	} else if entry != nil && entry.Status == model.SyncRunning {
		nextLink = entry.NextLink
		zap.L().Info("ingest: resuming from saved cursor", zap.String("day", day))
	}

	stats := &Stats{}
	for {
		if err := in.limiter.Wait(ctx); err != nil {
			return stats, eris.Wrap(err, "ingest: rate limiter")
		}

		page, err := in.graph.ListMessages(ctx, in.mailbox, since, until, nextLink)
		if err != nil {
			in.saveSync(ctx, day, nextLink, model.SyncFailed, stats.Bids)
			return stats, eris.Wrap(err, "ingest: list messages")
		}
		stats.Pages++

		in.processPage(ctx, page.Messages, stats)

		nextLink = page.NextLink
		if err := in.saveSync(ctx, day, nextLink, model.SyncRunning, stats.Bids); err != nil {
			return stats, err
		}
		if nextLink == "" {
			break
		}
	}

	if err := in.saveSync(ctx, day, "", model.SyncComplete, stats.Bids); err != nil {
		return stats, err
	}
	zap.L().Info("ingest: window complete",
		zap.String("day", day),
		zap.Int("pages", stats.Pages),
		zap.Int("messages", stats.Messages),
		zap.Int("bids", stats.Bids),
		zap.Int("dupes", stats.Dupes),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// processPage fans one page of messages across the worker limit. Counters
// are mutex-guarded; the group context is intentionally not used to cancel
// siblings, since one bad message must not sink the page.
func (in *Ingestor) processPage(ctx context.Context, msgs []msgraph.Message, stats *Stats) {
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(in.concurrency)
	for _, msg := range msgs {
		g.Go(func() error {
			bids, dupes, skipped := in.processMessage(ctx, msg)
			mu.Lock()
			stats.Messages++
			stats.Bids += bids
			stats.Dupes += dupes
			stats.Skipped += skipped
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors
}

func (in *Ingestor) processMessage(ctx context.Context, msg msgraph.Message) (bids, dupes, skipped int) {
	res := in.extractor.Extract(msg.Body.Content)
	if len(res.Records) == 0 {
		return 0, 0, 0
	}

	businessType := string(in.classifier.Classify(ctx, res.Text))

	// Forwarded-header client name first, then the live sender's domain.
	clientName := res.Metadata.ClientName
	if clientName == "" {
		clientName = extract.ClientNameFromAddress(msg.From.EmailAddress.Address)
	}

	for i, rec := range res.Records {
		fields := map[string]string(rec.Clone())
		fields["business_type"] = businessType
		if !rec.Has(alias.FieldClientName) && clientName != "" {
			fields[alias.FieldClientName] = clientName
		}

		bid := model.Bid{
			ConversationID: store.SuffixConversationID(msg.ConversationID, i+1, len(res.Records)),
			Subject:        msg.Subject,
			Sender:         msg.From.EmailAddress.Address,
			ReceivedAt:     msg.ReceivedDateTime,
			Fields:         fields,
			FinalCPI:       res.FinalCPI,
		}

		inserted, err := in.store.InsertBid(ctx, bid)
		switch {
		case eris.Is(err, store.ErrDataTooLong):
			zap.L().Warn("ingest: bid skipped, field too long",
				zap.String("conversation_id", bid.ConversationID))
			skipped++
		case err != nil:
			zap.L().Error("ingest: insert bid failed",
				zap.String("conversation_id", bid.ConversationID), zap.Error(err))
			skipped++
		case inserted:
			bids++
		default:
			dupes++
		}
	}
	return bids, dupes, skipped
}

func (in *Ingestor) saveSync(ctx context.Context, day, nextLink string, status model.SyncStatus, synced int) error {
	err := in.store.UpsertSync(ctx, model.SyncEntry{
		Day:      day,
		NextLink: nextLink,
		Status:   status,
		Synced:   synced,
	})
	return eris.Wrap(err, "ingest: save sync log")
}
