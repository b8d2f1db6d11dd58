// Package model holds the persisted domain types.
package model

import "time"

// Bid is one extracted bid record persisted from a procurement email. A
// single email with a multi-row bid table produces several bids sharing the
// same base conversation id with a numeric suffix.
type Bid struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Subject        string            `json:"subject"`
	Sender         string            `json:"sender"`
	ReceivedAt     time.Time         `json:"received_at"`
	Fields         map[string]string `json:"fields"`
	FinalCPI       string            `json:"final_cpi,omitempty"`
	PredictedPrice string            `json:"predicted_price,omitempty"`
	PriceSource    string            `json:"price_source,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// SyncStatus is the lifecycle state of one mailbox sync window.
type SyncStatus string

const (
	SyncRunning  SyncStatus = "running"
	SyncComplete SyncStatus = "complete"
	SyncFailed   SyncStatus = "failed"
)

// SyncEntry records the progress of syncing one mailbox day, including the
// page cursor to resume from after interruption.
type SyncEntry struct {
	ID        string     `json:"id"`
	Day       string     `json:"day"`
	NextLink  string     `json:"next_link,omitempty"`
	Status    SyncStatus `json:"status"`
	Synced    int        `json:"synced"`
	UpdatedAt time.Time  `json:"updated_at"`
}
