package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a document id has no stored record.
var ErrNotFound = errors.New("doc not found")

// Doc is a persisted question bank: opaque JSON payload plus presentation
// metadata. The payload is only interpreted at session-build time.
type Doc struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Source    string          `json:"source,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

// DocSummary is the listing view of a Doc, without its payload.
type DocSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Source    string `json:"source,omitempty"`
	UpdatedAt int64  `json:"updated_at"`
}

// Result is one finished quiz attempt. Results are append-only: inserted at
// session end, never updated, only listed or bulk-cleared.
type Result struct {
	ID         int64  `json:"id"`
	DocID      string `json:"doc_id"`
	DocTitle   string `json:"doc_title"`
	OK         int    `json:"ok"`
	Bad        int    `json:"bad"`
	Blank      int    `json:"blank"`
	Total      int    `json:"total"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

type Store interface {
	PutDoc(ctx context.Context, d Doc) error
	GetDoc(ctx context.Context, id string) (Doc, error)
	ListDocs(ctx context.Context) ([]DocSummary, error) // newest updated first
	DeleteDoc(ctx context.Context, id string) error

	AddResult(ctx context.Context, r Result) error
	ListResults(ctx context.Context, limit int) ([]Result, error) // newest finished first
	ClearResults(ctx context.Context) error
}
