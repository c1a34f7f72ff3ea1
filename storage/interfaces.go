package storage

import (
	"context"
	"time"

	"github.com/poiesic/faqbot/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// FaqRepository provides operations for managing FAQ records.
type FaqRepository interface {
	Repository

	// AddFaqs adds one or more FAQ records to storage.
	// IDs are derived from the normalized question text, which enforces
	// case-insensitive question uniqueness: inserting a record whose
	// question collides with an existing one returns ErrDuplicateKey.
	// Sets InsertedAt/UpdatedAt timestamps and returns the stored records.
	AddFaqs(ctx context.Context, records ...*core.FaqRecord) ([]*core.FaqRecord, error)

	// UpdateFaqs updates existing FAQ records by ID.
	// A question change moves the record to its new content-based ID and
	// clears the stale embedding vector. Returns ErrNotFound if any record
	// doesn't exist, ErrDuplicateKey if a question change collides with
	// another record.
	UpdateFaqs(ctx context.Context, records ...*core.FaqRecord) ([]*core.FaqRecord, error)

	// DeleteFaqs removes FAQ records by their IDs.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteFaqs(ctx context.Context, ids ...core.ID) error

	// GetFaq retrieves a single FAQ record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetFaq(ctx context.Context, id core.ID) (*core.FaqRecord, error)

	// GetFaqs retrieves multiple FAQ records by their IDs, in the order
	// given. Returns ErrNotFound if any record doesn't exist.
	GetFaqs(ctx context.Context, ids ...core.ID) ([]*core.FaqRecord, error)

	// GetFaqByQuestion retrieves a record by its question text, matched
	// case-insensitively. Returns ErrNotFound if no such question exists.
	GetFaqByQuestion(ctx context.Context, question string) (*core.FaqRecord, error)

	// Snapshot returns the full knowledge base as an ordered list: oldest
	// insertion first, record ID as tie-break. The matching engine's
	// tie-break rule keys on this order, so it must be stable across calls
	// for an unchanged knowledge base.
	Snapshot(ctx context.Context) ([]*core.FaqRecord, error)

	// ListUnembedded returns the records that have no embedding vector yet,
	// in snapshot order. Used by the ingest pipeline.
	ListUnembedded(ctx context.Context) ([]*core.FaqRecord, error)
}

// CodeRepository is a time-bounded key-value store for short-lived
// verification codes. Entries expire on their own; expired entries behave
// exactly like absent ones.
type CodeRepository interface {
	// PutCode stores a code under key with the given time-to-live,
	// replacing any previous code for the key.
	PutCode(ctx context.Context, key, code string, ttl time.Duration) error

	// GetCode retrieves the code stored under key.
	// Returns ErrNotFound if the key is absent or the code has expired.
	GetCode(ctx context.Context, key string) (string, error)

	// DeleteCode removes the code stored under key, if any.
	DeleteCode(ctx context.Context, key string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
