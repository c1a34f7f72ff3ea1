package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/storage"
)

// FaqRepository implements storage.FaqRepository for BadgerDB.
//
// FAQ records are stored under content-based keys derived from their
// normalized question, so duplicate questions (case-insensitively) collide
// at the key level.
type FaqRepository struct {
	backend *Backend
}

var _ storage.FaqRepository = (*FaqRepository)(nil)

// NewFaqRepository creates a new FaqRepository.
func NewFaqRepository(backend *Backend) (*FaqRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &FaqRepository{backend: backend}, nil
}

// WithTransaction delegates to the backend.
func (r *FaqRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close releases repository resources. The backend itself is closed by its
// owner.
func (r *FaqRepository) Close() error {
	return nil
}

// AddFaqs adds one or more FAQ records to storage.
func (r *FaqRepository) AddFaqs(ctx context.Context, records ...*core.FaqRecord) ([]*core.FaqRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateFaqRecord(record); err != nil {
				return err
			}

			record.Id = core.IDFromQuestion(record.Question)
			key := makeFaqRecordKey(record.Id)

			// Reject case-insensitive question collisions
			existing, err := r.readFaqRecord(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				return storage.ErrDuplicateKey
			}

			// Truncate to the serializers' microsecond resolution so the
			// returned record matches what a later read produces.
			record.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
			record.UpdatedAt = record.InsertedAt

			if err := tx.Set(key, storage.MarshalFaqRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateFaqs updates existing FAQ records.
func (r *FaqRepository) UpdateFaqs(ctx context.Context, records ...*core.FaqRecord) ([]*core.FaqRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeFaqRecordKey(record.Id)

			old, err := r.readFaqRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			record.InsertedAt = old.InsertedAt
			record.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

			// A question change moves the record to its new content key
			// and invalidates the cached embedding.
			newID := core.IDFromQuestion(record.Question)
			if newID != record.Id {
				newKey := makeFaqRecordKey(newID)
				collision, err := r.readFaqRecord(tx, newKey)
				if err != nil {
					return err
				}
				if collision != nil {
					return storage.ErrDuplicateKey
				}
				if err := tx.Delete(key); err != nil {
					return err
				}
				record.Id = newID
				record.Vector = nil
				key = newKey
			}

			if err := tx.Set(key, storage.MarshalFaqRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteFaqs removes FAQ records by their IDs.
func (r *FaqRepository) DeleteFaqs(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFaqRecordKey(id)

			record, err := r.readFaqRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetFaq retrieves a single FAQ record by ID.
func (r *FaqRepository) GetFaq(ctx context.Context, id core.ID) (*core.FaqRecord, error) {
	var result *core.FaqRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readFaqRecord(tx, makeFaqRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetFaqs retrieves multiple FAQ records by ID, in the order given.
func (r *FaqRepository) GetFaqs(ctx context.Context, ids ...core.ID) ([]*core.FaqRecord, error) {
	results := make([]*core.FaqRecord, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readFaqRecord(tx, makeFaqRecordKey(id))
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetFaqByQuestion retrieves a record by its question text,
// matched case-insensitively through the content-based ID.
func (r *FaqRepository) GetFaqByQuestion(ctx context.Context, question string) (*core.FaqRecord, error) {
	return r.GetFaq(ctx, core.IDFromQuestion(question))
}

// Snapshot returns the full knowledge base ordered by insertion time, then ID.
func (r *FaqRepository) Snapshot(ctx context.Context) ([]*core.FaqRecord, error) {
	records, err := r.listFaqRecords(func(*core.FaqRecord) bool { return true })
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListUnembedded returns records without an embedding vector, in snapshot order.
func (r *FaqRepository) ListUnembedded(ctx context.Context) ([]*core.FaqRecord, error) {
	return r.listFaqRecords(func(record *core.FaqRecord) bool {
		return len(record.Vector) == 0
	})
}

// listFaqRecords iterates all FAQ records, keeps those accepted by keep, and
// sorts them into the stable snapshot order (InsertedAt, then Id).
func (r *FaqRepository) listFaqRecords(keep func(*core.FaqRecord) bool) ([]*core.FaqRecord, error) {
	var results []*core.FaqRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(faqRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.FaqRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalFaqRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil && keep(record) {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Badger iterates in key order; snapshot order is insertion order.
	slices.SortFunc(results, func(a, b *core.FaqRecord) int {
		if c := a.InsertedAt.Compare(b.InsertedAt); c != 0 {
			return c
		}
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	})

	return results, nil
}

// readFaqRecord reads and unmarshals a record by key.
// Returns nil, nil if the key doesn't exist.
func (r *FaqRepository) readFaqRecord(tx *badger.Txn, key []byte) (*core.FaqRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.FaqRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalFaqRecord(val)
		return unmarshalErr
	})
	return record, err
}
