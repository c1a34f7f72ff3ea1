package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqbot/storage"
)

// CodeRepository stores short-lived verification codes with a TTL enforced
// by the storage engine.
type CodeRepository struct {
	backend *Backend
}

var _ storage.CodeRepository = (*CodeRepository)(nil)

// NewCodeRepository creates a new CodeRepository.
func NewCodeRepository(backend *Backend) (*CodeRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &CodeRepository{backend: backend}, nil
}

// PutCode stores a verification code under key, expiring after ttl.
func (r *CodeRepository) PutCode(ctx context.Context, key string, code string, ttl time.Duration) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeVerifyCodeKey(key), []byte(code)).WithTTL(ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetCode retrieves a stored verification code. Expired or missing codes
// return storage.ErrNotFound.
func (r *CodeRepository) GetCode(ctx context.Context, key string) (string, error) {
	var code string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVerifyCodeKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			code = string(val)
			return nil
		})
	}, false)
	return code, err
}

// DeleteCode removes a verification code before its TTL elapses.
// Deleting a missing code is not an error.
func (r *CodeRepository) DeleteCode(ctx context.Context, key string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeVerifyCodeKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close releases repository resources.
func (r *CodeRepository) Close() error {
	return nil
}
