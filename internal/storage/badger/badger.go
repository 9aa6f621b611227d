// badger — встроенное хранилище на BadgerDB (без внешних сервисов).
package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/pribylovaa/game-catalog/internal/storage"
)

// keyPrefix отделяет ключи каталога от прочих данных в той же базе.
const keyPrefix = "catalog:"

// Store реализует storage.Store поверх *badger.DB.
type Store struct {
	db *badger.DB
}

// Open открывает (или создаёт) базу в каталоге dir.
func Open(dir string) (*Store, error) {
	const op = "storage.badger.Open"

	if dir == "" {
		return nil, fmt.Errorf("%s: empty dir", op)
	}

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory открывает базу без записи на диск.
func OpenInMemory() (*Store, error) {
	const op = "storage.badger.OpenInMemory"

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.badger.Get"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const op = "storage.badger.Set"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), value)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "storage.badger.Delete"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
