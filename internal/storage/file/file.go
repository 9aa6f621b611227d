// file — хранилище «ключ -> файл» в каталоге на диске.
// Запись атомарна: временный файл + rename в том же каталоге.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pribylovaa/game-catalog/internal/storage"
)

var reKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store реализует storage.Store: значение ключа key лежит в <dir>/<key>.json.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New создаёт хранилище в dir (каталог создаётся при необходимости).
func New(dir string) (*Store, error) {
	const op = "storage.file.New"

	if dir == "" {
		return nil, fmt.Errorf("%s: empty dir", op)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: mkdir: %w", op, err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "." || key == ".." || !reKey.MatchString(key) {
		return "", fmt.Errorf("storage.file: bad key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.file.Get"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const op = "storage.file.Set"

	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: create temp: %w", op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%s: close: %w", op, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%s: rename: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "storage.file.Delete"

	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
