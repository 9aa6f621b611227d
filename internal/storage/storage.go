// storage определяет контракт долговременного key-value хранилища,
// в котором живёт история поиска. Реализации: file, redis, badger, memory.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound — ключ отсутствует в хранилище.
var ErrNotFound = errors.New("not found")

// Store — минимальный контракт key-value хранилища.
//
// Требования к реализации:
//  1. Get по отсутствующему ключу возвращает ErrNotFound;
//  2. Set перезаписывает значение целиком (last-write-wins);
//  3. Delete по отсутствующему ключу не является ошибкой;
//  4. реализация безопасна для конкурентного использования и уважает ctx.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
