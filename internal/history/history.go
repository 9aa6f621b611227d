// history — недавние поисковые запросы и подсказки при наборе.
//
// Список запросов общий для процесса: не длиннее Limit, без дублей, свежие первыми.
// Хранится JSON-массивом строк под одним ключом во внешнем storage.Store и
// переживает перезапуск до явной очистки.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/internal/storage"
	"github.com/pribylovaa/game-catalog/pkg/log"
)

const (
	// DefaultKey — ключ, под которым хранится история.
	DefaultKey = "searchHistory"
	// Limit — максимальная длина истории.
	Limit = 5
	// MinSuggestLen — минимальная длина запроса (в символах) для подсказок.
	MinSuggestLen = 2
	// SuggestPageSize — сколько подсказок запрашивается у каталога.
	SuggestPageSize = 5
)

// Searcher — поиск по каталогу (реализуется rawg.Client).
type Searcher interface {
	FetchPage(ctx context.Context, s query.State) (*models.Page, error)
}

// Option настраивает Cache.
type Option func(*Cache)

// WithKey задаёт ключ хранилища вместо DefaultKey.
func WithKey(key string) Option {
	return func(c *Cache) {
		if key = strings.TrimSpace(key); key != "" {
			c.key = key
		}
	}
}

// Cache — история поиска и подсказки. Безопасен для конкурентного использования;
// одновременные записи разрешаются по принципу last-write-wins.
type Cache struct {
	store    storage.Store
	searcher Searcher
	key      string

	mu      sync.Mutex
	entries []string
}

// New создаёт кэш и загружает сохранённую историю.
//
// Особенности:
//   - отсутствие ключа — пустая история;
//   - нечитаемое значение игнорируется с предупреждением в логе (история одноразовая);
//   - ошибка самого хранилища возвращается вызывающему.
func New(ctx context.Context, store storage.Store, searcher Searcher, opts ...Option) (*Cache, error) {
	const op = "history.New"

	c := &Cache{
		store:    store,
		searcher: searcher,
		key:      DefaultKey,
	}
	for _, opt := range opts {
		opt(c)
	}

	raw, err := store.Get(ctx, c.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.From(ctx).Warn("history_corrupted",
			slog.String("op", op),
			slog.String("key", c.key),
			slog.String("err", err.Error()),
		)
		return c, nil
	}

	c.entries = normalize(stored)
	return c, nil
}

// Entries возвращает копию истории, свежие запросы первыми.
func (c *Cache) Entries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.entries)
}

// Record переносит term в начало истории, убирая его прежнее вхождение, обрезает
// историю до Limit и сразу сохраняет её. Пустой term игнорируется.
// При ошибке сохранения история в памяти не меняется.
func (c *Cache) Record(ctx context.Context, term string) error {
	const op = "history.Record"

	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]string, 0, Limit)
	next = append(next, term)
	for _, e := range c.entries {
		if len(next) == Limit {
			break
		}
		if e != term {
			next = append(next, e)
		}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.entries = next
	return nil
}

// Clear очищает историю и удаляет сохранённую запись.
func (c *Cache) Clear(ctx context.Context) error {
	const op = "history.Clear"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.entries = nil
	return nil
}

// Suggest возвращает названия игр, подходящих под term, в порядке каталога.
//
// Особенности:
//   - term короче MinSuggestLen символов — пустой список без запроса;
//   - ошибки каталога не возвращаются: подсказки необязательны, ошибка
//     пишется в лог, результат пустой.
func (c *Cache) Suggest(ctx context.Context, term string) []string {
	const op = "history.Suggest"

	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSuggestLen {
		return []string{}
	}

	page, err := c.searcher.FetchPage(ctx, query.Search(term).WithPageSize(SuggestPageSize))
	if err != nil {
		log.From(ctx).Warn("suggest_failed",
			slog.String("op", op),
			slog.String("term", term),
			slog.String("err", err.Error()),
		)
		return []string{}
	}
	if page == nil {
		return []string{}
	}

	names := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		names = append(names, it.Name)
	}
	return names
}

// normalize приводит сохранённый список к инвариантам истории.
func normalize(in []string) []string {
	out := make([]string, 0, Limit)
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
		if len(out) == Limit {
			break
		}
	}
	return out
}
