// pager — контроллер постраничной загрузки выдачи каталога.
//
// Controller владеет одним query.State и одним Result. Поддерживаются две
// семантики: замена страницы (SetQuery/Refetch) и дозагрузка в конец (LoadMore).
// Ответы устаревших запросов отбрасываются по счётчику поколений; сетевые
// запросы при этом не отменяются.
package pager

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/pkg/log"
)

// Catalog — источник страниц (реализуется rawg.Client).
type Catalog interface {
	FetchPage(ctx context.Context, s query.State) (*models.Page, error)
}

// Option настраивает Controller.
type Option func(*Controller)

// WithObserver подписывает fn на каждое изменение Result.
// fn вызывается последовательно, в порядке переходов, и получает копию Result;
// вызывать методы контроллера из fn нельзя.
func WithObserver(fn func(Result)) Option {
	return func(c *Controller) { c.observer = fn }
}

// Controller — состояние выдачи одного экрана. Безопасен для конкурентного использования.
type Controller struct {
	catalog  Catalog
	observer func(Result)

	mu     sync.Mutex
	state  query.State
	result Result
	gen    uint64
	closed bool

	// notifyMu упорядочивает вызовы observer.
	notifyMu sync.Mutex
}

// New создаёт контроллер в состоянии idle. Загрузка не начинается до первого
// SetQuery/Refetch.
func New(catalog Catalog, initial query.State, opts ...Option) *Controller {
	c := &Controller{
		catalog: catalog,
		state:   initial,
		result: Result{
			Status:   StatusIdle,
			Page:     initial.Page,
			PageSize: initial.PageSize,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshot возвращает копию текущего Result.
func (c *Controller) Snapshot() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.result.clone()
}

// Query возвращает состояние, которое сейчас загружено или загружается.
func (c *Controller) Query() query.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// SetQuery делает next текущим состоянием и загружает его с заменой списка.
// Статус сразу становится loading, прежняя ошибка сбрасывается, запрос в полёте
// (если есть) становится устаревшим. Блокирует до завершения загрузки и
// возвращает итоговый Result (или актуальный снимок, если ответ устарел).
func (c *Controller) SetQuery(ctx context.Context, next query.State) Result {
	return c.replace(ctx, "pager.SetQuery", func(query.State) query.State { return next })
}

// Refetch перезагружает текущую выборку с первой страницы (ручной повтор,
// сброс фильтров).
func (c *Controller) Refetch(ctx context.Context) Result {
	return c.replace(ctx, "pager.Refetch", func(cur query.State) query.State { return cur.WithPage(1) })
}

// LoadMore дозагружает следующую страницу и дописывает её элементы в конец.
//
// Особенности:
//   - выполняется только при status == success и HasNext; иначе сразу
//     возвращает текущий снимок без запроса;
//   - при ошибке уже показанные элементы сохраняются, а страница состояния
//     остаётся прежней.
func (c *Controller) LoadMore(ctx context.Context) Result {
	const op = "pager.LoadMore"

	lg := log.From(ctx)

	c.mu.Lock()
	if c.closed || c.result.Status != StatusSuccess || !c.result.HasNext {
		lg.Debug("load_more_skipped",
			slog.String("op", op),
			slog.String("status", string(c.result.Status)),
			slog.Bool("has_next", c.result.HasNext),
		)
		res := c.result.clone()
		c.mu.Unlock()
		return res
	}

	prev := c.state
	next := prev.NextPage()
	c.state = next
	c.gen++
	gen := c.gen
	c.result.Status = StatusLoading
	c.result.ErrorMessage = ""
	c.result.Err = nil
	c.publishLocked()

	lg.Debug("fetch_start",
		slog.String("op", op),
		slog.Int("page", next.Page),
		slog.Uint64("gen", gen),
	)

	page, err := c.catalog.FetchPage(ctx, next)
	if err == nil && page == nil {
		page = &models.Page{}
	}

	c.mu.Lock()
	if !c.currentLocked(gen) {
		res := c.result.clone()
		c.mu.Unlock()
		lg.Debug("fetch_stale_discarded", slog.String("op", op), slog.Uint64("gen", gen))
		return res
	}

	if err != nil {
		c.state = prev
		c.result.Status = StatusError
		c.result.ErrorMessage = Message(err)
		c.result.Err = err
		lg.Warn("fetch_failed",
			slog.String("op", op),
			slog.Int("page", next.Page),
			slog.String("err", err.Error()),
		)
	} else {
		c.result.Items = append(c.result.Items, page.Items...)
		c.result.TotalCount = page.Count
		c.result.HasNext = page.HasNext()
		c.result.Status = StatusSuccess
		c.result.Page = next.Page
		c.result.PageSize = next.PageSize
		lg.Debug("fetch_applied",
			slog.String("op", op),
			slog.Int("page", next.Page),
			slog.Int("items", len(c.result.Items)),
		)
	}

	return c.publishLocked()
}

// Close отключает контроллер: ответы запросов в полёте больше не применяются,
// последующие вызовы ничего не загружают. Повторный вызов безопасен.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.gen++
}

// replace — общая часть SetQuery и Refetch: загрузка с заменой списка.
func (c *Controller) replace(ctx context.Context, op string, nextOf func(query.State) query.State) Result {
	lg := log.From(ctx)

	c.mu.Lock()
	if c.closed {
		res := c.result.clone()
		c.mu.Unlock()
		return res
	}

	next := nextOf(c.state)
	c.state = next
	c.gen++
	gen := c.gen
	c.result.Status = StatusLoading
	c.result.ErrorMessage = ""
	c.result.Err = nil
	c.publishLocked()

	lg.Debug("fetch_start",
		slog.String("op", op),
		slog.String("mode", string(next.Mode)),
		slog.Int("page", next.Page),
		slog.Uint64("gen", gen),
	)

	page, err := c.catalog.FetchPage(ctx, next)
	if err == nil && page == nil {
		page = &models.Page{}
	}

	c.mu.Lock()
	if !c.currentLocked(gen) {
		res := c.result.clone()
		c.mu.Unlock()
		lg.Debug("fetch_stale_discarded", slog.String("op", op), slog.Uint64("gen", gen))
		return res
	}

	if err != nil {
		c.result = Result{
			Status:       StatusError,
			ErrorMessage: Message(err),
			Err:          err,
			Page:         next.Page,
			PageSize:     next.PageSize,
		}
		lg.Warn("fetch_failed",
			slog.String("op", op),
			slog.Int("page", next.Page),
			slog.String("err", err.Error()),
		)
	} else {
		c.result = Result{
			// копия: дальнейший LoadMore дописывает в Items и не должен задевать массив каталога.
			Items:      slices.Clone(page.Items),
			TotalCount: page.Count,
			HasNext:    page.HasNext(),
			Status:     StatusSuccess,
			Page:       next.Page,
			PageSize:   next.PageSize,
		}
		lg.Debug("fetch_applied",
			slog.String("op", op),
			slog.Int("page", next.Page),
			slog.Int("items", len(page.Items)),
			slog.Int("total", page.Count),
		)
	}

	return c.publishLocked()
}

// currentLocked сообщает, актуален ли ответ поколения gen. Вызывается под c.mu.
func (c *Controller) currentLocked(gen uint64) bool {
	return !c.closed && gen == c.gen
}

// publishLocked снимает копию Result, отпускает c.mu и уведомляет observer.
// Вызывается под c.mu; возвращается без него.
func (c *Controller) publishLocked() Result {
	res := c.result.clone()

	if c.observer == nil {
		c.mu.Unlock()
		return res
	}

	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.observer(res.clone())
	return res
}
