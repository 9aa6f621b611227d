// rawg — клиент REST API каталога игр RAWG.
//
// Клиент переводит query.State в один исходящий запрос и приводит ответ
// к доменным моделям, скрывая формат каталога. Между вызовами состояние
// не хранится (кроме транспортной обвязки: лимитер, singleflight, метрики).
// Повторы запросов клиент не делает: политика повторов — забота вызывающего.
package rawg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/pkg/log"
	"github.com/pribylovaa/game-catalog/pkg/redact"
)

// DefaultBaseURL — публичный адрес API каталога.
const DefaultBaseURL = "https://api.rawg.io/api"

// maxBodySize ограничивает чтение тела ответа.
const maxBodySize = 8 << 20

// Config — параметры клиента.
type Config struct {
	// BaseURL — корень API (по умолчанию DefaultBaseURL).
	BaseURL string
	// APIKey — ключ, передаётся параметром key в каждом запросе.
	APIKey string
	// Locale — параметр locale для локализуемых выдач (пусто — не передаётся).
	Locale string
	// RPS — лимит запросов в секунду на стороне клиента (<= 0 — без лимита).
	RPS float64
	// Burst — допустимый всплеск для лимитера (<= 0 — 1).
	Burst int
	// Metrics — метрики запросов (nil — не пишутся).
	Metrics *Metrics
}

// Client реализует доступ к каталогу. Безопасен для конкурентного использования.
type Client struct {
	http    *http.Client
	base    *url.URL
	apiKey  string
	locale  string
	limiter *rate.Limiter
	metrics *Metrics
	group   singleflight.Group
}

// New создаёт клиент. HTTP-клиент настраивается извне (таймауты, прокси и т.д.).
func New(client *http.Client, cfg Config) (*Client, error) {
	const op = "rawg.New"

	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%s: base url must be http(s): %q", op, raw)
	}

	c := &Client{
		http:    client,
		base:    base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		locale:  strings.TrimSpace(cfg.Locale),
		metrics: cfg.Metrics,
	}

	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return c, nil
}

// FetchPage загружает одну страницу списочной выдачи для состояния s.
//
// Ошибки:
//   - query.ErrInvalidArgument — состояние не проходит Validate (запрос не отправляется);
//   - *NetworkError (ErrNetwork) — ответ не получен;
//   - *UpstreamError (ErrUpstream) — каталог ответил ошибкой.
//
// Пустая выдача — не ошибка: возвращается страница с Items == [] и Count == 0.
func (c *Client) FetchPage(ctx context.Context, s query.State) (*models.Page, error) {
	const op = "rawg.FetchPage"

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp gamesResponse
	if err := c.get(ctx, "games", []string{"games"}, s.Params().Values(), true, &resp); err != nil {
		return nil, err
	}

	return resp.toPage(), nil
}

// GameDetails возвращает полную карточку игры по id или slug.
// Одновременные запросы одной и той же игры схлопываются в один вызов.
func (c *Client) GameDetails(ctx context.Context, id string) (*models.GameDetail, error) {
	const op = "rawg.GameDetails"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%s: %w: empty id", op, query.ErrInvalidArgument)
	}

	v, err := c.shared(ctx, "game_details", "details:"+id, func(ctx context.Context) (any, error) {
		var dto detailDTO
		if err := c.get(ctx, "game_details", []string{"games", id}, nil, true, &dto); err != nil {
			return nil, err
		}

		detail, ok := dto.toDetail()
		if !ok {
			return nil, &UpstreamError{Op: "game_details", StatusCode: http.StatusOK, Message: "game without id or name"}
		}
		return detail, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.GameDetail), nil
}

// Screenshots возвращает снимки экрана игры.
func (c *Client) Screenshots(ctx context.Context, id string) ([]models.Screenshot, error) {
	const op = "rawg.Screenshots"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%s: %w: empty id", op, query.ErrInvalidArgument)
	}

	var resp screenshotsResponse
	if err := c.get(ctx, "screenshots", []string{"games", id, "screenshots"}, nil, false, &resp); err != nil {
		return nil, err
	}

	return resp.toModels(), nil
}

// Genres возвращает справочник жанров.
func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	v, err := c.shared(ctx, "genres", "genres", func(ctx context.Context) (any, error) {
		var resp namedListResponse
		if err := c.get(ctx, "genres", []string{"genres"}, nil, true, &resp); err != nil {
			return nil, err
		}
		return resp.toGenres(), nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]models.Genre), nil
}

// Platforms возвращает справочник платформ.
func (c *Client) Platforms(ctx context.Context) ([]models.Platform, error) {
	v, err := c.shared(ctx, "platforms", "platforms", func(ctx context.Context) (any, error) {
		var resp namedListResponse
		if err := c.get(ctx, "platforms", []string{"platforms"}, nil, true, &resp); err != nil {
			return nil, err
		}
		return resp.toPlatforms(), nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]models.Platform), nil
}

// shared выполняет fn один раз на все одновременные вызовы с ключом key.
// Общий вызов не наследует отмену ни одного из вызывающих (его ограничивает
// таймаут http.Client); каждый вызывающий перестаёт ждать по своему ctx.
func (c *Client) shared(ctx context.Context, endpoint, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, &NetworkError{Op: endpoint, Err: ctx.Err()}
	case res := <-ch:
		return res.Val, res.Err
	}
}

// get выполняет GET base/path?params и декодирует 2xx-ответ в out.
// endpoint — стабильное имя вызова для логов, ошибок и метрик.
func (c *Client) get(ctx context.Context, endpoint string, path []string, params url.Values, localized bool, out any) error {
	const op = "rawg.get"

	reqID := uuid.NewString()
	ctx, lg := log.With(ctx,
		slog.String("request_id", reqID),
		slog.String("endpoint", endpoint),
	)

	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.observe(endpoint, outcomeNetwork, time.Since(start))
			return &NetworkError{Op: endpoint, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(path, params, localized), nil)
	if err != nil {
		return fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		// текст *url.Error содержит полный URL вместе с key.
		err = redact.Err(err)
		c.metrics.observe(endpoint, outcomeNetwork, time.Since(start))
		lg.Warn("http_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return &NetworkError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.observe(endpoint, outcomeNetwork, time.Since(start))
		lg.Warn("read_body_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return &NetworkError{Op: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.observe(endpoint, outcomeUpstream, time.Since(start))
		upErr := &UpstreamError{Op: endpoint, StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
		lg.Warn("upstream_error",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", upErr.Message),
		)
		return upErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.metrics.observe(endpoint, outcomeUpstream, time.Since(start))
		lg.Warn("decode_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return &UpstreamError{Op: endpoint, StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}

	c.metrics.observe(endpoint, outcomeOK, time.Since(start))
	lg.Debug("catalog_call_ok",
		slog.String("op", op),
		slog.Duration("dur", time.Since(start)),
	)

	return nil
}

// endpointURL собирает абсолютный URL вызова. Ключ API и locale добавляются к params.
func (c *Client) endpointURL(path []string, params url.Values, localized bool) string {
	escaped := make([]string, 0, len(path))
	for _, p := range path {
		escaped = append(escaped, url.PathEscape(p))
	}

	u := *c.base
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(path, "/")

	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	if localized && c.locale != "" {
		q.Set("locale", c.locale)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// IsRetryable сообщает, имеет ли смысл пользователю повторить запрос вручную.
func IsRetryable(err error) bool {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.StatusCode >= 500 || up.StatusCode == http.StatusTooManyRequests
	}
	return errors.Is(err, ErrNetwork)
}
