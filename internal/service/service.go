// service содержит составные операции каталога поверх клиента RAWG.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/game-catalog/internal/config"
	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/query"
)

var (
	// ErrNotFound — игра отсутствует в каталоге.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — некорректные входные аргументы.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Lookup — одиночные запросы к каталогу (реализуется rawg.Client).
type Lookup interface {
	GameDetails(ctx context.Context, id string) (*models.GameDetail, error)
	Screenshots(ctx context.Context, id string) ([]models.Screenshot, error)
	Genres(ctx context.Context) ([]models.Genre, error)
	Platforms(ctx context.Context) ([]models.Platform, error)
}

// Service — составные операции каталога.
type Service struct {
	lookup Lookup
	cfg    config.Config
}

// New создает новый экземпляр Service.
func New(lookup Lookup, cfg config.Config) *Service {
	return &Service{
		lookup: lookup,
		cfg:    cfg,
	}
}

// InitialQuery — стартовое состояние выдачи для режима m с размером страницы из конфига.
// Для new-releases окно дат (последний месяц) фиксируется относительно now.
func (s *Service) InitialQuery(m query.Mode, now time.Time) query.State {
	return query.New(m).Resolve(now).WithPageSize(s.cfg.RAWG.PageSize)
}
