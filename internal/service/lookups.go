package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/rawg"
	"github.com/pribylovaa/game-catalog/pkg/log"
)

// GameView возвращает карточку игры вместе со снимками экрана.
// Карточка и снимки запрашиваются параллельно.
//
// Ошибки:
//   - ErrInvalidArgument — пустой id;
//   - ErrNotFound — каталог ответил 404 на запрос карточки;
//   - прочие ошибки клиента — обёрнутые и прокинуты наверх.
//
// Ошибка загрузки снимков не фатальна: карточка возвращается без них.
func (s *Service) GameView(ctx context.Context, id string) (*models.GameView, error) {
	const op = "service.lookups.GameView"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%s: %w: empty id", op, ErrInvalidArgument)
	}

	lg := log.From(ctx)
	lg.Info("game_view_request",
		slog.String("op", op),
		slog.String("id", id),
	)

	var (
		detail *models.GameDetail
		shots  []models.Screenshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.lookup.GameDetails(gctx, id)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		sc, err := s.lookup.Screenshots(gctx, id)
		if err != nil {
			lg.Warn("screenshots_failed",
				slog.String("op", op),
				slog.String("id", id),
				slog.String("err", err.Error()),
			)
			return nil
		}
		shots = sc
		return nil
	})

	if err := g.Wait(); err != nil {
		if isNotFound(err) {
			lg.Warn("game_not_found",
				slog.String("op", op),
				slog.String("id", id),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("game_view_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("game_view_ok",
		slog.String("op", op),
		slog.Int64("game_id", detail.ID),
		slog.Int("screenshots", len(shots)),
	)

	return &models.GameView{Detail: *detail, Screenshots: shots}, nil
}

// FilterOptions загружает справочники жанров и платформ параллельно.
// Нужны оба: ошибка любого запроса возвращается вызывающему.
func (s *Service) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	const op = "service.lookups.FilterOptions"

	lg := log.From(ctx)

	var out models.FilterOptions

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		genres, err := s.lookup.Genres(gctx)
		if err != nil {
			return fmt.Errorf("genres: %w", err)
		}
		out.Genres = genres
		return nil
	})
	g.Go(func() error {
		platforms, err := s.lookup.Platforms(gctx)
		if err != nil {
			return fmt.Errorf("platforms: %w", err)
		}
		out.Platforms = platforms
		return nil
	})

	if err := g.Wait(); err != nil {
		lg.Error("filter_options_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("filter_options_ok",
		slog.String("op", op),
		slog.Int("genres", len(out.Genres)),
		slog.Int("platforms", len(out.Platforms)),
	)

	return &out, nil
}

func isNotFound(err error) bool {
	var up *rawg.UpstreamError
	return errors.As(err, &up) && up.StatusCode == http.StatusNotFound
}
