package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/game-catalog/internal/config"
	"github.com/pribylovaa/game-catalog/internal/mocks"
	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/internal/rawg"
	"github.com/pribylovaa/game-catalog/internal/rawgtest"
)

// Файл unit-тестов для сервисного слоя (lookups.go, service.go).
//
// Покрываем:
//  - GameView:
//      * карточка и снимки собираются вместе;
//      * ошибка снимков не фатальна;
//      * маппинг 404 каталога → service.ErrNotFound;
//      * прочие ошибки прокидываются наверх;
//      * пустой id → ErrInvalidArgument без запросов.
//  - FilterOptions: оба справочника обязательны.
//  - InitialQuery: размер страницы из конфига.

// newSvcForTest — фабрика Service с мок-клиентом.
func newSvcForTest(t *testing.T, lookup Lookup) *Service {
	t.Helper()
	cfg := config.Config{
		RAWG: config.RAWGConfig{PageSize: 12},
	}
	return New(lookup, cfg)
}

// TestGameView_OK — happy-path: карточка и снимки.
func TestGameView_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	lk := mocks.NewMockLookup(ctrl)

	detail := &models.GameDetail{GameSummary: models.GameSummary{ID: 3498, Name: "Grand Theft Auto V"}}
	shots := []models.Screenshot{{ID: 1, ImageURL: "https://media.example.org/1.jpg"}}

	lk.EXPECT().GameDetails(gomock.Any(), "3498").Return(detail, nil)
	lk.EXPECT().Screenshots(gomock.Any(), "3498").Return(shots, nil)

	view, err := newSvcForTest(t, lk).GameView(context.Background(), " 3498 ")
	require.NoError(t, err)
	require.Equal(t, *detail, view.Detail)
	require.Equal(t, shots, view.Screenshots)
}

// TestGameView_ScreenshotsFailureIsNotFatal — снимки не загрузились, карточка есть.
func TestGameView_ScreenshotsFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	lk := mocks.NewMockLookup(ctrl)

	lk.EXPECT().GameDetails(gomock.Any(), "1").Return(&models.GameDetail{GameSummary: models.GameSummary{ID: 1, Name: "A"}}, nil)
	lk.EXPECT().Screenshots(gomock.Any(), "1").Return(nil, &rawg.NetworkError{Op: "screenshots", Err: errors.New("reset")})

	view, err := newSvcForTest(t, lk).GameView(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "A", view.Detail.Name)
	require.Empty(t, view.Screenshots)
}

// TestGameView_NotFound — 404 каталога → ErrNotFound.
func TestGameView_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	lk := mocks.NewMockLookup(ctrl)

	lk.EXPECT().GameDetails(gomock.Any(), "404").Return(nil, &rawg.UpstreamError{Op: "game_details", StatusCode: http.StatusNotFound})
	lk.EXPECT().Screenshots(gomock.Any(), "404").Return(nil, &rawg.UpstreamError{Op: "screenshots", StatusCode: http.StatusNotFound}).AnyTimes()

	_, err := newSvcForTest(t, lk).GameView(context.Background(), "404")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestGameView_PropagatesOtherErrors — прочие ошибки клиента не маскируются.
func TestGameView_PropagatesOtherErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	lk := mocks.NewMockLookup(ctrl)

	lk.EXPECT().GameDetails(gomock.Any(), "7").Return(nil, &rawg.UpstreamError{Op: "game_details", StatusCode: 500})
	lk.EXPECT().Screenshots(gomock.Any(), "7").Return(nil, nil).AnyTimes()

	_, err := newSvcForTest(t, lk).GameView(context.Background(), "7")
	require.ErrorIs(t, err, rawg.ErrUpstream)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestGameView_EmptyID — без запросов к каталогу.
func TestGameView_EmptyID(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	lk := mocks.NewMockLookup(ctrl)

	_, err := newSvcForTest(t, lk).GameView(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// TestFilterOptions — оба справочника; ошибка любого возвращается.
func TestFilterOptions(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		lk := mocks.NewMockLookup(ctrl)

		genres := []models.Genre{{ID: 4, Name: "Action", Slug: "action"}}
		platforms := []models.Platform{{ID: 4, Name: "PC", Slug: "pc"}}
		lk.EXPECT().Genres(gomock.Any()).Return(genres, nil)
		lk.EXPECT().Platforms(gomock.Any()).Return(platforms, nil)

		opts, err := newSvcForTest(t, lk).FilterOptions(context.Background())
		require.NoError(t, err)
		require.Equal(t, genres, opts.Genres)
		require.Equal(t, platforms, opts.Platforms)
	})

	t.Run("platforms_fail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		lk := mocks.NewMockLookup(ctrl)

		lk.EXPECT().Genres(gomock.Any()).Return(nil, nil).AnyTimes()
		lk.EXPECT().Platforms(gomock.Any()).Return(nil, &rawg.NetworkError{Op: "platforms", Err: context.DeadlineExceeded})

		_, err := newSvcForTest(t, lk).FilterOptions(context.Background())
		require.ErrorIs(t, err, rawg.ErrNetwork)
		require.Contains(t, err.Error(), "platforms")
	})
}

// TestGameView_AgainstFakeCatalog — сквозной путь через настоящий клиент.
func TestGameView_AgainstFakeCatalog(t *testing.T) {
	t.Parallel()

	srv := rawgtest.New("k")
	t.Cleanup(srv.Close)
	games := rawgtest.GenerateGames(3)
	games[1].Description = "Second game."
	games[1].Screenshots = []string{"https://media.example.org/s1.jpg", "https://media.example.org/s2.jpg"}
	srv.SetGames(games)

	client, err := rawg.New(srv.Client(), rawg.Config{BaseURL: srv.BaseURL(), APIKey: "k"})
	require.NoError(t, err)
	svc := newSvcForTest(t, client)

	view, err := svc.GameView(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, "Game 002", view.Detail.Name)
	require.Equal(t, "Second game.", view.Detail.Description)
	require.Len(t, view.Screenshots, 2)

	_, err = svc.GameView(context.Background(), "999")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestInitialQuery — размер страницы из конфига, окно дат для новинок.
func TestInitialQuery(t *testing.T) {
	t.Parallel()

	svc := newSvcForTest(t, nil)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	st := svc.InitialQuery(query.ModePopular, now)
	require.Equal(t, query.ModePopular, st.Mode)
	require.Equal(t, 12, st.PageSize)
	require.Equal(t, 1, st.Page)

	nr := svc.InitialQuery(query.ModeNewReleases, now)
	require.Equal(t, query.ModeNewReleases, nr.Mode)
	require.Equal(t, query.RecentRange(now, query.PresetMonth), nr.Dates)
	require.Equal(t, 12, nr.PageSize)
}
