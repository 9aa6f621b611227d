package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/game-catalog/internal/rawgtest"
)

// env — фейковый каталог и конфиг, указывающий на него.
type env struct {
	srv     *rawgtest.Server
	cfgPath string
}

// newEnv поднимает каталог из 500 игр; backend — бэкенд истории.
func newEnv(t *testing.T, backend string) *env {
	t.Helper()

	srv := rawgtest.New("cli-key")
	t.Cleanup(srv.Close)
	srv.SetGames(rawgtest.GenerateGames(500))
	srv.SetGenres([]rawgtest.Named{{ID: 2, Name: "Shooter"}, {ID: 4, Name: "Action"}})
	srv.SetPlatforms([]rawgtest.Named{{ID: 4, Name: "PC"}})

	dir := t.TempDir()
	yaml := fmt.Sprintf(`
env: prod
rawg:
  base_url: %q
  api_key: "cli-key"
  rps: 1000
  burst: 10
history:
  backend: %q
  path: %q
`, srv.BaseURL(), backend, filepath.Join(dir, "history"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	return &env{srv: srv, cfgPath: path}
}

// run выполняет команду CLI с заданным stdin и возвращает stdout.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &out, &errOut)
	err := cmd.Run(context.Background(), append([]string{"catalog", "--config", e.cfgPath}, args...))
	return out.String(), err
}

// TestList_NumberedPage — list печатает ровно запрошенную страницу.
func TestList_NumberedPage(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	out, err := e.run(t, "", "list", "--page", "2", "--page-size", "5")
	require.NoError(t, err)

	require.Contains(t, out, "popular · page 2/100 · 500 games")
	require.Contains(t, out, "Game 006")
	require.Contains(t, out, "Game 010")
	require.NotContains(t, out, "Game 011")
	require.Contains(t, out, "2024-01-15")

	calls := e.srv.CallsTo(rawgtest.EndpointGames)
	require.Len(t, calls, 1)
	require.Equal(t, "2", calls[0].Query.Get("page"))
	require.Equal(t, "5", calls[0].Query.Get("page_size"))
	require.Equal(t, "-metacritic,-rating", calls[0].Query.Get("ordering"))
	require.Equal(t, "es", calls[0].Query.Get("locale"))
}

// TestList_Filters — флаги фильтров попадают в запрос, пустые не передаются.
func TestList_Filters(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	out, err := e.run(t, "", "list", "--genre", "2", "--metacritic", "80", "--dates", "2024")
	require.NoError(t, err)
	require.Contains(t, out, "100 games · 3 filters")

	q := e.srv.CallsTo(rawgtest.EndpointGames)[0].Query
	require.Equal(t, "2", q.Get("genres"))
	require.Equal(t, "80,100", q.Get("metacritic"))
	require.Equal(t, "2024-01-01,2024-12-31", q.Get("dates"))
	require.False(t, q.Has("search"))
	require.False(t, q.Has("platforms"))
}

// TestList_UpstreamError — ошибка каталога становится ошибкой команды с понятным текстом.
func TestList_UpstreamError(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	e.srv.SetFailure(rawgtest.EndpointGames, rawgtest.Failure{Status: http.StatusInternalServerError})

	_, err := e.run(t, "", "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "The game catalog returned an error (500)")
}

// TestList_InvalidFlags — неверные значения отклоняются до запроса.
func TestList_InvalidFlags(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")

	_, err := e.run(t, "", "list", "--mode", "trending")
	require.Error(t, err)
	_, err = e.run(t, "", "list", "--min-rating", "9")
	require.Error(t, err)
	_, err = e.run(t, "", "list", "--preset", "decade")
	require.Error(t, err)
	_, err = e.run(t, "", "list", "--mode", "by-genre")
	require.Error(t, err)

	require.Empty(t, e.srv.CallsTo(rawgtest.EndpointGames))
}

// TestSearch_RecordsHistory — поиск запоминается и переживает перезапуск (file backend).
func TestSearch_RecordsHistory(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "file")

	out, err := e.run(t, "", "search", "game", "01")
	require.NoError(t, err)
	require.Contains(t, out, "search · page 1/1 · 10 games")
	require.Contains(t, out, "Game 010")

	out, err = e.run(t, "", "search", "xyzzyqqq123")
	require.NoError(t, err)
	require.Contains(t, out, "No games match the current filters")

	out, err = e.run(t, "", "history")
	require.NoError(t, err)
	require.Equal(t, "1. xyzzyqqq123\n2. game 01\n", out)

	out, err = e.run(t, "", "history", "clear")
	require.NoError(t, err)
	require.Contains(t, out, "search history cleared")

	out, err = e.run(t, "", "history")
	require.NoError(t, err)
	require.Contains(t, out, "search history is empty")

	_, err = e.run(t, "", "search")
	require.Error(t, err)
}

// TestBrowse_Session — дозагрузка, смена фильтра, переход на страницу, повтор.
func TestBrowse_Session(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	stdin := strings.Join([]string{
		"more",
		"set genre 2",
		"page 3",
		"set genre 2",
		"set min_rating 7",
		"bogus",
		"show",
		"unset genre",
		"quit",
		"more",
	}, "\n")

	out, err := e.run(t, stdin, "browse")
	require.NoError(t, err)

	require.Contains(t, out, "popular · page 1/25 · 500 games")
	require.Contains(t, out, "showing 40 of 500 games")
	require.Contains(t, out, "Game 040")
	require.Contains(t, out, "popular · page 1/5 · 100 games · 1 filters")
	require.Contains(t, out, "popular · page 3/5 · 100 games · 1 filters")
	require.Contains(t, out, "error: invalid argument: bad min_rating")
	require.Contains(t, out, "filters unchanged")
	require.Contains(t, out, `unknown command "bogus"`)
	require.Contains(t, out, "order: metacritic desc, rating desc")
	require.Contains(t, out, "request: genres=2&ordering=-metacritic%2C-rating&page=3&page_size=20")

	pages := []string{}
	for _, c := range e.srv.CallsTo(rawgtest.EndpointGames) {
		pages = append(pages, c.Query.Get("page"))
	}
	// после quit команда "more" не выполняется.
	require.Equal(t, []string{"1", "2", "1", "3", "1"}, pages)
}

// TestBrowse_NewReleasesKeepsDateWindow — новинки всегда запрашиваются с окном дат:
// и при переключении режима, и после снятия фильтра дат.
func TestBrowse_NewReleasesKeepsDateWindow(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	stdin := "set mode new-releases\nset dates 2020\nunset dates\nshow\nquit\n"

	out, err := e.run(t, stdin, "browse")
	require.NoError(t, err)
	require.Contains(t, out, "order: released desc")

	calls := e.srv.CallsTo(rawgtest.EndpointGames)
	require.Len(t, calls, 4)
	require.False(t, calls[0].Query.Has("dates"))

	month := calls[1].Query.Get("dates")
	require.NotEmpty(t, month)
	require.Equal(t, "-released", calls[1].Query.Get("ordering"))
	require.Equal(t, "2020-01-01,2020-12-31", calls[2].Query.Get("dates"))
	require.Equal(t, month, calls[3].Query.Get("dates"))
}

// TestList_NewReleasesEmptyDates — пустой --dates для новинок даёт окно последнего месяца.
func TestList_NewReleasesEmptyDates(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	_, err := e.run(t, "", "list", "--mode", "new-releases", "--dates", "")
	require.NoError(t, err)

	q := e.srv.CallsTo(rawgtest.EndpointGames)[0].Query
	require.NotEmpty(t, q.Get("dates"))
	require.Equal(t, "-released", q.Get("ordering"))
}

// TestBrowse_NonRetryableError — отказ по ключу не предлагает повтор.
func TestBrowse_NonRetryableError(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	e.srv.SetFailure(rawgtest.EndpointGames, rawgtest.Failure{Status: http.StatusUnauthorized})

	out, err := e.run(t, "quit\n", "browse")
	require.NoError(t, err)
	require.Contains(t, out, "error: The game catalog rejected the API key.")
	require.NotContains(t, out, "type 'retry'")
}

// TestBrowse_Help — справка перечисляет все ключи выборки.
func TestBrowse_Help(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	out, err := e.run(t, "help\nquit\n", "browse")
	require.NoError(t, err)
	require.Contains(t, out, "keys: mode text genre platform min_rating metacritic dates ordering page_size page")
}

// TestBrowse_LoadMoreFailureKeepsList — ошибка дозагрузки не стирает список.
func TestBrowse_LoadMoreFailureKeepsList(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	// инъекция действует со следующего запроса: первая страница грузится, вторая падает.
	e.srv.SetHook(rawgtest.EndpointGames, func(r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			e.srv.SetFailure(rawgtest.EndpointGames, rawgtest.Failure{Status: http.StatusBadGateway})
		}
	})

	out, err := e.run(t, "more\nmore\n", "browse")
	require.NoError(t, err)
	require.Contains(t, out, "error: The game catalog returned an error (502)")
	require.Contains(t, out, "20 games still shown")
	require.Contains(t, out, "nothing more to load")
}

// TestDetails — карточка с описанием и снимками; 404 — понятная ошибка.
func TestDetails(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	games := rawgtest.GenerateGames(3)
	games[1].Description = "A second game."
	games[1].Screenshots = []string{"https://media.example.org/shot.jpg"}
	e.srv.SetGames(games)

	out, err := e.run(t, "", "details", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Game 002")
	require.Contains(t, out, "A second game.")
	require.Contains(t, out, "Screenshots (1):")
	require.Contains(t, out, "Developers:  Dev Studio")

	_, err = e.run(t, "", "details", "999")
	require.Error(t, err)
	require.Contains(t, err.Error(), `game "999" not found`)
}

// TestFiltersGenresPlatforms — справочники.
func TestFiltersGenresPlatforms(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")

	out, err := e.run(t, "", "filters")
	require.NoError(t, err)
	require.Contains(t, out, "Genres (2):")
	require.Contains(t, out, "Platforms (1):")

	out, err = e.run(t, "", "genres")
	require.NoError(t, err)
	require.Contains(t, out, "Shooter")

	out, err = e.run(t, "", "platforms")
	require.NoError(t, err)
	require.Contains(t, out, "PC")
}

// TestSuggest — подсказки с двух символов.
func TestSuggest(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")

	out, err := e.run(t, "", "suggest", "game 04")
	require.NoError(t, err)
	require.Equal(t, "Game 040\nGame 041\nGame 042\nGame 043\nGame 044\n", out)

	out, err = e.run(t, "", "suggest", "g")
	require.NoError(t, err)
	require.Equal(t, "no suggestions\n", out)
}

// TestMetricsAddr — /metrics поднимается на время команды.
func TestMetricsAddr(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "memory")
	_, err := e.run(t, "", "--metrics-addr", "127.0.0.1:0", "genres")
	require.NoError(t, err)
}
