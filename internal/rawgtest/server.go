// rawgtest поднимает фейковый каталог RAWG поверх httptest для тестов клиента,
// контроллера пагинации и кэша истории поиска.
//
// Сервер повторяет форму ответов каталога (count/next/results, {platform: {...}},
// тела ошибок {"error"}/{"detail"}) и поддерживает фильтры search/genres/platforms,
// постраничную выдачу и инъекцию ошибок по имени эндпоинта.
package rawgtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Имена эндпоинтов для SetFailure/SetHook.
const (
	EndpointGames       = "games"
	EndpointDetails     = "game_details"
	EndpointScreenshots = "screenshots"
	EndpointGenres      = "genres"
	EndpointPlatforms   = "platforms"
)

// Game — игра фейкового каталога.
type Game struct {
	ID          int64
	Name        string
	Slug        string
	Image       string
	Released    string
	Rating      float64
	Metacritic  int
	GenreIDs    []int64
	PlatformIDs []int64
	Description string
	Screenshots []string
}

// Named — жанр или платформа.
type Named struct {
	ID   int64
	Name string
}

// Failure — ответ с ошибкой для эндпоинта.
type Failure struct {
	Status int
	// Body — тело ответа как есть (пусто — {"error": "..."}).
	Body string
}

// Server — фейковый каталог.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	apiKey    string
	games     []Game
	genres    []Named
	platforms []Named
	failures  map[string]Failure
	hooks     map[string]func(*http.Request)
	calls     []Call
}

// Call — запись о принятом запросе.
type Call struct {
	Endpoint string
	Path     string
	Query    url.Values
	Header   http.Header
}

// New запускает сервер; apiKey != "" — запросы без key=apiKey получают 401.
// Сервер закрывается в t.Cleanup вызывающего через Close.
func New(apiKey string) *Server {
	s := &Server{
		apiKey:   apiKey,
		failures: make(map[string]Failure),
		hooks:    make(map[string]func(*http.Request)),
	}

	r := chi.NewRouter()
	r.Get("/api/games", s.wrap(EndpointGames, s.handleGames))
	r.Get("/api/games/{id}", s.wrap(EndpointDetails, s.handleDetails))
	r.Get("/api/games/{id}/screenshots", s.wrap(EndpointScreenshots, s.handleScreenshots))
	r.Get("/api/genres", s.wrap(EndpointGenres, s.handleNamed(func() []Named { return s.genres })))
	r.Get("/api/platforms", s.wrap(EndpointPlatforms, s.handleNamed(func() []Named { return s.platforms })))

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL — корень API фейкового каталога.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// SetGames заменяет каталог игр.
func (s *Server) SetGames(games []Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append([]Game(nil), games...)
}

// SetGenres заменяет справочник жанров.
func (s *Server) SetGenres(g []Named) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres = append([]Named(nil), g...)
}

// SetPlatforms заменяет справочник платформ.
func (s *Server) SetPlatforms(p []Named) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platforms = append([]Named(nil), p...)
}

// SetFailure заставляет эндпоинт отвечать ошибкой; Status == 0 снимает инъекцию.
func (s *Server) SetFailure(endpoint string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status == 0 {
		delete(s.failures, endpoint)
		return
	}
	s.failures[endpoint] = f
}

// SetHook вызывает fn перед обработкой каждого запроса к эндпоинту (например, чтобы придержать ответ).
func (s *Server) SetHook(endpoint string, fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.hooks, endpoint)
		return
	}
	s.hooks[endpoint] = fn
}

// Calls возвращает копию журнала запросов.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo возвращает запросы к одному эндпоинту.
func (s *Server) CallsTo(endpoint string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) wrap(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Endpoint: endpoint,
			Path:     r.URL.Path,
			Query:    r.URL.Query(),
			Header:   r.Header.Clone(),
		})
		hook := s.hooks[endpoint]
		failure, failing := s.failures[endpoint]
		key := s.apiKey
		s.mu.Unlock()

		if hook != nil {
			hook(r)
		}

		if key != "" && r.URL.Query().Get("key") != key {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "The key parameter is not provided"})
			return
		}

		if failing {
			if failure.Body != "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(failure.Status)
				_, _ = w.Write([]byte(failure.Body))
				return
			}
			writeJSON(w, failure.Status, map[string]string{"error": http.StatusText(failure.Status)})
			return
		}

		h(w, r)
	}
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	size := atoiDefault(q.Get("page_size"), 20)

	s.mu.Lock()
	var matched []Game
	for _, g := range s.games {
		if matches(g, q) {
			matched = append(matched, g)
		}
	}
	s.mu.Unlock()

	from := (page - 1) * size
	if from > len(matched) {
		from = len(matched)
	}
	to := from + size
	if to > len(matched) {
		to = len(matched)
	}

	results := make([]map[string]any, 0, to-from)
	for _, g := range matched[from:to] {
		results = append(results, gameJSON(g))
	}

	var next any
	if to < len(matched) {
		nq := cloneValues(q)
		nq.Set("page", strconv.Itoa(page+1))
		next = fmt.Sprintf("%s%s?%s", s.URL, r.URL.Path, nq.Encode())
	}
	var prev any
	if page > 1 {
		pq := cloneValues(q)
		pq.Set("page", strconv.Itoa(page-1))
		prev = fmt.Sprintf("%s%s?%s", s.URL, r.URL.Path, pq.Encode())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(matched),
		"next":     next,
		"previous": prev,
		"results":  results,
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	body := gameJSON(g)
	body["description_raw"] = g.Description
	body["website"] = "https://example.org/" + g.Slug
	body["playtime"] = 12
	body["developers"] = []map[string]any{{"id": 1, "name": "Dev Studio", "slug": "dev-studio"}}
	body["publishers"] = []map[string]any{{"id": 2, "name": "Big Publisher", "slug": "big-publisher"}}
	body["esrb_rating"] = map[string]any{"id": 4, "name": "Mature", "slug": "mature"}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleScreenshots(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	results := make([]map[string]any, 0, len(g.Screenshots))
	for i, img := range g.Screenshots {
		results = append(results, map[string]any{"id": i + 1, "image": img})
	}

	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}

func (s *Server) handleNamed(list func() []Named) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		items := list()
		results := make([]map[string]any, 0, len(items))
		for _, n := range items {
			results = append(results, namedJSON(n.ID, n.Name))
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "next": nil, "results": results})
	}
}

func (s *Server) lookup(id string) (Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if strconv.FormatInt(g.ID, 10) == id || (g.Slug != "" && g.Slug == id) {
			return g, true
		}
	}
	return Game{}, false
}

func matches(g Game, q url.Values) bool {
	if term := strings.ToLower(strings.TrimSpace(q.Get("search"))); term != "" {
		if !strings.Contains(strings.ToLower(g.Name), term) {
			return false
		}
	}
	if ids := q.Get("genres"); ids != "" && !containsAny(g.GenreIDs, ids) {
		return false
	}
	if ids := q.Get("platforms"); ids != "" && !containsAny(g.PlatformIDs, ids) {
		return false
	}
	return true
}

func containsAny(have []int64, csv string) bool {
	for _, raw := range strings.Split(csv, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		for _, h := range have {
			if h == id {
				return true
			}
		}
	}
	return false
}

func gameJSON(g Game) map[string]any {
	genres := make([]map[string]any, 0, len(g.GenreIDs))
	for _, id := range g.GenreIDs {
		genres = append(genres, namedJSON(id, fmt.Sprintf("Genre %d", id)))
	}
	platforms := make([]map[string]any, 0, len(g.PlatformIDs))
	for _, id := range g.PlatformIDs {
		platforms = append(platforms, map[string]any{"platform": namedJSON(id, fmt.Sprintf("Platform %d", id))})
	}

	body := map[string]any{
		"id":               g.ID,
		"slug":             g.Slug,
		"name":             g.Name,
		"background_image": nullable(g.Image),
		"rating":           g.Rating,
		"released":         nullable(g.Released),
		"genres":           genres,
		"platforms":        platforms,
	}
	if g.Metacritic > 0 {
		body["metacritic"] = g.Metacritic
	} else {
		body["metacritic"] = nil
	}
	return body
}

func namedJSON(id int64, name string) map[string]any {
	return map[string]any{"id": id, "name": name, "slug": strings.ToLower(strings.ReplaceAll(name, " ", "-"))}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GenerateGames строит n игр с ID 1..n и именами "Game 001".."Game n".
func GenerateGames(n int) []Game {
	games := make([]Game, 0, n)
	for i := 1; i <= n; i++ {
		games = append(games, Game{
			ID:          int64(i),
			Name:        fmt.Sprintf("Game %03d", i),
			Slug:        fmt.Sprintf("game-%03d", i),
			Image:       fmt.Sprintf("https://media.example.org/games/%03d.jpg", i),
			Released:    "2024-01-15",
			Rating:      4.2,
			Metacritic:  80,
			GenreIDs:    []int64{int64(i%5 + 1)},
			PlatformIDs: []int64{4},
		})
	}
	return games
}
