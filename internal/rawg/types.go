package rawg

import (
	"strings"
	"time"

	"github.com/pribylovaa/game-catalog/internal/models"
)

// Схемы ответов каталога. Поля, которые каталог может не прислать или прислать
// как null, объявлены указателями и приводятся к доменным значениям в to*-функциях,
// чтобы внутренние слои не проверяли наличие полей.

// gamesResponse — GET /games.
type gamesResponse struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []gameDTO `json:"results"`
}

// gameDTO — элемент списка игр.
type gameDTO struct {
	ID              int64              `json:"id"`
	Slug            string             `json:"slug"`
	Name            string             `json:"name"`
	BackgroundImage *string            `json:"background_image"`
	Rating          *float64           `json:"rating"`
	Metacritic      *int               `json:"metacritic"`
	Released        *string            `json:"released"`
	Genres          []namedDTO         `json:"genres"`
	Platforms       []platformEntryDTO `json:"platforms"`
}

// platformEntryDTO — обёртка {platform: {...}} из списков игр.
type platformEntryDTO struct {
	Platform *namedDTO `json:"platform"`
}

// namedDTO — общая форма жанра/платформы/студии.
type namedDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// detailDTO — GET /games/{id}.
type detailDTO struct {
	gameDTO
	DescriptionRaw string     `json:"description_raw"`
	Website        string     `json:"website"`
	Playtime       int        `json:"playtime"`
	Developers     []namedDTO `json:"developers"`
	Publishers     []namedDTO `json:"publishers"`
	ESRB           *namedDTO  `json:"esrb_rating"`
}

// screenshotsResponse — GET /games/{id}/screenshots.
type screenshotsResponse struct {
	Results []struct {
		ID    int64  `json:"id"`
		Image string `json:"image"`
	} `json:"results"`
}

// namedListResponse — GET /genres, GET /platforms.
type namedListResponse struct {
	Results []namedDTO `json:"results"`
}

// errorBody — тело ошибки каталога: {"error": "..."} или {"detail": "..."}.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// toPage приводит ответ к странице; записи без id/name отбрасываются.
func (r *gamesResponse) toPage() *models.Page {
	page := &models.Page{
		Items: make([]models.GameSummary, 0, len(r.Results)),
		Count: r.Count,
	}
	if r.Next != nil {
		page.Next = strings.TrimSpace(*r.Next)
	}

	for _, g := range r.Results {
		if s, ok := g.toSummary(); ok {
			page.Items = append(page.Items, s)
		}
	}

	return page
}

func (g *gameDTO) toSummary() (models.GameSummary, bool) {
	name := strings.TrimSpace(g.Name)
	if g.ID == 0 || name == "" {
		return models.GameSummary{}, false
	}

	s := models.GameSummary{
		ID:         g.ID,
		Slug:       g.Slug,
		Name:       name,
		ImageURL:   deref(g.BackgroundImage),
		Rating:     derefFloat(g.Rating),
		Metacritic: derefInt(g.Metacritic),
		Released:   parseDate(deref(g.Released)),
	}

	for _, genre := range g.Genres {
		s.Genres = append(s.Genres, models.Genre{ID: genre.ID, Name: genre.Name, Slug: genre.Slug})
	}
	for _, p := range g.Platforms {
		if p.Platform == nil {
			continue
		}
		s.Platforms = append(s.Platforms, models.Platform{ID: p.Platform.ID, Name: p.Platform.Name, Slug: p.Platform.Slug})
	}

	return s, true
}

func (d *detailDTO) toDetail() (*models.GameDetail, bool) {
	s, ok := d.toSummary()
	if !ok {
		return nil, false
	}

	detail := &models.GameDetail{
		GameSummary: s,
		Description: strings.TrimSpace(d.DescriptionRaw),
		Website:     d.Website,
		Playtime:    d.Playtime,
		Developers:  names(d.Developers),
		Publishers:  names(d.Publishers),
	}
	if d.ESRB != nil {
		detail.ESRB = d.ESRB.Name
	}

	return detail, true
}

func (r *screenshotsResponse) toModels() []models.Screenshot {
	out := make([]models.Screenshot, 0, len(r.Results))
	for _, s := range r.Results {
		if s.Image == "" {
			continue
		}
		out = append(out, models.Screenshot{ID: s.ID, ImageURL: s.Image})
	}
	return out
}

func (r *namedListResponse) toGenres() []models.Genre {
	out := make([]models.Genre, 0, len(r.Results))
	for _, n := range r.Results {
		out = append(out, models.Genre{ID: n.ID, Name: n.Name, Slug: n.Slug})
	}
	return out
}

func (r *namedListResponse) toPlatforms() []models.Platform {
	out := make([]models.Platform, 0, len(r.Results))
	for _, n := range r.Results {
		out = append(out, models.Platform{ID: n.ID, Name: n.Name, Slug: n.Slug})
	}
	return out
}

func names(in []namedDTO) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, n := range in {
		out = append(out, n.Name)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// parseDate разбирает "YYYY-MM-DD"; неизвестная/битая дата -> нулевое время.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
