// query описывает состояние выборки каталога (режим, фильтры, сортировка, страница)
// и детерминированно переводит его в параметры запроса к каталогу.
//
// State — значение: любые изменения возвращают новую копию, исходная не меняется.
// Изменение любого поля, кроме Page, сбрасывает Page в 1.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument — некорректное значение фильтра или состояния.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	// DefaultPageSize — размер страницы по умолчанию для списочных экранов.
	DefaultPageSize = 20
	// MaxPageSize — верхняя граница page_size, которую принимает каталог.
	MaxPageSize = 40
)

// Mode — режим выборки.
type Mode string

const (
	ModePopular     Mode = "popular"
	ModeNewReleases Mode = "new-releases"
	ModeByGenre     Mode = "by-genre"
	ModeSearch      Mode = "search"
	ModeFiltered    Mode = "filtered"
)

// ParseMode разбирает строковое имя режима.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.TrimSpace(strings.ToLower(s))); m {
	case ModePopular, ModeNewReleases, ModeByGenre, ModeSearch, ModeFiltered:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidArgument, s)
	}
}

// State — неизменяемое описание того, какую страницу какой выборки загрузить.
//
// Нулевые значения опциональных полей означают «фильтр не задан»:
//   - Text/GenreID/PlatformID == "";
//   - MinRating == 0;
//   - Metacritic.IsZero(), Dates.IsZero();
//   - Ordering == OrderRelevance (для режимов с сортировкой по умолчанию подставляется она).
type State struct {
	Mode       Mode
	Text       string
	GenreID    string
	PlatformID string
	MinRating  float64
	Metacritic Range
	Dates      DateRange
	Ordering   Ordering
	Page       int
	PageSize   int
}

// New создаёт состояние первой страницы для режима m.
func New(m Mode) State {
	return State{Mode: m, Page: 1, PageSize: DefaultPageSize}
}

// Popular — популярные игры (лучшие оценки критиков, затем рейтинг).
func Popular() State { return New(ModePopular) }

// ByGenre — игры жанра genreID.
func ByGenre(genreID string) State {
	s := New(ModeByGenre)
	s.GenreID = strings.TrimSpace(genreID)
	return s
}

// Search — полнотекстовый поиск.
func Search(text string) State {
	s := New(ModeSearch)
	s.Text = strings.TrimSpace(text)
	return s
}

// Filtered — произвольная комбинация фильтров.
func Filtered() State { return New(ModeFiltered) }

// reset возвращает копию с Page = 1.
func (s State) reset() State {
	s.Page = 1
	return s
}

// WithMode меняет режим выборки.
func (s State) WithMode(m Mode) State {
	s.Mode = m
	return s.reset()
}

// WithText задаёт строку поиска (пустая — снять фильтр).
func (s State) WithText(text string) State {
	s.Text = strings.TrimSpace(text)
	return s.reset()
}

// WithGenre задаёт жанр (пустой — снять фильтр).
func (s State) WithGenre(id string) State {
	s.GenreID = strings.TrimSpace(id)
	return s.reset()
}

// WithPlatform задаёт платформу (пустая — снять фильтр).
func (s State) WithPlatform(id string) State {
	s.PlatformID = strings.TrimSpace(id)
	return s.reset()
}

// WithMinRating задаёт минимальный пользовательский рейтинг (0 — снять фильтр).
func (s State) WithMinRating(v float64) State {
	s.MinRating = v
	return s.reset()
}

// WithMetacritic задаёт диапазон оценок критиков.
func (s State) WithMetacritic(r Range) State {
	s.Metacritic = r
	return s.reset()
}

// WithDates задаёт диапазон дат релиза.
func (s State) WithDates(d DateRange) State {
	s.Dates = d.normalize()
	return s.reset()
}

// WithOrdering задаёт сортировку.
func (s State) WithOrdering(o Ordering) State {
	s.Ordering = o
	return s.reset()
}

// WithPageSize задаёт размер страницы (<= 0 — размер по умолчанию).
func (s State) WithPageSize(n int) State {
	if n <= 0 {
		n = DefaultPageSize
	}
	s.PageSize = n
	return s.reset()
}

// WithPage переходит на страницу n без сброса остальных полей (n < 1 -> 1).
func (s State) WithPage(n int) State {
	if n < 1 {
		n = 1
	}
	s.Page = n
	return s
}

// NextPage — следующая страница той же выборки.
func (s State) NextPage() State {
	return s.WithPage(s.Page + 1)
}

// SameSelection сообщает, описывают ли s и o одну и ту же выборку (без учёта Page).
func (s State) SameSelection(o State) bool {
	s.Page, o.Page = 0, 0
	return s == o
}

// ActiveFilters — число заданных опциональных фильтров.
func (s State) ActiveFilters() int {
	n := 0
	for _, set := range []bool{
		s.Text != "",
		s.GenreID != "",
		s.PlatformID != "",
		s.MinRating > 0,
		!s.Metacritic.IsZero(),
		!s.Dates.IsZero(),
	} {
		if set {
			n++
		}
	}
	return n
}

// Validate проверяет инварианты состояния.
func (s State) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidArgument)
	}
	if s.PageSize < 1 || s.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page_size must be in [1, %d]", ErrInvalidArgument, MaxPageSize)
	}
	if s.Mode == ModeByGenre && s.GenreID == "" {
		return fmt.Errorf("%w: mode %s requires genre", ErrInvalidArgument, s.Mode)
	}
	if s.Mode == ModeNewReleases && s.Dates.IsZero() {
		return fmt.Errorf("%w: mode %s requires dates", ErrInvalidArgument, s.Mode)
	}
	if s.Mode == ModeSearch && s.Text == "" {
		return fmt.Errorf("%w: mode %s requires text", ErrInvalidArgument, s.Mode)
	}
	if s.MinRating < 0 || s.MinRating > 5 {
		return fmt.Errorf("%w: min_rating must be in [0, 5]", ErrInvalidArgument)
	}
	if err := s.Metacritic.validate(); err != nil {
		return err
	}
	return s.Dates.validate()
}
