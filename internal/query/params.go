package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Params — параметры запроса к списочной выдаче каталога.
// Ключи однозначные; пустые фильтры в Params не попадают.
type Params map[string]string

// Encode кодирует параметры в query string с сортировкой ключей,
// поэтому равные Params всегда дают побайтно равный результат.
func (p Params) Encode() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[k]))
	}
	return b.String()
}

// Values — копия параметров в виде url.Values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, val)
	}
	return v
}

// defaultOrdering — сортировка режима, если явная не задана.
func (m Mode) defaultOrdering() Ordering {
	switch m {
	case ModePopular, ModeByGenre:
		return OrderTopRated
	case ModeNewReleases:
		return OrderReleased
	default:
		return OrderRelevance
	}
}

// Params переводит состояние в параметры запроса.
//
// Правила:
//   - page и page_size передаются всегда;
//   - ordering: явная сортировка или сортировка режима по умолчанию
//     (popular/by-genre -> "-metacritic,-rating", new-releases -> "-released",
//     search/filtered -> по релевантности, без параметра);
//   - search/genres/platforms/rating/metacritic/dates — только если заданы.
func (s State) Params() Params {
	page := s.Page
	if page < 1 {
		page = 1
	}
	size := s.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	p := Params{
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(size),
	}

	ordering := s.Ordering
	if ordering == OrderRelevance {
		ordering = s.Mode.defaultOrdering()
	}
	if ordering != OrderRelevance {
		p["ordering"] = string(ordering)
	}

	if s.Text != "" {
		p["search"] = s.Text
	}
	if s.GenreID != "" {
		p["genres"] = s.GenreID
	}
	if s.PlatformID != "" {
		p["platforms"] = s.PlatformID
	}
	if s.MinRating > 0 {
		p["rating"] = strconv.FormatFloat(s.MinRating, 'f', -1, 64)
	}
	if !s.Metacritic.IsZero() {
		p["metacritic"] = s.Metacritic.String()
	}
	if !s.Dates.IsZero() {
		p["dates"] = s.Dates.String()
	}

	return p
}

// Key — имя поля состояния для строковых обновлений.
type Key string

const (
	KeyMode       Key = "mode"
	KeyText       Key = "text"
	KeyGenre      Key = "genre"
	KeyPlatform   Key = "platform"
	KeyMinRating  Key = "min_rating"
	KeyMetacritic Key = "metacritic"
	KeyDates      Key = "dates"
	KeyOrdering   Key = "ordering"
	KeyPageSize   Key = "page_size"
	KeyPage       Key = "page"
)

// Keys — все поддерживаемые ключи в стабильном порядке.
func Keys() []Key {
	return []Key{KeyMode, KeyText, KeyGenre, KeyPlatform, KeyMinRating, KeyMetacritic, KeyDates, KeyOrdering, KeyPageSize, KeyPage}
}

// WithFilter возвращает новое состояние, где поле key равно value.
// Любой ключ, кроме KeyPage, сбрасывает страницу в 1; KeyPage задаёт страницу напрямую.
// Пустое value снимает опциональный фильтр.
func (s State) WithFilter(key Key, value string) (State, error) {
	value = strings.TrimSpace(value)

	switch key {
	case KeyMode:
		m, err := ParseMode(value)
		if err != nil {
			return s, err
		}
		return s.WithMode(m), nil
	case KeyText:
		return s.WithText(value), nil
	case KeyGenre:
		return s.WithGenre(value), nil
	case KeyPlatform:
		return s.WithPlatform(value), nil
	case KeyMinRating:
		if value == "" {
			return s.WithMinRating(0), nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || v > 5 {
			return s, fmt.Errorf("%w: bad min_rating %q", ErrInvalidArgument, value)
		}
		return s.WithMinRating(v), nil
	case KeyMetacritic:
		r, err := ParseRange(value)
		if err != nil {
			return s, err
		}
		return s.WithMetacritic(r), nil
	case KeyDates:
		d, err := ParseDateRange(value)
		if err != nil {
			return s, err
		}
		return s.WithDates(d), nil
	case KeyOrdering:
		o, err := ParseOrdering(value)
		if err != nil {
			return s, err
		}
		return s.WithOrdering(o), nil
	case KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxPageSize {
			return s, fmt.Errorf("%w: bad page_size %q", ErrInvalidArgument, value)
		}
		return s.WithPageSize(n), nil
	case KeyPage:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return s, fmt.Errorf("%w: bad page %q", ErrInvalidArgument, value)
		}
		return s.WithPage(n), nil
	default:
		return s, fmt.Errorf("%w: unknown key %q", ErrInvalidArgument, key)
	}
}
