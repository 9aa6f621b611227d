package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout — формат календарной даты каталога.
const dateLayout = "2006-01-02"

// Ordering — составной ключ сортировки в нотации каталога: поля через запятую,
// префикс "-" означает убывание (например, "-metacritic,-rating").
type Ordering string

const (
	OrderRelevance  Ordering = ""
	OrderTopRated   Ordering = "-metacritic,-rating"
	OrderReleased   Ordering = "-released"
	OrderRating     Ordering = "-rating"
	OrderMetacritic Ordering = "-metacritic"
	OrderAdded      Ordering = "-added"
	OrderName       Ordering = "name"
)

// OrderField — одно поле составной сортировки.
type OrderField struct {
	Field string
	Desc  bool
}

var reOrderField = regexp.MustCompile(`^-?[a-z_]+$`)

// OrderBy собирает Ordering из полей в порядке приоритета.
func OrderBy(fields ...OrderField) Ordering {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Desc {
			parts = append(parts, "-"+f.Field)
		} else {
			parts = append(parts, f.Field)
		}
	}
	return Ordering(strings.Join(parts, ","))
}

// ParseOrdering разбирает сортировку; "" и "relevance" — сортировка по релевантности.
func ParseOrdering(s string) (Ordering, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "relevance" {
		return OrderRelevance, nil
	}

	parts := strings.Split(s, ",")
	fields := make([]OrderField, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !reOrderField.MatchString(p) {
			return "", fmt.Errorf("%w: bad ordering field %q", ErrInvalidArgument, p)
		}
		fields = append(fields, OrderField{Field: strings.TrimPrefix(p, "-"), Desc: strings.HasPrefix(p, "-")})
	}

	return OrderBy(fields...), nil
}

// Fields раскладывает сортировку на поля.
func (o Ordering) Fields() []OrderField {
	if o == "" {
		return nil
	}

	parts := strings.Split(string(o), ",")
	out := make([]OrderField, 0, len(parts))
	for _, p := range parts {
		out = append(out, OrderField{Field: strings.TrimPrefix(p, "-"), Desc: strings.HasPrefix(p, "-")})
	}
	return out
}

// Range — диапазон оценок критиков [Min, Max]; нулевое значение — фильтр не задан.
type Range struct {
	Min int
	Max int
}

// IsZero сообщает, что диапазон не задан.
func (r Range) IsZero() bool { return r == Range{} }

// String — представление "min,max".
func (r Range) String() string {
	return strconv.Itoa(r.Min) + "," + strconv.Itoa(r.Max)
}

func (r Range) validate() error {
	if r.IsZero() {
		return nil
	}
	if r.Min < 0 || r.Max > 100 || r.Min > r.Max {
		return fmt.Errorf("%w: metacritic range must satisfy 0 <= min <= max <= 100", ErrInvalidArgument)
	}
	return nil
}

// ParseRange разбирает "80" (эквивалент "80,100") или "min,max"; "" — пустой диапазон.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, nil
	}

	left, right, ok := strings.Cut(s, ",")
	lo, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return Range{}, fmt.Errorf("%w: bad metacritic min %q", ErrInvalidArgument, left)
	}

	hi := 100
	if ok {
		if hi, err = strconv.Atoi(strings.TrimSpace(right)); err != nil {
			return Range{}, fmt.Errorf("%w: bad metacritic max %q", ErrInvalidArgument, right)
		}
	}

	r := Range{Min: lo, Max: hi}
	if err := r.validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// DateRange — диапазон дат релиза (календарные даты в UTC, включительно).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero сообщает, что диапазон не задан.
func (d DateRange) IsZero() bool { return d.Start.IsZero() && d.End.IsZero() }

// String — представление "YYYY-MM-DD,YYYY-MM-DD".
func (d DateRange) String() string {
	return d.Start.Format(dateLayout) + "," + d.End.Format(dateLayout)
}

func (d DateRange) normalize() DateRange {
	if d.IsZero() {
		return DateRange{}
	}
	return DateRange{Start: truncateDay(d.Start), End: truncateDay(d.End)}
}

func (d DateRange) validate() error {
	if d.IsZero() {
		return nil
	}
	if d.Start.IsZero() || d.End.IsZero() || d.End.Before(d.Start) {
		return fmt.Errorf("%w: dates must satisfy start <= end", ErrInvalidArgument)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Preset — предустановленное окно «недавних» релизов.
type Preset string

const (
	PresetWeek    Preset = "week"
	PresetMonth   Preset = "month"
	PresetQuarter Preset = "quarter"
)

// RecentRange возвращает окно [now-preset, now]; неизвестный preset трактуется как месяц.
func RecentRange(now time.Time, p Preset) DateRange {
	end := truncateDay(now)

	var start time.Time
	switch p {
	case PresetWeek:
		start = end.AddDate(0, 0, -7)
	case PresetQuarter:
		start = end.AddDate(0, -3, 0)
	default:
		start = end.AddDate(0, -1, 0)
	}

	return DateRange{Start: start, End: end}
}

// YearRange — все даты календарного года.
func YearRange(year int) DateRange {
	return DateRange{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// ParseDateRange разбирает "YYYY" (весь год) или "YYYY-MM-DD,YYYY-MM-DD"; "" — пустой диапазон.
func ParseDateRange(s string) (DateRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateRange{}, nil
	}

	left, right, ok := strings.Cut(s, ",")
	if !ok {
		year, err := strconv.Atoi(s)
		if err != nil || year < 1 || year > 9999 {
			return DateRange{}, fmt.Errorf("%w: bad year %q", ErrInvalidArgument, s)
		}
		return YearRange(year), nil
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(left))
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad start date %q", ErrInvalidArgument, left)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(right))
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad end date %q", ErrInvalidArgument, right)
	}

	d := DateRange{Start: start, End: end}
	if err := d.validate(); err != nil {
		return DateRange{}, err
	}
	return d, nil
}

// Resolve подставляет значения, зависящие от текущего времени: new-releases
// без окна дат получает последний месяц относительно now. Страница не меняется.
func (s State) Resolve(now time.Time) State {
	if s.Mode == ModeNewReleases && s.Dates.IsZero() {
		s.Dates = RecentRange(now, PresetMonth)
	}
	return s
}

// NewReleases — свежие релизы в окне preset относительно now, новые сначала.
// Окно фиксируется в момент построения состояния, поэтому Params() остаётся детерминированным.
func NewReleases(now time.Time, p Preset) State {
	s := New(ModeNewReleases)
	s.Dates = RecentRange(now, p)
	return s
}
