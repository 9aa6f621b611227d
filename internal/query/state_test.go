package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Файл unit-тестов модели состояния выборки.
//
// Покрываем:
//  - сброс страницы при изменении любого поля, кроме page;
//  - детерминированность Params()/Encode();
//  - маппинг режимов в параметры запроса и отсутствие пустых фильтров;
//  - разбор строковых значений фильтров и ошибки на мусоре;
//  - окна дат для свежих релизов.

var fixedNow = time.Date(2025, time.March, 15, 18, 30, 0, 0, time.UTC)

// TestWithFilter_ResetsPage — любой ключ, кроме page, сбрасывает страницу в 1.
func TestWithFilter_ResetsPage(t *testing.T) {
	t.Parallel()

	values := map[Key]string{
		KeyMode:       "filtered",
		KeyText:       "zelda",
		KeyGenre:      "4",
		KeyPlatform:   "187",
		KeyMinRating:  "3.5",
		KeyMetacritic: "80,100",
		KeyDates:      "2023",
		KeyOrdering:   "-released",
		KeyPageSize:   "10",
	}

	base := Popular().WithPage(3)
	for key, val := range values {
		t.Run(string(key), func(t *testing.T) {
			got, err := base.WithFilter(key, val)
			require.NoError(t, err)
			require.Equal(t, 1, got.Page)
			require.Equal(t, "1", got.Params()["page"])
		})
	}
}

// TestWithFilter_GenreFromPageThree — со страницы 3 смена жанра даёт page=1 и genre=4.
func TestWithFilter_GenreFromPageThree(t *testing.T) {
	t.Parallel()

	state := Popular().WithPage(3)
	require.Equal(t, 3, state.Page)

	got, err := state.WithFilter(KeyGenre, "4")
	require.NoError(t, err)
	require.Equal(t, 1, got.Page)
	require.Equal(t, "4", got.GenreID)

	// исходное значение не изменилось.
	require.Equal(t, 3, state.Page)
	require.Equal(t, "", state.GenreID)
}

// TestWithFilter_PageSetDirectly — ключ page задаёт страницу без сброса фильтров.
func TestWithFilter_PageSetDirectly(t *testing.T) {
	t.Parallel()

	state := ByGenre("4").WithText("mario")
	got, err := state.WithFilter(KeyPage, "5")
	require.NoError(t, err)
	require.Equal(t, 5, got.Page)
	require.Equal(t, "4", got.GenreID)
	require.Equal(t, "mario", got.Text)

	require.Equal(t, 6, got.NextPage().Page)
	require.True(t, got.SameSelection(got.NextPage()))
	require.False(t, got.SameSelection(got.WithGenre("5")))
}

// TestWithFilter_Invalid — мусорные значения дают ErrInvalidArgument и не меняют состояние.
func TestWithFilter_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key Key
		val string
	}{
		{KeyMode, "trending"},
		{KeyMinRating, "abc"},
		{KeyMinRating, "7"},
		{KeyMetacritic, "90,10"},
		{KeyMetacritic, "x"},
		{KeyDates, "2024-05-01,2024-01-01"},
		{KeyDates, "yesterday"},
		{KeyOrdering, "-rating;drop"},
		{KeyPageSize, "0"},
		{KeyPageSize, "41"},
		{KeyPage, "0"},
		{Key("color"), "red"},
	}

	state := Popular().WithPage(2)
	for _, c := range cases {
		got, err := state.WithFilter(c.key, c.val)
		require.ErrorIs(t, err, ErrInvalidArgument, "%s=%q", c.key, c.val)
		require.Equal(t, state, got)
	}
}

// TestWithFilter_EmptyValueClears — пустое значение снимает фильтр.
func TestWithFilter_EmptyValueClears(t *testing.T) {
	t.Parallel()

	state := Filtered().
		WithGenre("4").
		WithMinRating(4).
		WithMetacritic(Range{Min: 80, Max: 100}).
		WithDates(YearRange(2020))
	require.Equal(t, 4, state.ActiveFilters())

	for _, k := range []Key{KeyGenre, KeyMinRating, KeyMetacritic, KeyDates} {
		var err error
		state, err = state.WithFilter(k, "")
		require.NoError(t, err)
	}
	require.Zero(t, state.ActiveFilters())
}

// TestParams_Deterministic — равные состояния дают побайтно равные параметры.
func TestParams_Deterministic(t *testing.T) {
	t.Parallel()

	build := func() State {
		return Filtered().
			WithText("dark souls").
			WithGenre("5").
			WithPlatform("4").
			WithMinRating(3.5).
			WithMetacritic(Range{Min: 70, Max: 100}).
			WithDates(YearRange(2011)).
			WithOrdering(OrderName).
			WithPage(2)
	}

	a, b := build(), build()
	require.Equal(t, a, b)

	first := a.Params().Encode()
	for i := 0; i < 50; i++ {
		require.Equal(t, first, b.Params().Encode())
	}
	require.Equal(t,
		"dates=2011-01-01%2C2011-12-31&genres=5&metacritic=70%2C100&ordering=name&page=2&page_size=20&platforms=4&rating=3.5&search=dark+souls",
		first,
	)
}

// TestParams_ModeMapping — сортировки по умолчанию и обязательные параметры режимов.
func TestParams_ModeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		state State
		want  Params
	}{
		{
			name:  "popular",
			state: Popular(),
			want:  Params{"page": "1", "page_size": "20", "ordering": "-metacritic,-rating"},
		},
		{
			name:  "new_releases_month",
			state: NewReleases(fixedNow, PresetMonth),
			want:  Params{"page": "1", "page_size": "20", "ordering": "-released", "dates": "2025-02-15,2025-03-15"},
		},
		{
			name:  "switch_to_new_releases",
			state: mustFilter(t, Popular().WithPage(3), KeyMode, "new-releases").Resolve(fixedNow),
			want:  Params{"page": "1", "page_size": "20", "ordering": "-released", "dates": "2025-02-15,2025-03-15"},
		},
		{
			name:  "new_releases_dates_unset",
			state: mustFilter(t, NewReleases(fixedNow, PresetWeek), KeyDates, "").Resolve(fixedNow),
			want:  Params{"page": "1", "page_size": "20", "ordering": "-released", "dates": "2025-02-15,2025-03-15"},
		},
		{
			name:  "new_releases_explicit_year",
			state: mustFilter(t, NewReleases(fixedNow, PresetWeek), KeyDates, "2020").Resolve(fixedNow),
			want:  Params{"page": "1", "page_size": "20", "ordering": "-released", "dates": "2020-01-01,2020-12-31"},
		},
		{
			name:  "by_genre",
			state: ByGenre("4"),
			want:  Params{"page": "1", "page_size": "20", "ordering": "-metacritic,-rating", "genres": "4"},
		},
		{
			name:  "search_relevance",
			state: Search("  witcher "),
			want:  Params{"page": "1", "page_size": "20", "search": "witcher"},
		},
		{
			name:  "search_sorted",
			state: Search("witcher").WithOrdering(OrderRating),
			want:  Params{"page": "1", "page_size": "20", "search": "witcher", "ordering": "-rating"},
		},
		{
			name:  "filtered_empty",
			state: Filtered(),
			want:  Params{"page": "1", "page_size": "20"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.state.Params())
		})
	}
}

// mustFilter применяет WithFilter и падает на ошибке.
func mustFilter(t *testing.T, s State, key Key, value string) State {
	t.Helper()

	next, err := s.WithFilter(key, value)
	require.NoError(t, err)
	return next
}

// TestResolve_NewReleasesWindow — new-releases без окна дат не проходит Validate,
// Resolve подставляет последний месяц и не трогает остальные режимы.
func TestResolve_NewReleasesWindow(t *testing.T) {
	t.Parallel()

	switched := Popular().WithMode(ModeNewReleases)
	require.ErrorIs(t, switched.Validate(), ErrInvalidArgument)
	require.NotContains(t, switched.Params(), "dates")

	resolved := switched.Resolve(fixedNow)
	require.NoError(t, resolved.Validate())
	require.Equal(t, RecentRange(fixedNow, PresetMonth), resolved.Dates)

	// заданное окно не перезаписывается.
	week := NewReleases(fixedNow, PresetWeek)
	require.Equal(t, week, week.Resolve(fixedNow.AddDate(1, 0, 0)))

	// прочие режимы без дат остаются без дат.
	require.True(t, Popular().Resolve(fixedNow).Dates.IsZero())
	require.True(t, Filtered().Resolve(fixedNow).Dates.IsZero())
}

// TestParams_NoEmptyFilters — пустые строки в фильтры не попадают.
func TestParams_NoEmptyFilters(t *testing.T) {
	t.Parallel()

	p := Filtered().WithText("   ").WithGenre("").WithPlatform(" ").Params()
	for _, k := range []string{"search", "genres", "platforms", "rating", "metacritic", "dates", "ordering"} {
		_, ok := p[k]
		require.False(t, ok, k)
	}
}

// TestRecentRange — окна недели/месяца/квартала, неизвестный пресет = месяц.
func TestRecentRange(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2025-03-08,2025-03-15", RecentRange(fixedNow, PresetWeek).String())
	require.Equal(t, "2025-02-15,2025-03-15", RecentRange(fixedNow, PresetMonth).String())
	require.Equal(t, "2024-12-15,2025-03-15", RecentRange(fixedNow, PresetQuarter).String())
	require.Equal(t, RecentRange(fixedNow, PresetMonth), RecentRange(fixedNow, Preset("decade")))
}

// TestOrdering_RoundTrip — разбор и сборка составной сортировки.
func TestOrdering_RoundTrip(t *testing.T) {
	t.Parallel()

	o, err := ParseOrdering(" -Metacritic, -rating ")
	require.NoError(t, err)
	require.Equal(t, OrderTopRated, o)
	require.Equal(t, []OrderField{{Field: "metacritic", Desc: true}, {Field: "rating", Desc: true}}, o.Fields())
	require.Equal(t, o, OrderBy(o.Fields()...))

	rel, err := ParseOrdering("relevance")
	require.NoError(t, err)
	require.Equal(t, OrderRelevance, rel)
	require.Nil(t, rel.Fields())
}

// TestParseRange — "80" эквивалентно "80,100".
func TestParseRange(t *testing.T) {
	t.Parallel()

	r, err := ParseRange("80")
	require.NoError(t, err)
	require.Equal(t, Range{Min: 80, Max: 100}, r)

	r, err = ParseRange("50, 70")
	require.NoError(t, err)
	require.Equal(t, "50,70", r.String())
}

// TestValidate — инварианты режимов и границ.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Popular().Validate())
	require.NoError(t, NewReleases(fixedNow, PresetWeek).Validate())
	require.NoError(t, ByGenre("4").Validate())
	require.NoError(t, Search("x").Validate())

	require.ErrorIs(t, ByGenre("").Validate(), ErrInvalidArgument)
	require.ErrorIs(t, Search(" ").Validate(), ErrInvalidArgument)
	require.ErrorIs(t, New(ModeNewReleases).Validate(), ErrInvalidArgument)
	require.ErrorIs(t, State{Mode: "weird", Page: 1, PageSize: 20}.Validate(), ErrInvalidArgument)
	require.ErrorIs(t, State{Mode: ModePopular, Page: 0, PageSize: 20}.Validate(), ErrInvalidArgument)
	require.ErrorIs(t, Popular().WithPageSize(50).Validate(), ErrInvalidArgument)
	require.ErrorIs(t, Popular().WithMinRating(9).Validate(), ErrInvalidArgument)
}
