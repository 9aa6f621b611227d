// models содержит доменные сущности каталога игр.
// Эти типы используются клиентом каталога, контроллером пагинации и CLI;
// внутренние слои не зависят от формы ответов внешнего API.
package models

import "time"

// GameSummary — краткая карточка игры из списочных выдач.
//
// Особенности:
//   - обязательны только ID и Name, остальные поля могут быть нулевыми;
//   - Released — календарная дата в UTC (нулевое значение — дата неизвестна).
type GameSummary struct {
	// ID — идентификатор игры в каталоге.
	ID int64
	// Slug — человекочитаемый идентификатор.
	Slug string
	// Name — название игры.
	Name string
	// ImageURL — обложка (background_image).
	ImageURL string
	// Rating — пользовательский рейтинг (0..5).
	Rating float64
	// Metacritic — оценка критиков (0..100, 0 — нет оценки).
	Metacritic int
	// Released — дата релиза.
	Released time.Time
	// Genres — жанры игры.
	Genres []Genre
	// Platforms — платформы игры.
	Platforms []Platform
}

// GameDetail — полная карточка игры.
type GameDetail struct {
	GameSummary
	// Description — описание без HTML-разметки.
	Description string
	// Website — официальный сайт.
	Website string
	// Playtime — среднее время прохождения в часах.
	Playtime int
	// Developers — студии-разработчики.
	Developers []string
	// Publishers — издатели.
	Publishers []string
	// ESRB — возрастной рейтинг (пусто, если не задан).
	ESRB string
}

// Screenshot — снимок экрана игры.
type Screenshot struct {
	ID       int64
	ImageURL string
}

// Genre — жанр каталога.
type Genre struct {
	ID   int64
	Name string
	Slug string
}

// Platform — игровая платформа.
type Platform struct {
	ID   int64
	Name string
	Slug string
}

// Page — одна страница списочной выдачи каталога.
//
// Особенности:
//   - Count — общее число совпадений на сервере, не зависит от размера страницы;
//   - Next пуст, если следующей страницы нет.
type Page struct {
	Items []GameSummary
	Count int
	Next  string
}

// HasNext сообщает, есть ли у выдачи следующая страница.
func (p *Page) HasNext() bool {
	return p != nil && p.Next != ""
}

// GameView — карточка игры вместе со снимками экрана.
type GameView struct {
	Detail      GameDetail
	Screenshots []Screenshot
}

// FilterOptions — справочники для фильтров выдачи.
type FilterOptions struct {
	Genres    []Genre
	Platforms []Platform
}
