package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/pager"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/internal/rawg"
)

// renderResult печатает выдачу целиком: заголовок и таблицу игр.
func renderResult(w io.Writer, res pager.Result, st query.State) {
	switch {
	case res.Status == pager.StatusError:
		fmt.Fprintf(w, "error: %s\n", res.ErrorMessage)
		if rawg.IsRetryable(res.Err) {
			fmt.Fprintln(w, "type 'retry' to try again")
		}
		return
	case res.Empty():
		fmt.Fprintln(w, "No games match the current filters. Try adjusting them.")
		return
	}

	fmt.Fprintf(w, "%s · page %d/%d · %d games", st.Mode, res.Page, res.TotalPages(), res.TotalCount)
	if n := st.ActiveFilters(); n > 0 {
		fmt.Fprintf(w, " · %d filters", n)
	}
	fmt.Fprintln(w)

	renderGames(w, res.Items, 0)
}

// renderGames печатает таблицу игр; from — номер первой строки минус один.
func renderGames(w io.Writer, items []models.GameSummary, from int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tRELEASED\tRATING\tMETACRITIC\tGENRES\tPLATFORMS")
	for i, g := range items {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			from+i+1,
			g.ID,
			g.Name,
			dateOrDash(g),
			g.Rating,
			metacriticOrDash(g.Metacritic),
			joinNames(g.Genres, func(x models.Genre) string { return x.Name }),
			joinNames(g.Platforms, func(x models.Platform) string { return x.Name }),
		)
	}
	tw.Flush()
}

// renderGame печатает карточку игры.
func renderGame(w io.Writer, v *models.GameView) {
	d := v.Detail

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", d.Name)
	fmt.Fprintf(tw, "ID:\t%d (%s)\n", d.ID, d.Slug)
	fmt.Fprintf(tw, "Released:\t%s\n", dateOrDash(d.GameSummary))
	fmt.Fprintf(tw, "Rating:\t%.2f\n", d.Rating)
	fmt.Fprintf(tw, "Metacritic:\t%s\n", metacriticOrDash(d.Metacritic))
	fmt.Fprintf(tw, "Genres:\t%s\n", joinNames(d.Genres, func(x models.Genre) string { return x.Name }))
	fmt.Fprintf(tw, "Platforms:\t%s\n", joinNames(d.Platforms, func(x models.Platform) string { return x.Name }))
	if len(d.Developers) > 0 {
		fmt.Fprintf(tw, "Developers:\t%s\n", strings.Join(d.Developers, ", "))
	}
	if len(d.Publishers) > 0 {
		fmt.Fprintf(tw, "Publishers:\t%s\n", strings.Join(d.Publishers, ", "))
	}
	if d.ESRB != "" {
		fmt.Fprintf(tw, "ESRB:\t%s\n", d.ESRB)
	}
	if d.Playtime > 0 {
		fmt.Fprintf(tw, "Playtime:\t%dh\n", d.Playtime)
	}
	if d.Website != "" {
		fmt.Fprintf(tw, "Website:\t%s\n", d.Website)
	}
	tw.Flush()

	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description)
	}

	if len(v.Screenshots) > 0 {
		fmt.Fprintf(w, "\nScreenshots (%d):\n", len(v.Screenshots))
		for _, s := range v.Screenshots {
			fmt.Fprintf(w, "  %s\n", s.ImageURL)
		}
	}
}

// renderNamed печатает справочник (жанры или платформы).
func renderNamed(w io.Writer, title string, ids []int64, names, slugs []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(ids))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i := range ids {
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", ids[i], names[i], slugs[i])
	}
	tw.Flush()
}

func renderGenres(w io.Writer, genres []models.Genre) {
	ids, names, slugs := make([]int64, len(genres)), make([]string, len(genres)), make([]string, len(genres))
	for i, g := range genres {
		ids[i], names[i], slugs[i] = g.ID, g.Name, g.Slug
	}
	renderNamed(w, "Genres", ids, names, slugs)
}

func renderPlatforms(w io.Writer, platforms []models.Platform) {
	ids, names, slugs := make([]int64, len(platforms)), make([]string, len(platforms)), make([]string, len(platforms))
	for i, p := range platforms {
		ids[i], names[i], slugs[i] = p.ID, p.Name, p.Slug
	}
	renderNamed(w, "Platforms", ids, names, slugs)
}

// renderQuery печатает текущие параметры выборки.
func renderQuery(w io.Writer, st query.State) {
	params := st.Params()
	fmt.Fprintf(w, "mode: %s\n", st.Mode)
	fmt.Fprintf(w, "order: %s\n", describeOrdering(query.Ordering(params["ordering"])))
	fmt.Fprintf(w, "request: %s\n", params.Encode())
}

// describeOrdering — "metacritic desc, rating desc"; пустая сортировка — релевантность.
func describeOrdering(o query.Ordering) string {
	fields := o.Fields()
	if len(fields) == 0 {
		return "relevance"
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		dir := "asc"
		if f.Desc {
			dir = "desc"
		}
		parts = append(parts, f.Field+" "+dir)
	}
	return strings.Join(parts, ", ")
}

func dateOrDash(g models.GameSummary) string {
	if g.Released.IsZero() {
		return "-"
	}
	return g.Released.Format("2006-01-02")
}

func metacriticOrDash(v int) string {
	if v <= 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

func joinNames[T any](items []T, name func(T) string) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, name(it))
	}
	return strings.Join(parts, ", ")
}
