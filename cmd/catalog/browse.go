package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/pribylovaa/game-catalog/internal/pager"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/internal/rawg"
)

// browseHelp — справка сессии; список ключей берётся из query.Keys.
func browseHelp() string {
	keys := make([]string, 0, len(query.Keys()))
	for _, k := range query.Keys() {
		keys = append(keys, string(k))
	}

	return `commands:
  more               load the next page and append it
  page N             jump to page N (replaces the list)
  set KEY VALUE      change a filter; keys: ` + strings.Join(keys, " ") + `
  unset KEY          remove a filter
  retry              reload from the first page
  show               print the current request
  suggest TERM       type-ahead suggestions
  history            recent search terms
  quit               leave`
}

// browse — интерактивная выдача: дозагрузка по "more", смена фильтров, повтор.
func (r *runner) browse(ctx context.Context, a *app, c *cli.Command) error {
	st, err := buildQuery(a, c, "")
	if err != nil {
		return err
	}

	ctrl := pager.New(a.client, st, pager.WithObserver(func(res pager.Result) {
		if res.Status == pager.StatusLoading {
			fmt.Fprintln(a.out, "loading...")
		}
	}))
	defer ctrl.Close()

	if st.Text != "" {
		a.recordSearch(ctx, st.Text)
	}
	renderResult(a.out, ctrl.SetQuery(ctx, st), st)

	sc := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(a.out)
			break
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if quit := a.browseStep(ctx, ctrl, line); quit || ctx.Err() != nil {
			break
		}
	}

	return sc.Err()
}

// browseStep выполняет одну команду сессии; true — выйти.
func (a *app) browseStep(ctx context.Context, ctrl *pager.Controller, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(a.out, browseHelp())
	case "more", "m":
		a.loadMore(ctx, ctrl)
	case "page", "p":
		a.apply(ctx, ctrl, query.KeyPage, rest)
	case "set":
		key, value, _ := strings.Cut(rest, " ")
		a.apply(ctx, ctrl, query.Key(key), value)
	case "unset":
		a.apply(ctx, ctrl, query.Key(rest), "")
	case "retry", "r":
		renderResult(a.out, ctrl.Refetch(ctx), ctrl.Query())
	case "show":
		renderQuery(a.out, ctrl.Query())
	case "suggest":
		a.printSuggestions(ctx, rest)
	case "history":
		a.printHistory()
	default:
		fmt.Fprintf(a.out, "unknown command %q, type 'help'\n", cmd)
	}
	return false
}

// loadMore дописывает следующую страницу и печатает только новые строки.
func (a *app) loadMore(ctx context.Context, ctrl *pager.Controller) {
	before := ctrl.Snapshot()
	if before.Status != pager.StatusSuccess || !before.HasNext {
		fmt.Fprintln(a.out, "nothing more to load")
		return
	}

	res := ctrl.LoadMore(ctx)
	switch res.Status {
	case pager.StatusError:
		fmt.Fprintf(a.out, "error: %s\n", res.ErrorMessage)
		if rawg.IsRetryable(res.Err) {
			fmt.Fprintf(a.out, "%d games still shown; type 'retry' to reload from the first page\n", len(res.Items))
		} else {
			fmt.Fprintf(a.out, "%d games still shown\n", len(res.Items))
		}
	case pager.StatusSuccess:
		renderGames(a.out, res.Items[len(before.Items):], len(before.Items))
		fmt.Fprintf(a.out, "showing %d of %d games\n", len(res.Items), res.TotalCount)
	}
}

// apply меняет одно поле выборки и перезагружает выдачу с заменой списка.
func (a *app) apply(ctx context.Context, ctrl *pager.Controller, key query.Key, value string) {
	cur := ctrl.Query()
	st, err := cur.WithFilter(key, value)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	st = st.Resolve(a.now())
	if err := st.Validate(); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	// тот же фильтр с тем же значением не перезагружает уже показанную выдачу.
	if key != query.KeyPage && st.SameSelection(cur) && ctrl.Snapshot().Status == pager.StatusSuccess {
		fmt.Fprintln(a.out, "filters unchanged")
		return
	}

	if key == query.KeyText && st.Text != "" {
		a.recordSearch(ctx, st.Text)
	}

	renderResult(a.out, ctrl.SetQuery(ctx, st), st)
}
