package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pribylovaa/game-catalog/internal/config"
	"github.com/pribylovaa/game-catalog/internal/pager"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/internal/service"
	"github.com/pribylovaa/game-catalog/pkg/log"
)

// runner держит потоки ввода-вывода процесса; зависимости собираются на каждую команду.
type runner struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

type action func(ctx context.Context, a *app, c *cli.Command) error

// queryFlagKeys — соответствие флагов выборки ключам query.State; page применяется последним.
var queryFlagKeys = []struct {
	flag string
	key  query.Key
}{
	{"search", query.KeyText},
	{"genre", query.KeyGenre},
	{"platform", query.KeyPlatform},
	{"min-rating", query.KeyMinRating},
	{"metacritic", query.KeyMetacritic},
	{"dates", query.KeyDates},
	{"ordering", query.KeyOrdering},
	{"page-size", query.KeyPageSize},
	{"page", query.KeyPage},
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cli.Command {
	r := &runner{in: in, out: out, errOut: errOut, now: time.Now}
	return r.command()
}

func (r *runner) command() *cli.Command {
	return &cli.Command{
		Name:      "catalog",
		Usage:     "Browse the RAWG video game catalog",
		Reader:    r.in,
		Writer:    r.out,
		ErrWriter: r.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (overrides CONFIG_PATH env)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "expose Prometheus /metrics on this address while the command runs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print one numbered page of games",
				Flags:  queryFlags(),
				Action: r.withApp(r.list),
			},
			{
				Name:      "search",
				Usage:     "Search games by name and remember the term",
				ArgsUsage: "TERM",
				Flags:     queryFlags(),
				Action:    r.withApp(r.search),
			},
			{
				Name:   "browse",
				Usage:  "Interactive list with load-more, filters and retry",
				Flags:  queryFlags(),
				Action: r.withApp(r.browse),
			},
			{
				Name:      "details",
				Usage:     "Show a game with its screenshots",
				ArgsUsage: "ID",
				Action:    r.withApp(r.details),
			},
			{
				Name:   "filters",
				Usage:  "List genres and platforms usable as filters",
				Action: r.withApp(r.filters),
			},
			{
				Name:   "genres",
				Usage:  "List genres",
				Action: r.withApp(r.genres),
			},
			{
				Name:   "platforms",
				Usage:  "List platforms",
				Action: r.withApp(r.platforms),
			},
			{
				Name:      "suggest",
				Usage:     "Type-ahead suggestions for a search term",
				ArgsUsage: "TERM",
				Action:    r.withApp(r.suggest),
			},
			{
				Name:      "history",
				Usage:     "Show recent search terms, or clear them",
				ArgsUsage: "[clear]",
				Action:    r.withApp(r.history),
			},
		},
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Value: string(query.ModePopular), Usage: "popular, new-releases, by-genre, search or filtered"},
		&cli.StringFlag{Name: "search", Usage: "free-text search"},
		&cli.StringFlag{Name: "genre", Usage: "genre id"},
		&cli.StringFlag{Name: "platform", Usage: "platform id"},
		&cli.StringFlag{Name: "min-rating", Usage: "minimum user rating, 0 to 5"},
		&cli.StringFlag{Name: "metacritic", Usage: "critic score range: 80 or 70,90"},
		&cli.StringFlag{Name: "dates", Usage: "release year (2023) or range (2023-01-01,2023-06-30)"},
		&cli.StringFlag{Name: "preset", Usage: "recent releases window: week, month or quarter"},
		&cli.StringFlag{Name: "ordering", Usage: "sort order, e.g. -rating, -released, name"},
		&cli.StringFlag{Name: "page", Usage: "page number"},
		&cli.StringFlag{Name: "page-size", Usage: "games per page (default from config)"},
	}
}

// withApp загружает конфиг, настраивает логгер и собирает app для одной команды.
func (r *runner) withApp(fn action) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}
		if addr := c.String("metrics-addr"); addr != "" {
			cfg.Metrics.Addr = addr
		}

		lg := setupLogger(cfg.Env, r.errOut)
		ctx = log.Into(ctx, lg)
		lg.Debug("command_start",
			slog.String("command", c.Name),
			slog.String("env", cfg.Env),
		)

		a, err := newApp(ctx, *cfg, r.out)
		if err != nil {
			return err
		}
		defer a.close(ctx)
		a.now = r.now

		return fn(ctx, a, c)
	}
}

// buildQuery собирает состояние выборки из флагов команды; text — поисковый запрос из аргументов.
func buildQuery(a *app, c *cli.Command, text string) (query.State, error) {
	name := c.String("mode")
	if !c.IsSet("mode") && (text != "" || c.String("search") != "") {
		name = string(query.ModeSearch)
	}

	mode, err := query.ParseMode(name)
	if err != nil {
		return query.State{}, err
	}

	now := a.now()
	st := a.svc.InitialQuery(mode, now)

	if p := c.String("preset"); p != "" {
		switch preset := query.Preset(p); preset {
		case query.PresetWeek, query.PresetMonth, query.PresetQuarter:
			st = st.WithDates(query.RecentRange(now, preset))
		default:
			return query.State{}, fmt.Errorf("%w: unknown preset %q", query.ErrInvalidArgument, p)
		}
	}
	if text != "" {
		st = st.WithText(text)
	}

	for _, f := range queryFlagKeys {
		if !c.IsSet(f.flag) {
			continue
		}
		if st, err = st.WithFilter(f.key, c.String(f.flag)); err != nil {
			return query.State{}, err
		}
	}

	// смена режима или "--dates ''" могли оставить new-releases без окна дат.
	st = st.Resolve(now)
	if err := st.Validate(); err != nil {
		return query.State{}, err
	}
	return st, nil
}

// showPage загружает одну страницу st и печатает её.
func showPage(ctx context.Context, a *app, st query.State) error {
	ctrl := pager.New(a.client, st)
	defer ctrl.Close()

	res := ctrl.SetQuery(ctx, st)
	if res.Status == pager.StatusError {
		return errors.New(res.ErrorMessage)
	}

	renderResult(a.out, res, st)
	return nil
}

func (r *runner) list(ctx context.Context, a *app, c *cli.Command) error {
	st, err := buildQuery(a, c, "")
	if err != nil {
		return err
	}
	return showPage(ctx, a, st)
}

func (r *runner) search(ctx context.Context, a *app, c *cli.Command) error {
	term := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if term == "" {
		return fmt.Errorf("search term is required")
	}

	st, err := buildQuery(a, c, term)
	if err != nil {
		return err
	}

	a.recordSearch(ctx, st.Text)
	return showPage(ctx, a, st)
}

func (r *runner) details(ctx context.Context, a *app, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("game id is required")
	}

	view, err := a.svc.GameView(ctx, id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fmt.Errorf("game %q not found", id)
	case err != nil:
		return errors.New(pager.Message(err))
	}

	renderGame(a.out, view)
	return nil
}

func (r *runner) filters(ctx context.Context, a *app, _ *cli.Command) error {
	opts, err := a.svc.FilterOptions(ctx)
	if err != nil {
		return errors.New(pager.Message(err))
	}

	renderGenres(a.out, opts.Genres)
	fmt.Fprintln(a.out)
	renderPlatforms(a.out, opts.Platforms)
	return nil
}

func (r *runner) genres(ctx context.Context, a *app, _ *cli.Command) error {
	genres, err := a.client.Genres(ctx)
	if err != nil {
		return errors.New(pager.Message(err))
	}

	renderGenres(a.out, genres)
	return nil
}

func (r *runner) platforms(ctx context.Context, a *app, _ *cli.Command) error {
	platforms, err := a.client.Platforms(ctx)
	if err != nil {
		return errors.New(pager.Message(err))
	}

	renderPlatforms(a.out, platforms)
	return nil
}

func (r *runner) suggest(ctx context.Context, a *app, c *cli.Command) error {
	a.printSuggestions(ctx, strings.Join(c.Args().Slice(), " "))
	return nil
}

func (r *runner) history(ctx context.Context, a *app, c *cli.Command) error {
	switch arg := c.Args().First(); arg {
	case "":
		a.printHistory()
		return nil
	case "clear":
		if err := a.history.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "search history cleared")
		return nil
	default:
		return fmt.Errorf("unknown history action %q (want: clear)", arg)
	}
}

// recordSearch запоминает поисковый запрос; ошибка хранилища не прерывает поиск.
func (a *app) recordSearch(ctx context.Context, term string) {
	if err := a.history.Record(ctx, term); err != nil {
		log.From(ctx).Warn("history_record_failed",
			slog.String("term", term),
			slog.String("err", err.Error()),
		)
	}
}

func (a *app) printHistory() {
	entries := a.history.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "search history is empty")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, e)
	}
}

func (a *app) printSuggestions(ctx context.Context, term string) {
	names := a.history.Suggest(ctx, term)
	if len(names) == 0 {
		fmt.Fprintln(a.out, "no suggestions")
		return
	}
	for _, n := range names {
		fmt.Fprintln(a.out, n)
	}
}
