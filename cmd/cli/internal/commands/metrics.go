package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/controller"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/view"
)

type MetricsCmd struct {
	Page      int    `help:"Page number." default:"1"`
	Sort      string `help:"Sort column (date, account_id, campaign_id, clicks, conversions, impressions, interactions)." default:"date"`
	Order     string `help:"Sort order (asc or desc)." default:"desc"`
	StartDate string `help:"Filter start date, YYYY-MM-DD. Requires --end-date."`
	EndDate   string `help:"Filter end date, YYYY-MM-DD. Requires --start-date."`
	Output    string `short:"o" help:"Output format." enum:"table,json,yaml" default:"table"`

	out    io.Writer `kong:"-"`
	errOut io.Writer `kong:"-"`
}

func (m *MetricsCmd) query() (query.Query, error) {
	q := query.Default()
	q.Page = max(m.Page, 1)

	col, err := query.ParseColumn(m.Sort)
	if err != nil {
		return q, err
	}
	q.Sort = col

	order, err := query.ParseOrder(m.Order)
	if err != nil {
		return q, err
	}
	q.Order = order

	if m.StartDate != "" || m.EndDate != "" {
		f, err := query.NewFilter(m.StartDate, m.EndDate)
		if err != nil {
			return q, err
		}
		q.Filter = f
	}

	return q, nil
}

func (m *MetricsCmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogging()

	q, err := m.query()
	if err != nil {
		return err
	}

	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	a.ctrl.Start()
	if a.ctrl.State() == controller.LoggedOut {
		return ErrNotLoggedIn
	}

	eff, _ := a.ctrl.OnQuery(q)
	resp := a.ctrl.Fetch(ctx, eff)
	outcome := a.ctrl.OnFetchResult(resp)

	log.Debug().
		Stringer("source", resp.Source).
		Int("kind", int(outcome.Kind)).
		Msg("fetch applied")

	switch outcome.Kind {
	case controller.OutcomeLoggedOut:
		return ErrSessionExpired
	case controller.OutcomeClearTable, controller.OutcomeKeepTable:
		return errors.New(outcome.Notice.Message)
	case controller.OutcomeStale:
		return errors.New("response discarded")
	}

	if !outcome.Notice.IsZero() {
		fmt.Fprintln(writerOr(m.errOut, os.Stderr), view.RenderNotice(outcome.Notice))
	}

	w := writerOr(m.out, os.Stdout)

	switch m.Output {
	case view.FormatJSON:
		return view.WriteJSON(w, resp.Result, outcome.Role)
	case view.FormatYAML:
		return view.WriteYAML(w, resp.Result, outcome.Role)
	default:
		if err := view.WriteTable(w, outcome.Rows, outcome.Role); err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, view.Pagination(outcome.Pager))
		return err
	}
}
