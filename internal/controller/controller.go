// Package controller is the dashboard state machine. It owns the session and
// query state, turns user actions into effects, and turns fetch results into
// outcomes for the view.
//
// A Controller is not safe for concurrent use. Callers drive every On*
// method from a single goroutine; only Login and Fetch may run elsewhere,
// since they read nothing but their Effect.
package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
	"github.com/wolfeidau/admetrics/internal/telemetry"
	"github.com/wolfeidau/admetrics/internal/view"
)

// User facing messages.
const (
	MsgInvalidCredentials = "Invalid credentials. Try again."
	MsgMissingCredentials = "Please enter your email and password."
	MsgRetryLater         = "Could not connect to the API. Please try again later."
	MsgFilterApplied      = "Filter applied."
	MsgNoData             = "No data found for this filter."
	MsgFiltersCleared     = "Filters cleared."
)

// Notice is a transient message returned by an action handler.
type Notice = view.Notice

// API is the remote side the controller drives.
type API interface {
	Login(ctx context.Context, username, password string) (session.Session, error)
	FetchPage(ctx context.Context, sess session.Session, q query.Query) (*client.PageResult, error)
}

var _ API = (*client.Client)(nil)

// State is the authentication state of the dashboard.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

type Controller struct {
	api      API
	sessions *session.Store
	query    *query.State
	state    State

	// issued is the sequence number of the newest fetch effect, applied the
	// newest response acted on. Responses at or below applied are stale.
	issued  uint64
	applied uint64

	pager           view.Pager
	pagerKnown      bool
	defaultPageSize int

	metrics *telemetry.Metrics
}

type Option func(*Controller)

// WithPageSize sets the page size assumed when a response omits page_size.
// Zero leaves it unknown.
func WithPageSize(n int) Option {
	return func(c *Controller) { c.defaultPageSize = max(0, n) }
}

func New(api API, sessions *session.Store, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		sessions: sessions,
		query:    query.NewState(),
		pager:    view.Pager{Page: 1},
		metrics:  telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Session() session.Session { return c.sessions.Current() }

func (c *Controller) Query() query.Query { return c.query.Snapshot() }

// Pager reflects the last successfully applied page.
func (c *Controller) Pager() view.Pager { return c.pager }

// Start restores a persisted session. With one, the controller goes straight
// to LoggedIn and asks for the first page.
func (c *Controller) Start() Effect {
	sess := c.sessions.Restore()
	if sess.IsZero() {
		c.state = LoggedOut
		return Effect{}
	}

	c.state = LoggedIn
	c.query.Reset()
	c.resetPager()

	log.Debug().Str("role", string(sess.Role)).Msg("resuming persisted session")

	return c.fetch(SourceInitial)
}

// OnLogin validates the form and returns the login effect.
func (c *Controller) OnLogin(username, password string) (Effect, Notice) {
	if c.state == LoggedIn {
		return Effect{}, Notice{}
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Effect{}, view.Error(MsgMissingCredentials)
	}

	return Effect{Kind: EffectLogin, Credentials: Credentials{Username: username, Password: password}}, Notice{}
}

// Login executes a login effect without touching controller state.
func (c *Controller) Login(ctx context.Context, eff Effect) LoginResult {
	sess, err := c.api.Login(ctx, eff.Credentials.Username, eff.Credentials.Password)
	return LoginResult{Session: sess, Err: err}
}

// OnLoginResult establishes the session and requests the default query.
func (c *Controller) OnLoginResult(r LoginResult) (Effect, Notice) {
	if c.state == LoggedIn {
		return Effect{}, Notice{}
	}

	if r.Err != nil {
		var authErr *client.AuthenticationError
		if errors.As(r.Err, &authErr) {
			log.Info().Int("status", authErr.StatusCode).Msg("login rejected")
			return Effect{}, view.Error(MsgInvalidCredentials)
		}
		log.Error().Err(r.Err).Msg("login failed")
		return Effect{}, view.Error(MsgRetryLater)
	}

	if err := c.sessions.Set(r.Session.Token, r.Session.Role); err != nil {
		log.Error().Err(err).Msg("failed to store session")
		return Effect{}, view.Error("Could not save the session: " + err.Error())
	}

	c.state = LoggedIn
	c.query.Reset()
	c.resetPager()

	return c.fetch(SourceInitial), Notice{}
}

// OnLogout tears the session down. Responses still in flight are discarded.
func (c *Controller) OnLogout() (Effect, Notice) {
	if c.state == LoggedOut {
		return Effect{}, Notice{}
	}

	c.logout()

	if err := c.sessions.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear persisted session")
		return Effect{}, view.Error("Logged out, but the saved session could not be removed.")
	}

	return Effect{}, Notice{}
}

// OnSortClick sorts by col, toggling the order when it is already the sort
// column.
func (c *Controller) OnSortClick(col query.Column) (Effect, Notice) {
	if c.state != LoggedIn {
		return Effect{}, Notice{}
	}
	c.query.SetSort(col)
	c.pagerKnown = false
	return c.fetch(SourceSort), Notice{}
}

// OnFilterApply requires both bounds. An invalid filter sends no request.
func (c *Controller) OnFilterApply(start, end string) (Effect, Notice) {
	if c.state != LoggedIn {
		return Effect{}, Notice{}
	}

	f, err := query.NewFilter(start, end)
	if err != nil {
		return Effect{}, view.Error(err.Error())
	}

	c.query.SetFilter(f)
	c.pagerKnown = false
	return c.fetch(SourceFilterApply), Notice{}
}

func (c *Controller) OnFilterClear() (Effect, Notice) {
	if c.state != LoggedIn {
		return Effect{}, Notice{}
	}
	c.query.ClearFilter()
	c.pagerKnown = false
	return c.fetch(SourceFilterClear), Notice{}
}

// OnPageChange moves delta pages. Moving before page 1, or past the last
// page when the page size is known, is a no-op. The bound only applies once
// a response for the current sort and filter has been applied.
func (c *Controller) OnPageChange(delta int) (Effect, Notice) {
	if c.state != LoggedIn || delta == 0 {
		return Effect{}, Notice{}
	}

	target := c.query.Snapshot().Page + delta
	if target < 1 {
		return Effect{}, Notice{}
	}
	if delta > 0 && c.pagerKnown && c.pager.PageSize > 0 && (target-1)*c.pager.PageSize >= c.pager.TotalItems {
		return Effect{}, Notice{}
	}

	c.query.SetPage(target)
	return c.fetch(SourcePage), Notice{}
}

// OnRefresh requests the current query again.
func (c *Controller) OnRefresh() (Effect, Notice) {
	if c.state != LoggedIn {
		return Effect{}, Notice{}
	}
	return c.fetch(SourceRefresh), Notice{}
}

// OnQuery replaces the whole query, for callers that take it from flags. A
// query carrying a filter reports like a filter apply.
func (c *Controller) OnQuery(q query.Query) (Effect, Notice) {
	if c.state != LoggedIn {
		return Effect{}, Notice{}
	}
	c.query.Replace(q)
	c.pagerKnown = false

	src := SourceQuery
	if q.Filter != nil {
		src = SourceFilterApply
	}
	return c.fetch(src), Notice{}
}

// Fetch executes a fetch effect without touching controller state.
func (c *Controller) Fetch(ctx context.Context, eff Effect) Response {
	res, err := c.api.FetchPage(ctx, eff.Session, eff.Query)
	return Response{
		Seq:    eff.Seq,
		Source: eff.Source,
		Role:   eff.Session.Role,
		Query:  eff.Query,
		Result: res,
		Err:    err,
	}
}

// OnFetchResult applies a response, unless a newer one was already applied
// or the session it was issued under is gone.
func (c *Controller) OnFetchResult(r Response) Outcome {
	if c.state != LoggedIn || r.Seq <= c.applied {
		log.Debug().Uint64("seq", r.Seq).Uint64("applied", c.applied).Msg("discarding stale response")
		c.metrics.StaleResponsesTotal.Add(context.Background(), 1)
		return Outcome{Kind: OutcomeStale}
	}
	c.applied = r.Seq

	var apiErr *client.APIError

	switch {
	case r.Err == nil:
		return c.render(r)

	case errors.Is(r.Err, client.ErrUnauthorized):
		log.Info().Msg("session rejected by api, logging out")
		c.metrics.ForcedLogoutsTotal.Add(context.Background(), 1)
		c.logout()
		if err := c.sessions.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear persisted session")
		}
		return Outcome{Kind: OutcomeLoggedOut}

	case errors.As(r.Err, &apiErr):
		c.pager = view.Pager{Page: r.Query.Page, PageSize: c.pager.PageSize}
		c.pagerKnown = false
		return Outcome{
			Kind:   OutcomeClearTable,
			Role:   r.Role,
			Pager:  c.pager,
			Notice: view.Error("Error: " + apiErr.Detail),
		}

	default:
		log.Error().Err(r.Err).Uint64("seq", r.Seq).Msg("fetch failed")
		return Outcome{Kind: OutcomeKeepTable, Notice: view.Error(MsgRetryLater)}
	}
}

func (c *Controller) render(r Response) Outcome {
	res := r.Result
	if res == nil {
		res = &client.PageResult{Page: r.Query.Page}
	}

	pageSize := res.PageSize
	if pageSize <= 0 {
		pageSize = c.defaultPageSize
	}

	c.pager = view.Pager{Page: res.Page, PageSize: pageSize, TotalItems: res.TotalItems}
	c.pagerKnown = true

	var notice Notice
	switch r.Source {
	case SourceFilterApply:
		if len(res.Rows) > 0 {
			notice = view.Success(MsgFilterApplied)
		} else {
			notice = view.Error(MsgNoData)
		}
	case SourceFilterClear:
		notice = view.Success(MsgFiltersCleared)
	}

	return Outcome{
		Kind:   OutcomeRender,
		Rows:   res.Rows,
		Role:   r.Role,
		Pager:  c.pager,
		Notice: notice,
	}
}

func (c *Controller) fetch(src Source) Effect {
	c.issued++
	return Effect{
		Kind:    EffectFetch,
		Seq:     c.issued,
		Session: c.sessions.Current(),
		Query:   c.query.Snapshot(),
		Source:  src,
	}
}

func (c *Controller) logout() {
	c.state = LoggedOut
	c.applied = c.issued
	c.resetPager()
}

func (c *Controller) resetPager() {
	c.pager = view.Pager{Page: 1}
	c.pagerKnown = false
}
