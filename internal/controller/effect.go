package controller

import (
	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
	"github.com/wolfeidau/admetrics/internal/view"
)

// EffectKind is the work an action asks the event loop to perform.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectFetch
	EffectLogin
)

// Source is the action that triggered a fetch. It selects the notice shown
// on success.
type Source int

const (
	SourceInitial Source = iota
	SourceSort
	SourcePage
	SourceFilterApply
	SourceFilterClear
	SourceRefresh
	SourceQuery
)

var sourceNames = map[Source]string{
	SourceInitial:     "initial",
	SourceSort:        "sort",
	SourcePage:        "page",
	SourceFilterApply: "filter_apply",
	SourceFilterClear: "filter_clear",
	SourceRefresh:     "refresh",
	SourceQuery:       "query",
}

func (s Source) String() string { return sourceNames[s] }

type Credentials struct {
	Username string
	Password string
}

// Effect is an immutable snapshot of everything needed to perform the work,
// so it can run off the event loop.
type Effect struct {
	Kind        EffectKind
	Seq         uint64
	Session     session.Session
	Query       query.Query
	Source      Source
	Credentials Credentials
}

func (e Effect) IsNone() bool { return e.Kind == EffectNone }

type LoginResult struct {
	Session session.Session
	Err     error
}

// Response is the result of a fetch effect.
type Response struct {
	Seq    uint64
	Source Source
	Role   session.Role
	Query  query.Query
	Result *client.PageResult
	Err    error
}

// OutcomeKind tells the view what to do with a response.
type OutcomeKind int

const (
	// OutcomeStale: ignore, a newer response was applied.
	OutcomeStale OutcomeKind = iota
	// OutcomeRender: replace the table with Rows.
	OutcomeRender
	// OutcomeClearTable: empty the table and show the notice.
	OutcomeClearTable
	// OutcomeKeepTable: leave the table as is and show the notice.
	OutcomeKeepTable
	// OutcomeLoggedOut: return to the login view without a notice.
	OutcomeLoggedOut
)

type Outcome struct {
	Kind   OutcomeKind
	Rows   []client.MetricRow
	Role   session.Role
	Pager  view.Pager
	Notice view.Notice
}
