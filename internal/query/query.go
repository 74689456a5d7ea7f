// Package query holds the pagination, sort and filter parameters that
// select which metrics page is requested.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of filter bounds.
const DateLayout = "2006-01-02"

// Column is a sortable metrics column.
type Column string

const (
	ColumnDate         Column = "date"
	ColumnAccountID    Column = "account_id"
	ColumnCampaignID   Column = "campaign_id"
	ColumnClicks       Column = "clicks"
	ColumnConversions  Column = "conversions"
	ColumnImpressions  Column = "impressions"
	ColumnInteractions Column = "interactions"
)

// Columns lists every sortable column.
var Columns = []Column{
	ColumnDate,
	ColumnAccountID,
	ColumnCampaignID,
	ColumnClicks,
	ColumnConversions,
	ColumnImpressions,
	ColumnInteractions,
}

func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(s)) {
	case OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Toggle returns the opposite direction.
func (o Order) Toggle() Order {
	if o == OrderAsc {
		return OrderDesc
	}
	return OrderAsc
}

// Filter is an inclusive date range. Both bounds are always set.
type Filter struct {
	Start time.Time
	End   time.Time
}

// NewFilter validates the raw bounds entered by the user. Both must be
// present and well formed.
func NewFilter(start, end string) (*Filter, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil, &ValidationError{Field: "date", Message: MsgMissingDateBound}
	}

	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, &ValidationError{Field: "start_date", Message: fmt.Sprintf("Invalid start date %q, expected YYYY-MM-DD.", start)}
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil, &ValidationError{Field: "end_date", Message: fmt.Sprintf("Invalid end date %q, expected YYYY-MM-DD.", end)}
	}

	return &Filter{Start: s, End: e}, nil
}

func (f Filter) String() string {
	return f.Start.Format(DateLayout) + ".." + f.End.Format(DateLayout)
}

// Query is an immutable snapshot of the request parameters.
type Query struct {
	Page   int
	Sort   Column
	Order  Order
	Filter *Filter
}

// Default is page 1 sorted by date, newest first, unfiltered.
func Default() Query {
	return Query{Page: 1, Sort: ColumnDate, Order: OrderDesc}
}

// Values encodes the query string for GET /metrics. The date bounds are
// included only when a filter is set.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("sort", string(q.Sort))
	v.Set("order", string(q.Order))
	if q.Filter != nil {
		v.Set("start_date", q.Filter.Start.Format(DateLayout))
		v.Set("end_date", q.Filter.End.Format(DateLayout))
	}
	return v
}

func (q Query) clone() Query {
	if q.Filter != nil {
		f := *q.Filter
		q.Filter = &f
	}
	return q
}
