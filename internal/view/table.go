// Package view projects fetched metrics into terminal output. Every function
// is a pure function of its inputs.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
)

// Column describes one visible table column.
type Column struct {
	Key   string
	Title string
	// Sort is the query column this header sorts by, empty when not sortable.
	Sort      query.Column
	AdminOnly bool
	Numeric   bool
	value     func(client.MetricRow) string
}

var columns = []Column{
	{Key: "account_id", Title: "ACCOUNT", Sort: query.ColumnAccountID, Numeric: true, value: func(r client.MetricRow) string { return r.AccountID.String() }},
	{Key: "campaign_id", Title: "CAMPAIGN", Sort: query.ColumnCampaignID, Numeric: true, value: func(r client.MetricRow) string { return r.CampaignID.String() }},
	{Key: "clicks", Title: "CLICKS", Sort: query.ColumnClicks, Numeric: true, value: func(r client.MetricRow) string { return r.Clicks.String() }},
	{Key: "conversions", Title: "CONVERSIONS", Sort: query.ColumnConversions, Numeric: true, value: func(r client.MetricRow) string { return r.Conversions.String() }},
	{Key: "impressions", Title: "IMPRESSIONS", Sort: query.ColumnImpressions, Numeric: true, value: func(r client.MetricRow) string { return r.Impressions.String() }},
	{Key: "interactions", Title: "INTERACTIONS", Sort: query.ColumnInteractions, Numeric: true, value: func(r client.MetricRow) string { return r.Interactions.String() }},
	{Key: "date", Title: "DATE", Sort: query.ColumnDate, value: func(r client.MetricRow) string { return r.Date }},
	{Key: "cost_micros", Title: "COST (MICROS)", AdminOnly: true, Numeric: true, value: func(r client.MetricRow) string {
		if r.CostMicros == nil {
			return ""
		}
		return r.CostMicros.String()
	}},
}

// Columns returns the columns visible to role, in display order.
func Columns(role session.Role) []Column {
	visible := make([]Column, 0, len(columns))
	for _, c := range columns {
		if c.AdminOnly && !role.IsAdmin() {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}

// SortableColumns returns the query columns a header can sort by, in
// display order.
func SortableColumns() []query.Column {
	var cols []query.Column
	for _, c := range columns {
		if c.Sort != "" {
			cols = append(cols, c.Sort)
		}
	}
	return cols
}

// WriteTable writes rows as aligned plain text in the order given.
func WriteTable(w io.Writer, rows []client.MetricRow, role session.Role) error {
	cols := Columns(role)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	cells := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			cells[i] = c.value(r)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// TableOptions decorates the header of a rendered table.
type TableOptions struct {
	Sort  query.Column
	Order query.Order
	// Selected highlights the header sorting by this column.
	Selected query.Column
}

// Table renders rows with lipgloss styles for the interactive dashboard.
func Table(rows []client.MetricRow, role session.Role, opts TableOptions) string {
	styles := DefaultStyles()
	cols := Columns(role)

	titles := make([]string, len(cols))
	widths := make([]int, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
		if c.Sort != "" && c.Sort == opts.Sort {
			titles[i] += " " + arrow(opts.Order)
		}
		widths[i] = lipgloss.Width(titles[i])
	}

	cells := make([][]string, len(rows))
	for ri, r := range rows {
		cells[ri] = make([]string, len(cols))
		for i, c := range cols {
			v := c.value(r)
			cells[ri][i] = v
			widths[i] = max(widths[i], lipgloss.Width(v))
		}
	}

	var b strings.Builder

	header := make([]string, len(cols))
	for i, c := range cols {
		st := styles.Header
		switch {
		case c.Sort != "" && c.Sort == opts.Selected:
			st = styles.Selected
		case c.Sort != "" && c.Sort == opts.Sort:
			st = styles.Sorted
		}
		header[i] = st.Render(pad(titles[i], widths[i], c.Numeric))
	}
	b.WriteString(strings.Join(header, "  "))

	for _, row := range cells {
		b.WriteByte('\n')
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = styles.Cell.Render(pad(row[i], widths[i], c.Numeric))
		}
		b.WriteString(strings.Join(line, "  "))
	}

	return b.String()
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func arrow(o query.Order) string {
	if o == query.OrderAsc {
		return "▲"
	}
	return "▼"
}
