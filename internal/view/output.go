package view

import (
	"encoding/json"
	"io"

	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/session"
	"gopkg.in/yaml.v3"
)

// Output formats for the one-shot metrics command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

type document struct {
	Page       int   `json:"page" yaml:"page"`
	PageSize   int   `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	TotalItems int   `json:"total_items" yaml:"total_items"`
	Data       []any `json:"data" yaml:"data"`
}

// outputRow is a row as written by WriteJSON and WriteYAML. A null metric
// stays null.
type outputRow struct {
	AccountID    any    `json:"account_id" yaml:"account_id"`
	CampaignID   any    `json:"campaign_id" yaml:"campaign_id"`
	Clicks       any    `json:"clicks" yaml:"clicks"`
	Conversions  any    `json:"conversions" yaml:"conversions"`
	Impressions  any    `json:"impressions" yaml:"impressions"`
	Interactions any    `json:"interactions" yaml:"interactions"`
	Date         string `json:"date" yaml:"date"`
	CostMicros   any    `json:"cost_micros,omitempty" yaml:"cost_micros,omitempty"`
}

// newDocument copies res, dropping the cost of every row unless role is
// admin. conv renders each number.
func newDocument(res *client.PageResult, role session.Role, conv func(json.Number) any) document {
	doc := document{Page: res.Page, PageSize: res.PageSize, TotalItems: res.TotalItems, Data: []any{}}
	for _, r := range res.Rows {
		row := outputRow{
			AccountID:    conv(r.AccountID),
			CampaignID:   conv(r.CampaignID),
			Clicks:       conv(r.Clicks),
			Conversions:  conv(r.Conversions),
			Impressions:  conv(r.Impressions),
			Interactions: conv(r.Interactions),
			Date:         r.Date,
		}
		if r.CostMicros != nil && role.IsAdmin() {
			row.CostMicros = conv(*r.CostMicros)
		}
		doc.Data = append(doc.Data, row)
	}
	return doc
}

func WriteJSON(w io.Writer, res *client.PageResult, role session.Role) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(res, role, verbatim))
}

func WriteYAML(w io.Writer, res *client.PageResult, role session.Role) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(res, role, number)); err != nil {
		return err
	}
	return enc.Close()
}

// verbatim keeps the API's number text; an empty number was null.
func verbatim(n json.Number) any {
	if n == "" {
		return nil
	}
	return n
}

// number keeps integers exact and falls back to the literal text.
func number(n json.Number) any {
	if n == "" {
		return nil
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
