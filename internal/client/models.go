package client

import "encoding/json"

// MetricRow is one row of the metrics table as returned by the API. Numbers
// are kept verbatim.
type MetricRow struct {
	AccountID    json.Number  `json:"account_id" yaml:"account_id"`
	CampaignID   json.Number  `json:"campaign_id" yaml:"campaign_id"`
	Clicks       json.Number  `json:"clicks" yaml:"clicks"`
	Conversions  json.Number  `json:"conversions" yaml:"conversions"`
	Impressions  json.Number  `json:"impressions" yaml:"impressions"`
	Interactions json.Number  `json:"interactions" yaml:"interactions"`
	Date         string       `json:"date" yaml:"date"`
	CostMicros   *json.Number `json:"cost_micros,omitempty" yaml:"cost_micros,omitempty"`
}

// PageResult is one page of rows. PageSize is 0 when the API did not say.
type PageResult struct {
	Rows       []MetricRow `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size,omitempty"`
	TotalItems int         `json:"total_items"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
