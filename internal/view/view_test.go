package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
	"gopkg.in/yaml.v3"
)

func costPtr(s string) *json.Number {
	n := json.Number(s)
	return &n
}

var testRows = []client.MetricRow{
	{AccountID: "8181000001", CampaignID: "20000000001", Clicks: "12", Conversions: "1", Impressions: "900", Interactions: "15", Date: "2024-01-02", CostMicros: costPtr("1500000")},
	{AccountID: "8181000002", CampaignID: "20000000002", Clicks: "7", Conversions: "0", Impressions: "450", Interactions: "9", Date: "2024-01-01", CostMicros: costPtr("700000")},
}

func TestColumns_CostGatedByRole(t *testing.T) {
	admin := Columns(session.RoleAdmin)
	standard := Columns(session.RoleStandard)

	assert.Len(t, admin, 8)
	assert.Len(t, standard, 7)
	assert.Equal(t, "cost_micros", admin[7].Key)
	assert.Equal(t, "date", standard[6].Key)
	assert.Equal(t, "account_id", standard[0].Key)
}

func TestWriteTable(t *testing.T) {
	tests := []struct {
		role     session.Role
		wantCost bool
	}{
		{role: session.RoleAdmin, wantCost: true},
		{role: session.RoleStandard, wantCost: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTable(&buf, testRows, tt.role))

			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			require.Len(t, lines, 3)
			assert.Equal(t, tt.wantCost, strings.Contains(lines[0], "COST"))
			assert.Equal(t, tt.wantCost, strings.Contains(buf.String(), "1500000"))

			// rows keep the order they were given in
			assert.Contains(t, lines[1], "2024-01-02")
			assert.Contains(t, lines[2], "2024-01-01")
		})
	}
}

func TestRenderingIsIdempotent(t *testing.T) {
	for _, role := range []session.Role{session.RoleAdmin, session.RoleStandard} {
		opts := TableOptions{Sort: query.ColumnClicks, Order: query.OrderAsc, Selected: query.ColumnDate}
		assert.Equal(t, Table(testRows, role, opts), Table(testRows, role, opts))

		var a, b bytes.Buffer
		require.NoError(t, WriteTable(&a, testRows, role))
		require.NoError(t, WriteTable(&b, testRows, role))
		assert.Equal(t, a.String(), b.String())
	}
}

func TestTable(t *testing.T) {
	out := Table(testRows, session.RoleStandard, TableOptions{Sort: query.ColumnDate, Order: query.OrderDesc})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "DATE ▼")
	assert.NotContains(t, out, "COST")
	assert.NotContains(t, out, "1500000")

	out = Table(nil, session.RoleAdmin, TableOptions{Sort: query.ColumnClicks, Order: query.OrderAsc})
	assert.Contains(t, out, "CLICKS ▲")
	assert.Contains(t, out, "COST")
}

func TestPager(t *testing.T) {
	tests := []struct {
		name     string
		pager    Pager
		wantPrev bool
		wantNext bool
		text     string
	}{
		{name: "first of many", pager: Pager{Page: 1, PageSize: 2, TotalItems: 5}, wantPrev: false, wantNext: true, text: "Page 1 of 3 (5 items)"},
		{name: "middle", pager: Pager{Page: 2, PageSize: 2, TotalItems: 5}, wantPrev: true, wantNext: true, text: "Page 2 of 3 (5 items)"},
		{name: "last", pager: Pager{Page: 3, PageSize: 2, TotalItems: 5}, wantPrev: true, wantNext: false, text: "Page 3 of 3 (5 items)"},
		{name: "exact fit", pager: Pager{Page: 1, PageSize: 5, TotalItems: 5}, wantPrev: false, wantNext: false, text: "Page 1 of 1 (5 items)"},
		{name: "empty", pager: Pager{Page: 1, PageSize: 100, TotalItems: 0}, wantPrev: false, wantNext: false, text: "Page 1 of 1 (0 items)"},
		{name: "unknown page size", pager: Pager{Page: 1, TotalItems: 5}, wantPrev: false, wantNext: true, text: "Page 1 (5 items)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPrev, tt.pager.HasPrev())
			assert.Equal(t, tt.wantNext, tt.pager.HasNext())
			assert.Equal(t, tt.text, Pagination(tt.pager))
			assert.Contains(t, PagerControls(tt.pager), tt.text)
		})
	}
}

func TestWriteJSON_StripsCostForStandard(t *testing.T) {
	res := &client.PageResult{Rows: testRows, Page: 1, PageSize: 100, TotalItems: 2}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res, session.RoleStandard))
	assert.NotContains(t, buf.String(), "cost_micros")
	assert.Contains(t, buf.String(), `"clicks": 12`)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, res, session.RoleAdmin))
	assert.Contains(t, buf.String(), `"cost_micros": 1500000`)

	// the input is not modified
	assert.NotNil(t, testRows[0].CostMicros)
}

func TestOutput_NullMetricsStayNull(t *testing.T) {
	var row client.MetricRow
	require.NoError(t, json.Unmarshal([]byte(`{
		"account_id": 8181000001, "campaign_id": 20000000007,
		"clicks": null, "conversions": null, "impressions": 4100, "interactions": null,
		"date": "2024-01-02", "cost_micros": null
	}`), &row))
	res := &client.PageResult{Rows: []client.MetricRow{row}, Page: 1, TotalItems: 1}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res, session.RoleAdmin))

	var doc struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Data, 1)

	got := doc.Data[0]
	for _, k := range []string{"clicks", "conversions", "interactions"} {
		require.Contains(t, got, k)
		assert.Nil(t, got[k], k)
	}
	assert.EqualValues(t, 4100, got["impressions"])
	assert.EqualValues(t, 8181000001, got["account_id"])
	assert.NotContains(t, got, "cost_micros")

	buf.Reset()
	require.NoError(t, WriteYAML(&buf, res, session.RoleAdmin))
	assert.Contains(t, buf.String(), "clicks: null")
	assert.Contains(t, buf.String(), "impressions: 4100")
}

func TestWriteYAML(t *testing.T) {
	res := &client.PageResult{Rows: testRows, Page: 2, TotalItems: 2}

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, res, session.RoleAdmin))

	var doc struct {
		Page int              `yaml:"page"`
		Data []map[string]any `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc.Page)
	require.Len(t, doc.Data, 2)
	assert.Equal(t, 12, doc.Data[0]["clicks"])
	assert.Equal(t, 1500000, doc.Data[0]["cost_micros"])
	assert.Equal(t, "2024-01-02", doc.Data[0]["date"])
	assert.NotContains(t, buf.String(), "page_size")

	buf.Reset()
	require.NoError(t, WriteYAML(&buf, res, session.RoleStandard))
	assert.NotContains(t, buf.String(), "cost_micros")
}

func TestRenderNotice(t *testing.T) {
	assert.Empty(t, RenderNotice(Notice{}))
	assert.Contains(t, RenderNotice(Success("Filter applied.")), "Filter applied.")
	assert.Contains(t, RenderNotice(Error("boom")), "boom")
}
