package apitest

import (
	"math/rand/v2"
	"time"
)

// Well known accounts for tests and the development server.
var (
	Admin    = User{Email: "admin@example.com", Password: "admin-pass", Role: "admin"}
	Standard = User{Email: "user@example.com", Password: "user-pass", Role: "user"}
)

// GenerateRows produces n deterministic rows spread over consecutive days
// ending on last.
func GenerateRows(n int, last time.Time, seed uint64) []Row {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	rows := make([]Row, 0, n)
	for i := range n {
		impressions := int64(1000 + r.IntN(100000))
		clicks := impressions / int64(20+r.IntN(80))
		rows = append(rows, Row{
			AccountID:    int64(8181000000 + r.IntN(5)),
			CampaignID:   int64(20000000000 + r.IntN(50)),
			Clicks:       clicks,
			Conversions:  clicks / int64(5+r.IntN(20)),
			Impressions:  impressions,
			Interactions: clicks + int64(r.IntN(50)),
			Date:         last.AddDate(0, 0, -i).Format(time.DateOnly),
			CostMicros:   clicks * int64(100000+r.IntN(900000)),
		})
	}
	return rows
}

// NewDefault builds an API with the Admin and Standard accounts and rows.
func NewDefault(rows []Row, opts ...Option) (*API, error) {
	return New([]User{Admin, Standard}, rows, opts...)
}
