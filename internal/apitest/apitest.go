// Package apitest is an in-process metrics API honouring the same wire
// contract as the production service. It backs the local development server
// and, through apitesttest, the client, controller and command tests.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultPageSize = 100
	tokenTTL        = time.Hour
)

// User is an account the API accepts. Role is admin or user.
type User struct {
	Email    string
	Password string
	Role     string
}

// Row is one stored metrics record.
type Row struct {
	AccountID    int64  `json:"account_id"`
	CampaignID   int64  `json:"campaign_id"`
	Clicks       int64  `json:"clicks"`
	Conversions  int64  `json:"conversions"`
	Impressions  int64  `json:"impressions"`
	Interactions int64  `json:"interactions"`
	Date         string `json:"date"`
	CostMicros   int64  `json:"cost_micros"`
}

type account struct {
	hash []byte
	role string
}

// API serves POST /auth/login and GET /metrics.
type API struct {
	mu           sync.Mutex
	accounts     map[string]account
	rows         []Row
	secret       []byte
	omitPageSize bool
	queries      []url.Values
	logins       int

	mux *chi.Mux
}

type Option func(*API)

// WithoutPageSize makes /metrics responses omit page_size.
func WithoutPageSize() Option {
	return func(a *API) { a.omitPageSize = true }
}

func New(users []User, rows []Row, opts ...Option) (*API, error) {
	a := &API{
		accounts: make(map[string]account, len(users)),
		rows:     append([]Row(nil), rows...),
		secret:   []byte(uuid.NewString()),
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
		}
		a.accounts[u.Email] = account{hash: hash, role: u.Role}
	}

	for _, opt := range opts {
		opt(a)
	}

	mux := chi.NewRouter()
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Post("/auth/login", a.login)
	mux.Get("/metrics", a.metrics)
	a.mux = mux

	return a, nil
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Revoke invalidates every token issued so far.
func (a *API) Revoke() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.secret = []byte(uuid.NewString())
}

// Queries returns the query strings of every /metrics request received.
func (a *API) Queries() []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]url.Values(nil), a.queries...)
}

// Logins counts successful logins.
func (a *API) Logins() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

// IssueToken signs a token for email without a password check.
func (a *API) IssueToken(email, role string) (string, error) {
	a.mu.Lock()
	secret := a.secret
	a.mu.Unlock()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  email,
		"role": role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}).SignedString(secret)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}

	if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
		writeDetail(w, http.StatusBadRequest, "unsupported grant_type")
		return
	}

	email := r.PostForm.Get("username")
	a.mu.Lock()
	acct, ok := a.accounts[email]
	a.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(r.PostForm.Get("password"))) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := a.IssueToken(email, acct.role)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	a.mu.Lock()
	a.logins++
	a.mu.Unlock()

	log.Debug().Str("email", email).Msg("fake api login")

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
		"role":         acct.role,
	})
}

func (a *API) authenticate(r *http.Request) (string, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", errors.New("missing bearer token")
	}

	a.mu.Lock()
	secret := a.secret
	a.mu.Unlock()

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return "", errors.New("token has no role")
	}
	return role, nil
}

type metricsParams struct {
	page     int
	pageSize int
	sort     string
	order    string
	start    string
	end      string
}

func parseMetricsParams(v url.Values) (metricsParams, []fieldError) {
	p := metricsParams{page: 1, pageSize: DefaultPageSize, sort: v.Get("sort"), order: strings.ToLower(v.Get("order"))}

	var errs []fieldError
	for name, dst := range map[string]*int{"page": &p.page, "page_size": &p.pageSize} {
		raw := v.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, fieldError{Loc: []string{"query", name}, Msg: "value is not a valid positive integer"})
			continue
		}
		*dst = n
	}

	if p.order == "" {
		p.order = "desc"
	}

	p.start, p.end = v.Get("start_date"), v.Get("end_date")

	return p, errs
}

func (a *API) metrics(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.queries = append(a.queries, r.URL.Query())
	a.mu.Unlock()

	role, err := a.authenticate(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	p, errs := parseMetricsParams(r.URL.Query())
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Loc[1] < errs[j].Loc[1] })
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
		return
	}

	for name, raw := range map[string]string{"start_date": p.start, "end_date": p.end} {
		if raw == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
			return
		}
	}
	if p.start != "" && p.end != "" && p.start > p.end {
		writeDetail(w, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}

	a.mu.Lock()
	rows := make([]Row, 0, len(a.rows))
	for _, row := range a.rows {
		if p.start != "" && row.Date < p.start {
			continue
		}
		if p.end != "" && row.Date > p.end {
			continue
		}
		rows = append(rows, row)
	}
	omitPageSize := a.omitPageSize
	a.mu.Unlock()

	sortRows(rows, p.sort, p.order, role == "admin")

	total := len(rows)
	offset := min((p.page-1)*p.pageSize, total)
	end := min(offset+p.pageSize, total)

	data := make([]map[string]any, 0, end-offset)
	for _, row := range rows[offset:end] {
		data = append(data, project(row, role == "admin"))
	}

	resp := map[string]any{
		"page":        p.page,
		"total_items": total,
		"data":        data,
	}
	if !omitPageSize {
		resp["page_size"] = p.pageSize
	}

	writeJSON(w, http.StatusOK, resp)
}

func project(row Row, admin bool) map[string]any {
	m := map[string]any{
		"account_id":   row.AccountID,
		"campaign_id":  row.CampaignID,
		"clicks":       row.Clicks,
		"conversions":  row.Conversions,
		"impressions":  row.Impressions,
		"interactions": row.Interactions,
		"date":         row.Date,
	}
	if admin {
		m["cost_micros"] = row.CostMicros
	}
	return m
}

// sortRows orders by column, falling back to date descending for unknown
// columns. cost_micros is only sortable by admins.
func sortRows(rows []Row, column, order string, admin bool) {
	key := func(r Row) (int64, string) {
		switch column {
		case "account_id":
			return r.AccountID, ""
		case "campaign_id":
			return r.CampaignID, ""
		case "clicks":
			return r.Clicks, ""
		case "conversions":
			return r.Conversions, ""
		case "impressions":
			return r.Impressions, ""
		case "interactions":
			return r.Interactions, ""
		case "cost_micros":
			if admin {
				return r.CostMicros, ""
			}
		}
		return 0, r.Date
	}

	desc := order != "asc"
	switch column {
	case "account_id", "campaign_id", "clicks", "conversions", "impressions", "interactions", "date":
	case "cost_micros":
		if !admin {
			desc = true
		}
	default:
		desc = true
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ni, si := key(rows[i])
		nj, sj := key(rows[j])
		if si != sj {
			if desc {
				return si > sj
			}
			return si < sj
		}
		if desc {
			return ni > nj
		}
		return ni < nj
	})
}

type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type,omitempty"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
