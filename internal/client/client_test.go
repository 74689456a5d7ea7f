package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/admetrics/internal/apitest"
	"github.com/wolfeidau/admetrics/internal/apitest/apitesttest"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL})
	require.NoError(t, err)
	return c
}

func TestLogin(t *testing.T) {
	api := apitesttest.New(t, nil)
	srv := apitesttest.Start(t, api)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	sess, err := c.Login(ctx, apitest.Admin.Email, apitest.Admin.Password)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, session.RoleAdmin, sess.Role)

	sess, err = c.Login(ctx, apitest.Standard.Email, apitest.Standard.Password)
	require.NoError(t, err)
	assert.Equal(t, session.RoleStandard, sess.Role)

	_, err = c.Login(ctx, apitest.Admin.Email, "wrong")
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "Invalid credentials", authErr.Detail)

	assert.Equal(t, 2, api.Logins())
}

func TestLogin_FormAndRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "a@b.com", r.PostForm.Get("username"))
		assert.Equal(t, "x", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"T1","role":"admin"}`))
	}))
	defer srv.Close()

	sess, err := newTestClient(t, srv.URL).Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: "T1", Role: session.RoleAdmin}, sess)
}

func TestLogin_MissingRoleIsStandard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"T1"}`))
	}))
	defer srv.Close()

	sess, err := newTestClient(t, srv.URL).Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, session.RoleStandard, sess.Role)
}

func TestLogin_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Login(context.Background(), "a@b.com", "x")
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, "network", ErrorKind(err))
}

func TestFetchPage(t *testing.T) {
	api := apitesttest.New(t, apitest.GenerateRows(5, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 1))
	srv := apitesttest.Start(t, api)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	admin, err := c.Login(ctx, apitest.Admin.Email, apitest.Admin.Password)
	require.NoError(t, err)

	res, err := c.FetchPage(ctx, admin, query.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 5, res.TotalItems)
	assert.Equal(t, apitest.DefaultPageSize, res.PageSize)
	require.Len(t, res.Rows, 5)
	assert.Equal(t, "2024-01-05", res.Rows[0].Date)
	require.NotNil(t, res.Rows[0].CostMicros)

	standard, err := c.Login(ctx, apitest.Standard.Email, apitest.Standard.Password)
	require.NoError(t, err)

	res, err = c.FetchPage(ctx, standard, query.Default())
	require.NoError(t, err)
	assert.Nil(t, res.Rows[0].CostMicros)
}

func TestFetchPage_RequestShape(t *testing.T) {
	filter, err := query.NewFilter("2024-01-01", "2024-01-31")
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    query.Query
		expected string
	}{
		{
			name:     "default",
			query:    query.Default(),
			expected: "order=desc&page=1&sort=date",
		},
		{
			name:     "filtered",
			query:    query.Query{Page: 3, Sort: query.ColumnImpressions, Order: query.OrderAsc, Filter: filter},
			expected: "end_date=2024-01-31&order=asc&page=3&sort=impressions&start_date=2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery, gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Encode()
				gotAuth = r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":[],"page":3,"total_items":0}`))
			}))
			defer srv.Close()

			res, err := newTestClient(t, srv.URL).FetchPage(context.Background(), session.Session{Token: "T1", Role: session.RoleAdmin}, tt.query)
			require.NoError(t, err)
			assert.Equal(t, 0, res.PageSize)

			assert.Equal(t, tt.expected, gotQuery)
			assert.Equal(t, "Bearer T1", gotAuth)
		})
	}
}

func TestFetchPage_Classification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   string
		wantDetail string
	}{
		{name: "unauthorized", status: 401, body: `{"detail":"Invalid or expired token"}`, wantKind: "unauthorized"},
		{name: "domain error", status: 400, body: `{"detail":"start_date must not be after end_date"}`, wantKind: "api", wantDetail: "start_date must not be after end_date"},
		{name: "validation list", status: 422, body: `{"detail": [ {"loc": ["query","page"], "msg": "bad"} ]}`, wantKind: "api", wantDetail: `[{"loc":["query","page"],"msg":"bad"}]`},
		{name: "json without detail", status: 500, body: `{}`, wantKind: "api", wantDetail: "Internal Server Error"},
		{name: "proxy html page", status: 502, body: `<html>bad gateway</html>`, wantKind: "network"},
		{name: "plain text not found", status: 404, body: `404 page not found`, wantKind: "network"},
		{name: "empty body", status: 503, body: ``, wantKind: "network"},
		{name: "undecodable success", status: 200, body: `{"data":`, wantKind: "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).FetchPage(context.Background(), session.Session{Token: "T1", Role: session.RoleStandard}, query.Default())
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, ErrorKind(err))

			if tt.wantKind == "network" && tt.status >= 300 {
				assert.ErrorIs(t, err, ErrNotJSON)
			}

			if tt.wantDetail != "" {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, tt.wantDetail, apiErr.Detail)
			}
		})
	}
}

func TestFetchPage_RevokedToken(t *testing.T) {
	api := apitesttest.New(t, nil)
	srv := apitesttest.Start(t, api)
	c := newTestClient(t, srv.URL)

	sess, err := c.Login(context.Background(), apitest.Admin.Email, apitest.Admin.Password)
	require.NoError(t, err)

	api.Revoke()

	_, err = c.FetchPage(context.Background(), sess, query.Default())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetchPage_EmptyTokenSendsNothing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).FetchPage(context.Background(), session.Session{}, query.Default())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, calls)
}

func TestFetchPage_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).FetchPage(context.Background(), session.Session{Token: "T1", Role: session.RoleAdmin}, query.Default())
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestFetchPage_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchPage(context.Background(), session.Session{Token: "T1", Role: session.RoleAdmin}, query.Default())
	assert.Equal(t, "network", ErrorKind(err))
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:8000"})
	assert.Error(t, err)
}
