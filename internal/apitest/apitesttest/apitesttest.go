// Package apitesttest wires the fake metrics API into tests.
package apitesttest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/admetrics/internal/apitest"
)

// New builds an API with the Admin and Standard accounts and rows.
func New(t testing.TB, rows []apitest.Row, opts ...apitest.Option) *apitest.API {
	t.Helper()
	api, err := apitest.NewDefault(rows, opts...)
	require.NoError(t, err)
	return api
}

// Start serves api on a test server closed when the test ends.
func Start(t testing.TB, api *apitest.API) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return srv
}
