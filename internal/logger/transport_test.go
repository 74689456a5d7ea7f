package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequests_TagsAndLogs(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	hc := &http.Client{Transport: NewHTTPRequests(zerolog.New(&buf).Level(zerolog.DebugLevel), nil)}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/metrics", nil)
	require.NoError(t, err)

	resp, err := hc.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotEmpty(t, seen)
	assert.Empty(t, req.Header.Get(RequestIDHeader), "caller request must not be modified")
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/metrics"`)
	assert.Contains(t, buf.String(), seen)
}

func TestHTTPRequests_KeepsExistingID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	hc := &http.Client{Transport: NewHTTPRequests(zerolog.Nop(), nil)}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc")

	resp, err := hc.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abc", seen)
}

func TestHTTPRequests_LogsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	hc := &http.Client{Transport: NewHTTPRequests(zerolog.New(&buf), nil)}

	_, err := hc.Get(url)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestSetupFile(t *testing.T) {
	dir := t.TempDir()

	l, closer, err := SetupFile(dir, "test.log", false)
	require.NoError(t, err)
	defer closer.Close()

	l.Info().Msg("hello")
	assert.FileExists(t, dir+"/test.log")
}
