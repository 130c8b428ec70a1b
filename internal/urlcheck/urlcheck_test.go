package urlcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckStatusCode(t *testing.T) {
	srv := newServer(t)

	code, err := CheckStatusCode(context.Background(), srv.Client(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	code, err = CheckStatusCode(context.Background(), nil, srv.URL+"/gone")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheckStatusCode_Errors(t *testing.T) {
	_, err := CheckStatusCode(context.Background(), nil, "://bad")
	assert.ErrorIs(t, err, errors.ErrValidation)

	srv := newServer(t)
	url := srv.URL + "/ok"
	srv.Close()
	_, err = CheckStatusCode(context.Background(), nil, url)
	assert.ErrorIs(t, err, errors.ErrTransport)
}

func TestCheckAll(t *testing.T) {
	srv := newServer(t)
	urls := []string{srv.URL + "/ok", srv.URL + "/gone", "://bad", srv.URL + "/ok"}

	results := CheckAll(context.Background(), srv.Client(), urls, 2)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.Equal(t, http.StatusNotFound, results[1].StatusCode)
	assert.Error(t, results[2].Err)
	assert.True(t, results[3].OK())
	for i, r := range results {
		assert.Equal(t, urls[i], r.URL)
	}
}
