package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recorder запоминает последний запрос, дошедший до транспорта
type recorder struct {
	last *http.Request
	err  error
}

func (rec *recorder) RoundTrip(r *http.Request) (*http.Response, error) {
	rec.last = r
	if rec.err != nil {
		return nil, rec.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
}

func TestWithBasicAuth(t *testing.T) {
	rec := &recorder{}
	rt := Chain(rec, WithBasicAuth("admin", "geoserver"))

	req := httptest.NewRequest(http.MethodGet, "http://localhost/rest/workspaces.json", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "Basic YWRtaW46Z2Vvc2VydmVy", rec.last.Header.Get("Authorization"))
	// исходный запрос не изменяется
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestWithHeaders(t *testing.T) {
	rec := &recorder{}
	rt := Chain(rec, WithHeaders(map[string]string{
		"Accept":     "application/json",
		"User-Agent": "geo_publish/test",
	}))

	req := httptest.NewRequest(http.MethodGet, "http://localhost/rest/layers.json", nil)
	req.Header.Set("User-Agent", "custom")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "application/json", rec.last.Header.Get("Accept"))
	assert.Equal(t, "custom", rec.last.Header.Get("User-Agent"))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(&recorder{}, mark("first"), mark("second"))
	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://localhost/", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ok := Chain(&recorder{}, WithLogging(logger))
	_, err := ok.RoundTrip(httptest.NewRequest(http.MethodPut, "http://localhost/rest/layers/test:roads", nil))
	require.NoError(t, err)

	failing := Chain(&recorder{err: errors.New("connection refused")}, WithLogging(logger))
	_, err = failing.RoundTrip(httptest.NewRequest(http.MethodGet, "http://localhost/rest/workspaces/test.json", nil))
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "REST request processed", entries[0].Message)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	assert.Equal(t, "/rest/layers/test:roads", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
