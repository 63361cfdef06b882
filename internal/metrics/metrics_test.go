package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/metrics", "/metrics"},
		{"/api/parse", "/api/parse"},
		{"/api/catalog", "/api/catalog"},
		{"/api/catalog/info", "/api/catalog/info"},
		{"/api/catalog/refresh", "/api/catalog/refresh"},

		{"/api/catalog/25544", "/api/catalog/{id}"},
		{"/api/catalog/5", "/api/catalog/{id}"},

		{"/api/catalog/", "other"},
		{"/api/catalog/1/2", "other"},
		{"/wp-admin", "other"},
		{"/", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRoute(tt.path))
		})
	}
}

// Many catalog numbers must share one path label.
func TestMetricsCardinality(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	for _, id := range []string{"1", "25544", "44713", "99999"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/catalog/"+id, nil))
	}
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequestsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/catalog/{id}", "GET", "404")))
}

func TestObserveParseAndRefresh(t *testing.T) {
	m := New()
	m.ObserveParse("")
	m.ObserveParse("")
	m.ObserveParse("checksum")
	m.ObserveRefresh("embedded", 3, 1)
	m.ObserveRefreshError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.parsesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parsesTotal.WithLabelValues("checksum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshesTotal.WithLabelValues("embedded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshesTotal.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.catalogEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogRejected))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveParse("structure")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `tled_parses_total{result="structure"} 1`))
}
