package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(searchesTotal.WithLabelValues("solved"))
	ObserveSearch("solved", 123, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(searchesTotal.WithLabelValues("solved")))
}

func TestObserveCache(t *testing.T) {
	before := testutil.ToFloat64(verdictCacheTotal.WithLabelValues("hit"))
	ObserveCache("hit")
	ObserveCache("hit")
	assert.Equal(t, before+2, testutil.ToFloat64(verdictCacheTotal.WithLabelValues("hit")))
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("", http.StatusNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", "404")))
}

func TestHandler(t *testing.T) {
	ObserveSearch("exhausted", 1, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "watersort_search_total"))
}
