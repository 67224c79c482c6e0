package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentCountsStatus(t *testing.T) {
	h := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "404"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nada", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "404")))
}

func TestDomainCounters(t *testing.T) {
	q := testutil.ToFloat64(quotes.WithLabelValues(ResultOK))
	QuoteDone(ResultOK)
	assert.Equal(t, q+1, testutil.ToFloat64(quotes.WithLabelValues(ResultOK)))

	c := testutil.ToFloat64(complaints.WithLabelValues(ResultError))
	ComplaintDone(ResultError)
	assert.Equal(t, c+1, testutil.ToFloat64(complaints.WithLabelValues(ResultError)))

	m := testutil.ToFloat64(catalogMutations.WithLabelValues("delete"))
	CatalogMutation("delete")
	assert.Equal(t, m+1, testutil.ToFloat64(catalogMutations.WithLabelValues("delete")))
}

func TestHandlerExposesCounters(t *testing.T) {
	QuoteDone(ResultInvalid)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `ferreriwork_quotes_total{result="invalid"}`))
}
