// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferreriwork_http_requests_total",
		Help: "Peticiones HTTP por método y código",
	}, []string{"method", "code"})

	httpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ferreriwork_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP",
		Buckets: prometheus.DefBuckets,
	})

	quotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferreriwork_quotes_total",
		Help: "Cotizaciones PDF por resultado",
	}, []string{"result"})

	complaints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferreriwork_complaints_total",
		Help: "Reclamos por resultado",
	}, []string{"result"})

	catalogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferreriwork_catalog_mutations_total",
		Help: "Altas, ediciones y bajas del catálogo",
	}, []string{"op"})
)

// Resultados usados como etiqueta.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

func QuoteDone(result string)     { quotes.WithLabelValues(result).Inc() }
func ComplaintDone(result string) { complaints.WithLabelValues(result).Inc() }
func CatalogMutation(op string)   { catalogMutations.WithLabelValues(op).Inc() }

func Handler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument cuenta cada petición servida por next.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.code)).Inc()
		httpDuration.Observe(time.Since(start).Seconds())
	})
}
