package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleo_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cleo_http_request_duration_seconds",
		Help:    "Time from request receipt to response.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route"})

	UsersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleo_users_created_total",
		Help: "Accounts created through /user/create.",
	})

	PostsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleo_posts_created_total",
		Help: "Posts and pages created.",
	}, []string{"content_type"})

	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleo_emails_sent_total",
		Help: "Verification emails by delivery result.",
	}, []string{"result"})

	FilesUploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleo_files_uploaded_bytes_total",
		Help: "Bytes accepted by /files/create.",
	})
)

// Instrument records RequestsTotal and RequestDuration. The route label is
// the chi pattern so path parameters don't explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
