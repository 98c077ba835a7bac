package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/joestump/cleo/internal/metrics"
)

func TestInstrument_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Instrument)
	r.Get("/files/serve/{filename}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/files/serve/{filename}", "404"))
	for _, name := range []string{"a.png", "b.png"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/files/serve/"+name, nil))
	}
	after := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/files/serve/{filename}", "404"))

	if after-before != 2 {
		t.Errorf("requests counted = %v, want 2", after-before)
	}
}
