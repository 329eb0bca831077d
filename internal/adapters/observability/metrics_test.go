package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotelmap/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "hotelmap_http_requests_total") {
		t.Fatalf("expected hotelmap_http_requests_total in output")
	}
}

func TestMetrics_GeocodeAndQueryCounters(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveGeocode("ok")
	observability.ObserveGeocode("empty")
	observability.ObserveQueryError("city_en:eq", "column_missing")

	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	out := rr.Body.String()
	for _, want := range []string{
		`hotelmap_geocode_outcomes_total{outcome="ok"}`,
		`hotelmap_geocode_outcomes_total{outcome="empty"}`,
		`hotelmap_hotel_query_errors_total{kind="column_missing",stage="city_en:eq"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in metrics output", want)
		}
	}
}

func TestLabelErr(t *testing.T) {
	if got := observability.LabelErr(nil); got != "none" {
		t.Fatalf("LabelErr(nil) = %q", got)
	}
	if got := observability.LabelErr(io.EOF); got != "*errors.errorString" {
		t.Fatalf("LabelErr(io.EOF) = %q", got)
	}
}
