package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(nil)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/movies/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/movies/abc", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()

	for _, want := range []string{
		`cinema_http_requests_total{method="GET",route="/movies/:id",status="204"} 2`,
		`cinema_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`cinema_http_request_duration_seconds_count{method="GET",route="/movies/:id"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestStreamGauge(t *testing.T) {
	m := New(nil)
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "cinema_open_streams 1") {
		t.Errorf("expected one open stream, got:\n%s", w.Body.String())
	}
}
