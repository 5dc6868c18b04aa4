package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/interviews/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/interviews/:id", "418"))
	for _, id := range []string{"int_a", "int_b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/interviews/"+id, nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/interviews/:id", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(transitions.WithLabelValues("book", "conflict"))
	Transition("book", "conflict")
	assert.Equal(t, 1.0, testutil.ToFloat64(transitions.WithLabelValues("book", "conflict"))-before)

	c := testutil.ToFloat64(bookingConflicts)
	BookingConflict()
	assert.Equal(t, 1.0, testutil.ToFloat64(bookingConflicts)-c)
}
