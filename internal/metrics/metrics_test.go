package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/appointments/cancel/:id", func(c *gin.Context) { c.Status(http.StatusFound) })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/appointments/cancel/:id", "302"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/cancel/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/appointments/cancel/:id", "302"))
	assert.Equal(t, 2.0, after-before)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "medtrack_http_requests_total"))
}

func TestDomainCounters(t *testing.T) {
	booked := testutil.ToFloat64(appointments.WithLabelValues(AppointmentBooked))
	RecordAppointment(AppointmentBooked)
	assert.Equal(t, booked+1, testutil.ToFloat64(appointments.WithLabelValues(AppointmentBooked)))

	failed := testutil.ToFloat64(notifications.WithLabelValues(NotificationFailed))
	RecordNotification(NotificationFailed)
	assert.Equal(t, failed+1, testutil.ToFloat64(notifications.WithLabelValues(NotificationFailed)))
}
