package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()
	c.RecordLogin("user", "success")
	c.RecordLogin("user", "success")
	c.RecordLogin("admin", "denied")
	c.RecordAdminAction("approve")
	c.RecordScrapingSession("completed", 37)
	c.RecordScrapingSession("failed", 0)
	c.RecordPasswordReset("requested")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("user", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues("admin", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.adminActions.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions.WithLabelValues("failed")))
	assert.Equal(t, 37.0, testutil.ToFloat64(c.leadsExported))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passwordResets.WithLabelValues("requested")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordRegistration()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leadgate_registrations_total 1")
}
