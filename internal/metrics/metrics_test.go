package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessCounters(t *testing.T) {
	m := New()

	m.Purchase("PRODUCT", "USDT", "ok")
	m.Purchase("PRODUCT", "USDT", "ok")
	m.Purchase("SOFTWARE", "INR", "insufficient_balance")
	m.Commission("USDT", decimal.RequireFromString("1.5"))
	m.AffiliateTransition("APPROVED")
	m.ApplicantTransition("REVIEWED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.purchases.WithLabelValues("PRODUCT", "USDT", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.purchases.WithLabelValues("SOFTWARE", "INR", "insufficient_balance")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.commissions.WithLabelValues("USDT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.affiliates.WithLabelValues("APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.applicants.WithLabelValues("REVIEWED")))
}

func TestStartRequest(t *testing.T) {
	m := New()

	done := m.StartRequest()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done(http.MethodGet, "/api/v1/wallets", http.StatusOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/wallets", "200")))

	m.StartRequest()("GET", "", http.StatusNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestWSAndJobs(t *testing.T) {
	m := New()
	m.Connections(3)
	m.Dropped()
	m.JobRun("affiliate_auto_approve", 0, true)
	m.JobRun("affiliate_auto_approve", 40*time.Millisecond, true)
	m.JobRun("affiliate_auto_approve", time.Millisecond, false)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.wsConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsDropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("affiliate_auto_approve", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("affiliate_auto_approve", "false")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.jobDuration), "one duration series per job")
}

func TestHandler(t *testing.T) {
	m := New()
	m.Purchase("PRODUCT", "USDT", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digilinex_settlement_purchases_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
