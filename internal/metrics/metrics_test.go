package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreExposed(t *testing.T) {
	m := New("meds")
	m.CartMutations.WithLabelValues("add_item").Inc()
	m.CartMutations.WithLabelValues("add_item").Inc()
	m.TotalDrift.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add_item")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `meds_cart_mutations_total{op="add_item"} 2`)
	assert.Contains(t, rec.Body.String(), "meds_cart_total_drift_total 1")
}

func TestInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New("meds")
		New("meds")
	})
}
