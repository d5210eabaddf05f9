// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/metrics"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/resources/{resource}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/resources/products", nil))

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	assert.Contains(t, body, `route="/resources/{resource}"`)
	assert.Contains(t, body, `status="418"`)
}

func TestObserveOperation(t *testing.T) {
	m := metrics.New()
	m.ObserveOperation("products", "store", metrics.OutcomeInvalid)
	m.ObserveOperation("products", "store", metrics.OutcomeInvalid)

	count, err := testutil.GatherAndCount(m.Registry(), "panelkit_resource_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("products", "index", metrics.OutcomeSuccess)
		m.ObserveCache("products", true)
		m.ObserveDegraded("products", "versioning")
	})
}
