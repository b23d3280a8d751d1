package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/prometheus"
)

func TestMetrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "mw"}, nil)
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(collector)
	r := engine(Metrics(m))

	get(r, "/ok")
	get(r, "/ok")
	get(r, "/missing")

	families, err := collector.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "mw_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var parts []string
			for _, lp := range metric.GetLabel() {
				parts = append(parts, lp.GetValue())
			}
			counts[strings.Join(parts, " ")] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), counts["GET /ok 200"])
	assert.Equal(t, float64(1), counts["GET unmatched 404"])

	for _, mf := range families {
		if mf.GetName() == "mw_http_active_requests" {
			assert.Equal(t, float64(0), mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}
