package promsink

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordr-dev/ordr"
)

type result struct{ V int }

func TestSink_RecordsNodeAndJobOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := New(reg)

	node := ordr.NewNode0("result", func(ctx context.Context) (result, error) {
		return result{V: 1}, nil
	})
	g, err := ordr.NewGraphBuilder().AddNode(node).Build()
	require.NoError(t, err)

	_, status, err := g.Execute(context.Background(), ordr.Target[result](ordr.NewJob()), ordr.WithEventSink(sink))
	require.NoError(t, err)
	assert.Equal(t, ordr.StatusDone, status)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	var sawNodeTotal, sawJobsTotal bool
	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "ordr_node_total":
			sawNodeTotal = true
			assert.Equal(t, float64(1), sumCounters(mf))
		case "ordr_jobs_total":
			sawJobsTotal = true
			assert.Equal(t, float64(1), sumCounters(mf))
		}
	}
	assert.True(t, sawNodeTotal)
	assert.True(t, sawJobsTotal)
}

func sumCounters(mf *dto.MetricFamily) float64 {
	var total float64
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}
