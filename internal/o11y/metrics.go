// Package o11y exports planner activity to Prometheus and InfluxDB.
package o11y

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"upside-down-research.com/oss/goap/internal/goap"
)

// PlannerMetrics records every goal evaluation the planner reports.
// It satisfies goap.Observer.
type PlannerMetrics struct {
	evaluations *prometheus.CounterVec
	expansions  prometheus.Histogram
	planCost    prometheus.Histogram
	lastCost    *prometheus.GaugeVec
}

// NewPlannerMetrics creates the planner collectors and registers them on reg.
// A nil reg leaves them unregistered, which is enough for Push.
func NewPlannerMetrics(reg prometheus.Registerer) (*PlannerMetrics, error) {
	m := &PlannerMetrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goap_goal_evaluations_total",
				Help: "Goals considered by the planner, by outcome.",
			},
			[]string{"goal", "outcome"}),
		expansions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goap_search_expansions",
			Help:    "Nodes popped from the open set per goal search.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		planCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goap_plan_cost",
			Help:    "Total cost of plans found.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		lastCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goap_last_plan_cost",
				Help: "Cost of the most recent plan found for each goal.",
			},
			[]string{"goal"}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register planner metrics: %w", err)
			}
		}
	}
	return m, nil
}

func (m *PlannerMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.evaluations, m.expansions, m.planCost, m.lastCost}
}

// GoalEvaluated implements goap.Observer.
func (m *PlannerMetrics) GoalEvaluated(goal string, outcome goap.Outcome, expansions int, cost int64) {
	m.evaluations.WithLabelValues(goal, outcome.String()).Inc()
	if outcome == goap.OutcomeIneligible {
		return
	}
	m.expansions.Observe(float64(expansions))
	if outcome == goap.OutcomeFound {
		m.planCost.Observe(float64(cost))
		m.lastCost.WithLabelValues(goal).Set(float64(cost))
	}
}

// Push sends the current values to a Prometheus pushgateway.
func (m *PlannerMetrics) Push(ctx context.Context, url, job string) error {
	pusher := push.New(url, job)
	for _, c := range m.collectors() {
		pusher.Collector(c)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("error pushing data to pushgateway: %w", err)
	}
	return nil
}
