package o11y

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"upside-down-research.com/oss/goap/internal/goap"
)

const planMeasurement = "goap_plan"

// InfluxRecorder writes one point per plan to an InfluxDB bucket.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	client := influxdb2.NewClient(url, token)
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}
}

// RecordPlan writes plan as a goap_plan point tagged with its goal and runID.
func (r *InfluxRecorder) RecordPlan(ctx context.Context, runID string, plan *goap.Plan) error {
	if plan == nil {
		return nil
	}
	if err := r.writeAPI.WritePoint(ctx, planPoint(runID, plan, time.Now())); err != nil {
		return fmt.Errorf("failed to write plan point: %w", err)
	}
	return nil
}

func (r *InfluxRecorder) Close() {
	r.client.Close()
}

func planPoint(runID string, plan *goap.Plan, ts time.Time) *write.Point {
	tags := map[string]string{
		"goal":   plan.Goal.Name(),
		"run_id": runID,
	}
	fields := map[string]interface{}{
		"cost":       plan.Cost,
		"actions":    int64(len(plan.Actions)),
		"expansions": int64(plan.Expansions),
	}
	return write.NewPoint(planMeasurement, tags, fields, ts)
}

// Ping reports whether the InfluxDB server answers.
func (r *InfluxRecorder) Ping(ctx context.Context) error {
	ok, err := r.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb ping failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("influxdb is not ready")
	}
	return nil
}
