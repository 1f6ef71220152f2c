package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Grid-Tactics/internal/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// driverMetrics are the driver's counters. They use the global OTel meter and
// are no-ops unless a provider is installed.
type driverMetrics struct {
	ticks       metric.Int64Counter
	resolutions metric.Int64Counter
	defeats     metric.Int64Counter
}

func newDriverMetrics() (*driverMetrics, error) {
	m := meter()
	dm := &driverMetrics{}
	var err error

	dm.ticks, err = m.Int64Counter(
		"tactics.ticks",
		metric.WithDescription("Simulation ticks run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	dm.resolutions, err = m.Int64Counter(
		"tactics.resolutions",
		metric.WithDescription("Action requests resolved, by kind and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resolutions counter: %w", err)
	}

	dm.defeats, err = m.Int64Counter(
		"tactics.defeats",
		metric.WithDescription("Units defeated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating defeats counter: %w", err)
	}
	return dm, nil
}

func (dm *driverMetrics) record(ctx context.Context, rep TickReport) {
	dm.ticks.Add(ctx, 1)
	for _, r := range rep.Resolutions {
		dm.resolutions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", r.Request.Kind.String()),
			attribute.String("result", r.Key()),
		))
		if r.Defeated {
			dm.defeats.Add(ctx, 1)
		}
	}
}
