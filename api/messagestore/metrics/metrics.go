// Package metrics decorates a MessageStore with tracing spans and
// opencensus measures.
package metrics

import (
	"context"
	"time"

	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/models"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
)

var (
	putCountMeasure   = common.MakeMeasure("messagestore/put_count", "Count of message store writes", stats.UnitDimensionless)
	putErrorMeasure   = common.MakeMeasure("messagestore/put_errors", "Count of failed message store writes", stats.UnitDimensionless)
	putLatencyMeasure = common.MakeMeasure("messagestore/put_latency", "Latency distribution of message store writes", stats.UnitMilliseconds)
)

// RegisterViews exports the store measures, latency bucketed by dist.
func RegisterViews(dist []float64) {
	err := view.Register(
		common.CreateView(putCountMeasure, view.Count(), nil),
		common.CreateView(putErrorMeasure, view.Count(), nil),
		common.CreateView(putLatencyMeasure, view.Distribution(dist...), nil),
	)
	if err != nil {
		logrus.WithError(err).Fatal("cannot register view")
	}
}

func NewMessageStore(ms models.MessageStore) models.MessageStore {
	return &metricms{ms}
}

type metricms struct {
	ms models.MessageStore
}

func (m *metricms) Put(ctx context.Context, value string) error {
	ctx, span := trace.StartSpan(ctx, "ms_put")
	defer span.End()
	span.AddAttributes(trace.Int64Attribute("form.value_bytes", int64(len(value))))

	start := time.Now()
	err := m.ms.Put(ctx, value)

	stats.Record(ctx, putCountMeasure.M(0))
	stats.Record(ctx, putLatencyMeasure.M(int64(time.Since(start)/time.Millisecond)))
	if err != nil {
		stats.Record(ctx, putErrorMeasure.M(0))
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
	}
	return err
}

func (m *metricms) Close() error {
	return m.ms.Close()
}
