package server

import (
	"context"
	"sync"

	"github.com/fnproject/formserver/api/common"
	msmetrics "github.com/fnproject/formserver/api/messagestore/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	ocprom "go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"
)

// latency buckets in milliseconds, 0 up to ~16s
var defaultLatencyDist = common.GenerateLogScaleHistogramBuckets(16384, 16)

var registerViewsOnce sync.Once

func registerViews() {
	registerViewsOnce.Do(func() {
		RegisterAPIViews(defaultLatencyDist)
		msmetrics.RegisterViews(defaultLatencyDist)
	})
}

// WithPrometheus registers the opencensus views and serves them, along with
// Go runtime and process collectors, on the admin /metrics route.
func WithPrometheus() Option {
	return func(ctx context.Context, s *Server) error {
		registerViews()

		reg := prometheus.NewRegistry()
		reg.MustRegister(prometheus.NewGoCollector())
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

		exporter, err := ocprom.NewExporter(ocprom.Options{
			Namespace: "form",
			Registry:  reg,
			OnError: func(err error) {
				logrus.WithError(err).Error("prometheus export error")
			},
		})
		if err != nil {
			return err
		}
		view.RegisterExporter(exporter)

		s.promHandler = exporter
		s.AddShutdownFunc(func() { view.UnregisterExporter(exporter) })
		return nil
	}
}
