package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"github.com/sirupsen/logrus"
	oczipkin "go.opencensus.io/exporter/zipkin"
	"go.opencensus.io/trace"
)

// WithZipkin exports traces to the zipkin collector at zipkinURL, e.g.
// http://zipkin:9411/api/v2/spans. An empty url disables export.
func WithZipkin(zipkinURL string) Option {
	return func(ctx context.Context, s *Server) error {
		if zipkinURL == "" {
			return nil
		}

		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		hostPort := net.JoinHostPort(hostname, strconv.Itoa(s.webListenPort))
		endpoint, err := zipkin.NewEndpoint("formserver", hostPort)
		if err != nil {
			// unresolvable hostnames get an endpoint without an address
			logrus.WithError(err).WithFields(logrus.Fields{"host": hostPort}).Warn("cannot resolve zipkin endpoint address")
			endpoint, err = zipkin.NewEndpoint("formserver", "")
			if err != nil {
				return fmt.Errorf("cannot create zipkin endpoint: %w", err)
			}
		}

		reporter := zipkinhttp.NewReporter(zipkinURL)
		exporter := oczipkin.NewExporter(reporter, endpoint)
		trace.RegisterExporter(exporter)
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})

		s.AddShutdownFunc(func() {
			trace.UnregisterExporter(exporter)
			if err := reporter.Close(); err != nil {
				logrus.WithError(err).Error("error closing zipkin reporter")
			}
		})
		logrus.WithFields(logrus.Fields{"url": zipkinURL}).Info("exporting spans to zipkin")
		return nil
	}
}
