// This is middleware we're using for the entire server.

package server

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/fnproject/formserver/api"
	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"
)

var (
	pathKey   = common.MakeKey("path")
	methodKey = common.MakeKey("method")
	statusKey = common.MakeKey("status")

	apiRequestCountMeasure  = common.MakeMeasure("api/request_count", "Count of API requests started", stats.UnitDimensionless)
	apiResponseCountMeasure = common.MakeMeasure("api/response_count", "API response count", stats.UnitDimensionless)
	apiLatencyMeasure       = common.MakeMeasure("api/latency", "Latency distribution of API requests", stats.UnitMilliseconds)
)

// unmatchedPath tags requests that fell through to the 404 handler. Raw
// client paths are never used as tag values.
const unmatchedPath = "unmatched"

func optionalCorsWrap(r *gin.Engine, corsStr, corsHeaders string) {
	// By default no CORS are allowed unless one
	// or more Origins are defined by the FORM_API_CORS_ORIGINS
	// environment variable.
	if len(corsStr) == 0 {
		return
	}
	origins := strings.Split(strings.Replace(corsStr, " ", "", -1), ",")

	corsConfig := cors.DefaultConfig()
	if origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}

	if len(corsHeaders) > 0 {
		headers := strings.Split(strings.Replace(corsHeaders, " ", "", -1), ",")
		corsConfig.AllowHeaders = headers
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "HEAD"}

	logrus.Infof("CORS enabled for domains: %s", origins)

	r.Use(cors.New(corsConfig))
}

func traceWrap(c *gin.Context) {
	ctx, span := trace.StartSpan(c.Request.Context(), "serve_http")
	defer span.End()

	span.AddAttributes(
		trace.StringAttribute("form.path", c.Request.URL.Path),
		trace.StringAttribute("form.method", c.Request.Method),
	)

	c.Request = c.Request.WithContext(ctx)
	c.Next()

	span.AddAttributes(trace.Int64Attribute("form.status", int64(c.Writer.Status())))
}

// RegisterAPIViews registers the request, response and latency views, with
// latency bucketed by dist.
func RegisterAPIViews(dist []float64) {
	reqTags := []tag.Key{pathKey, methodKey}
	respTags := []tag.Key{pathKey, methodKey, statusKey}

	err := view.Register(
		common.CreateViewWithTags(apiRequestCountMeasure, view.Count(), reqTags),
		common.CreateViewWithTags(apiResponseCountMeasure, view.Count(), respTags),
		common.CreateViewWithTags(apiLatencyMeasure, view.Distribution(dist...), respTags),
	)
	if err != nil {
		logrus.WithError(err).Fatal("cannot register view")
	}
}

func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedPath
}

func apiMetricsWrap(s *Server) {
	measure := func(c *gin.Context) {
		start := time.Now()
		ctx, err := tag.New(c.Request.Context(),
			tag.Upsert(pathKey, routePath(c)),
			tag.Upsert(methodKey, c.Request.Method),
		)
		if err != nil {
			common.Logger(c.Request.Context()).WithError(err).Warn("cannot tag request metrics")
			ctx = c.Request.Context()
		}
		stats.Record(ctx, apiRequestCountMeasure.M(0))
		c.Next()

		ctx, err = tag.New(c.Request.Context(), // important, request context could be mutated by now
			tag.Upsert(pathKey, routePath(c)),
			tag.Upsert(methodKey, c.Request.Method),
			tag.Upsert(statusKey, strconv.Itoa(c.Writer.Status())),
		)
		if err != nil {
			common.Logger(c.Request.Context()).WithError(err).Warn("cannot tag response metrics")
			ctx = c.Request.Context()
		}
		stats.Record(ctx, apiResponseCountMeasure.M(0))
		stats.Record(ctx, apiLatencyMeasure.M(int64(time.Since(start)/time.Millisecond)))
	}

	s.Router.Use(measure)
	if s.AdminRouter != s.Router {
		s.AdminRouter.Use(measure)
	}
}

func panicWrap(c *gin.Context) {
	defer func(c *gin.Context) {
		if rec := recover(); rec != nil {
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("form: %v", rec)
			}
			handleErrorResponse(c, err)
			c.Abort()
		}
	}(c)
	c.Next()
}

func extractFields(c *gin.Context) logrus.Fields {
	return logrus.Fields{
		api.Action: path.Base(c.HandlerName()),
		api.Path:   c.Request.URL.Path,
		api.Method: c.Request.Method,
	}
}

func loggerWrap(c *gin.Context) {
	start := time.Now()
	ctx, _ := common.LoggerWithFields(c.Request.Context(), extractFields(c))
	c.Request = c.Request.WithContext(ctx)
	c.Next()

	// the request context now carries the request id, if any
	common.Logger(c.Request.Context()).WithFields(logrus.Fields{
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}).Debug("served request")
}

// limitSubmissions rejects a submission when the submit limiter, if any,
// has no token available.
func (s *Server) limitSubmissions(c *gin.Context) {
	if s.submitLimiter != nil && !s.submitLimiter.Allow() {
		handleErrorResponse(c, models.ErrTooManySubmissions)
		c.Abort()
		return
	}
	c.Next()
}
