package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/messagestore"
	"github.com/fnproject/formserver/api/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Option is a func that allows configuring a Server
type Option func(context.Context, *Server) error

// WithLogLevel sets the global logging level
func WithLogLevel(ll string) Option {
	return func(ctx context.Context, s *Server) error {
		common.SetLogLevel(ll)
		return nil
	}
}

// WithLogFormat sets the global logging format
func WithLogFormat(format string) Option {
	return func(ctx context.Context, s *Server) error {
		common.SetLogFormat(format)
		return nil
	}
}

// WithLogDest sets the global logging destination
func WithLogDest(dst, prefix string) Option {
	return func(ctx context.Context, s *Server) error {
		common.SetLogDest(dst, prefix)
		return nil
	}
}

// WithWebPort sets the port the form is served on.
func WithWebPort(port int) Option {
	return func(ctx context.Context, s *Server) error {
		if port <= 0 {
			return fmt.Errorf("invalid web port %d", port)
		}
		s.webListenPort = port
		return nil
	}
}

// WithAdminPort sets the port version, health and metrics are served on.
func WithAdminPort(port int) Option {
	return func(ctx context.Context, s *Server) error {
		if port <= 0 {
			return fmt.Errorf("invalid admin port %d", port)
		}
		s.adminListenPort = port
		return nil
	}
}

// WithShutdownTimeout bounds the graceful shutdown of both listeners.
func WithShutdownTimeout(d time.Duration) Option {
	return func(ctx context.Context, s *Server) error {
		s.shutdownTimeout = d
		return nil
	}
}

// WithMessageStore sets the store submissions are written to.
func WithMessageStore(ms models.MessageStore) Option {
	return func(ctx context.Context, s *Server) error {
		if ms == nil {
			return errors.New("nil message store")
		}
		s.messageStore = ms
		return nil
	}
}

// WithMessageStoreURL creates the message store from a provider url, such as
// file:///var/lib/form/message.txt
func WithMessageStoreURL(storeURL string) Option {
	return func(ctx context.Context, s *Server) error {
		ms, err := messagestore.New(ctx, storeURL)
		if err != nil {
			return err
		}
		s.messageStore = ms
		return nil
	}
}

// RIDProvider is used to generate request IDs
type RIDProvider struct {
	HeaderName   string              // The name of the header where the reques id is stored in the incoming request
	RIDGenerator func(string) string // Function to generate the requestID
}

// WithRIDProvider will generate request ids for each http request using the
// given generator. The id is echoed back in the same header.
func WithRIDProvider(ridProvider *RIDProvider) Option {
	return func(ctx context.Context, s *Server) error {
		s.Router.Use(withRIDProvider(ridProvider))
		s.AdminRouter.Use(withRIDProvider(ridProvider))
		return nil
	}
}

func withRIDProvider(ridp *RIDProvider) func(c *gin.Context) {
	return func(c *gin.Context) {
		rid := ridp.RIDGenerator(c.Request.Header.Get(ridp.HeaderName))
		ctx := common.WithRequestID(c.Request.Context(), rid)
		// We set the rid in the common logger so it is always logged when the common logger is used
		l := common.Logger(ctx).WithFields(logrus.Fields{common.RequestIDContextKey: rid})
		ctx = common.WithLogger(ctx, l)
		c.Request = c.Request.WithContext(ctx)
		if rid != "" {
			c.Header(ridp.HeaderName, rid)
		}
		c.Next()
	}
}

// WithCORS allows cross origin requests from origins, a comma separated list
// or "*". An empty list leaves CORS off.
func WithCORS(origins, headers string) Option {
	return func(ctx context.Context, s *Server) error {
		optionalCorsWrap(s.Router, origins, headers)
		return nil
	}
}

// LimitRequestBody wraps every http request to limit its size to the specified max bytes.
func LimitRequestBody(max int64) Option {
	return func(ctx context.Context, s *Server) error {
		if max > 0 {
			s.Router.Use(limitRequestBody(max))
		}
		return nil
	}
}

func limitRequestBody(max int64) func(c *gin.Context) {
	return func(c *gin.Context) {
		cl := c.Request.ContentLength
		if cl > max {
			// try to deny this quickly, instead of just letting it get lopped off
			handleErrorResponse(c, errTooBig{cl, max})
			c.Abort()
			return
		}

		// if no Content-Length specified, limit how many bytes we read and error
		// if we hit the max. read http.MaxBytesReader for gritty details..
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

// models.APIError
type errTooBig struct {
	n, max int64
}

func (e errTooBig) Code() int { return http.StatusRequestEntityTooLarge }
func (e errTooBig) Error() string {
	if e.n < 0 {
		return fmt.Sprintf("Request body too large for this server, max %d", e.max)
	}
	return fmt.Sprintf("Content-Length too large for this server, %d > max %d", e.n, e.max)
}

// WithSubmitRateLimit allows perSecond form submissions per second, with
// the given burst, across all clients. perSecond <= 0 disables the limit.
func WithSubmitRateLimit(perSecond float64, burst int) Option {
	return func(ctx context.Context, s *Server) error {
		if perSecond <= 0 {
			s.submitLimiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		s.submitLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		logrus.WithFields(logrus.Fields{"rate": perSecond, "burst": burst}).Info("Limiting form submissions")
		return nil
	}
}
