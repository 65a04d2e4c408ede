package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fnproject/formserver/api"
	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/messagestore"
	"github.com/fnproject/formserver/api/messagestore/file"
	"github.com/fnproject/formserver/api/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// EnvLogLevel sets the stderr logging level
	EnvLogLevel = "FORM_LOG_LEVEL"

	// EnvLogFormat sets the stderr logging format, text or json only
	EnvLogFormat = "FORM_LOG_FORMAT"

	// EnvLogDest is a url of a log destination:
	// possible schemes: { udp, tcp, file }
	// file url must contain only a path, syslog must contain only a host[:port]
	// expect: [scheme://][host][:port][/path]
	// default scheme to udp:// if none given
	EnvLogDest = "FORM_LOG_DEST"

	// EnvLogPrefix is a prefix to affix to each log line.
	EnvLogPrefix = "FORM_LOG_PREFIX"

	// EnvMessageStoreURL is the url of the store submitted messages are
	// written to, e.g. file:///var/lib/form/message.txt
	EnvMessageStoreURL = "FORM_MESSAGE_STORE_URL"

	// EnvPort is the port the form is served on.
	EnvPort = "FORM_PORT"

	// EnvAdminPort is the port version, health and metrics are served on.
	// Setting it equal to EnvPort serves them from the form listener.
	EnvAdminPort = "FORM_ADMIN_PORT"

	// EnvMaxRequestSize sets the limit in bytes for any API request's length.
	EnvMaxRequestSize = "FORM_MAX_REQUEST_SIZE"

	// EnvSubmitRate is the number of submissions per second accepted across
	// all clients. 0 disables the limit.
	EnvSubmitRate = "FORM_SUBMIT_RATE"

	// EnvSubmitBurst is the burst allowed on top of EnvSubmitRate.
	EnvSubmitBurst = "FORM_SUBMIT_BURST"

	// EnvAPICORSOrigins is the list of CORS origins to allow.
	EnvAPICORSOrigins = "FORM_API_CORS_ORIGINS"

	// EnvAPICORSHeaders is the list of CORS headers allowed.
	EnvAPICORSHeaders = "FORM_API_CORS_HEADERS"

	// EnvRIDHeader is the header name of the incoming request which holds the request ID
	EnvRIDHeader = "FORM_RID_HEADER"

	// EnvZipkinURL is the url of a zipkin collector to send traces to.
	EnvZipkinURL = "FORM_ZIPKIN_URL"

	// EnvShutdownTimeout bounds how long in-flight requests get to finish
	// when the server is stopped.
	EnvShutdownTimeout = "FORM_SHUTDOWN_TIMEOUT"

	// DefaultLogLevel is info
	DefaultLogLevel = "info"

	// DefaultLogFormat is text
	DefaultLogFormat = "text"

	// DefaultLogDest is stderr
	DefaultLogDest = "stderr"

	// DefaultPort is 3000
	DefaultPort = 3000

	// DefaultAdminPort is 3001
	DefaultAdminPort = 3001

	// DefaultMaxRequestSize is 1MiB
	DefaultMaxRequestSize = 1 << 20

	// DefaultSubmitBurst is 1
	DefaultSubmitBurst = 1

	// DefaultRIDHeader is X-Request-Id
	DefaultRIDHeader = "X-Request-Id"

	// DefaultShutdownTimeout is 5s
	DefaultShutdownTimeout = 5 * time.Second
)

// DefaultMessageStoreURL is message.txt in the working directory.
var DefaultMessageStoreURL = file.URLFromPath(filepath.Join(currDir, "message.txt"))

// Server is the form server: a web listener serving the form and taking
// submissions, and an admin listener for version, health and metrics.
type Server struct {
	// Router is the gin engine serving the form.
	Router *gin.Engine
	// AdminRouter serves version, health and metrics. It is Router itself
	// when both listen on the same port.
	AdminRouter *gin.Engine

	webListenPort   int
	adminListenPort int
	shutdownTimeout time.Duration

	messageStore  models.MessageStore
	submitLimiter *rate.Limiter
	promHandler   http.Handler

	onShutdown []func()
}

// NewFromEnv creates a new form server by looking up environment
// configuration and running any extra opts after.
func NewFromEnv(ctx context.Context, opts ...Option) *Server {
	var defaultOpts []Option
	defaultOpts = append(defaultOpts, WithLogFormat(common.GetEnv(EnvLogFormat, DefaultLogFormat)))
	defaultOpts = append(defaultOpts, WithLogLevel(common.GetEnv(EnvLogLevel, DefaultLogLevel)))
	defaultOpts = append(defaultOpts, WithLogDest(common.GetEnv(EnvLogDest, DefaultLogDest), common.GetEnv(EnvLogPrefix, "")))
	defaultOpts = append(defaultOpts, WithWebPort(common.GetEnvInt(EnvPort, DefaultPort)))
	defaultOpts = append(defaultOpts, WithAdminPort(common.GetEnvInt(EnvAdminPort, DefaultAdminPort)))
	defaultOpts = append(defaultOpts, WithShutdownTimeout(common.GetEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout)))
	defaultOpts = append(defaultOpts, WithMessageStoreURL(common.GetEnv(EnvMessageStoreURL, DefaultMessageStoreURL)))
	defaultOpts = append(defaultOpts, WithRIDProvider(&RIDProvider{
		HeaderName:   common.GetEnv(EnvRIDHeader, DefaultRIDHeader),
		RIDGenerator: common.GenerateRequestID,
	}))
	defaultOpts = append(defaultOpts, WithCORS(common.GetEnv(EnvAPICORSOrigins, ""), common.GetEnv(EnvAPICORSHeaders, "")))
	defaultOpts = append(defaultOpts, LimitRequestBody(common.GetEnvInt64(EnvMaxRequestSize, DefaultMaxRequestSize)))
	defaultOpts = append(defaultOpts, WithSubmitRateLimit(common.GetEnvFloat(EnvSubmitRate, 0), common.GetEnvInt(EnvSubmitBurst, DefaultSubmitBurst)))
	defaultOpts = append(defaultOpts, WithPrometheus())
	defaultOpts = append(defaultOpts, WithZipkin(common.GetEnv(EnvZipkinURL, "")))

	return New(ctx, append(defaultOpts, opts...)...)
}

// New creates a new form server with the given options. Options run in
// order, so middleware they install wraps the handlers bound afterwards.
// Without a message store option the default file store is used.
func New(ctx context.Context, opts ...Option) *Server {
	s := &Server{
		Router:          gin.New(),
		AdminRouter:     gin.New(),
		webListenPort:   DefaultPort,
		adminListenPort: DefaultAdminPort,
		shutdownTimeout: DefaultShutdownTimeout,
	}

	registerViews()
	// routes match exactly; /message/ and // are not redirected
	s.Router.RedirectTrailingSlash = false
	s.AdminRouter.RedirectTrailingSlash = false
	s.Router.Use(loggerWrap, panicWrap, traceWrap)
	s.AdminRouter.Use(loggerWrap, panicWrap)

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(ctx, s); err != nil {
			logrus.WithError(err).Fatal("Error during server opt initialization.")
		}
	}

	if s.adminListenPort == s.webListenPort {
		s.AdminRouter = s.Router
	}

	if s.messageStore == nil {
		ms, err := messagestore.New(ctx, DefaultMessageStoreURL)
		if err != nil {
			logrus.WithError(err).Fatal("Error creating default message store.")
		}
		s.messageStore = ms
	}
	s.messageStore = messagestore.Wrap(s.messageStore)

	apiMetricsWrap(s)
	s.bindHandlers(ctx)
	return s
}

// MessageStore returns the store submissions are written to.
func (s *Server) MessageStore() models.MessageStore {
	return s.messageStore
}

// AddShutdownFunc registers fn to run once both listeners have stopped.
func (s *Server) AddShutdownFunc(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

func (s *Server) bindHandlers(ctx context.Context) {
	engine := s.Router
	admin := s.AdminRouter

	engine.Any(api.IndexPath, handleIndex)
	engine.POST(api.MessagePath, s.limitSubmissions, s.handleMessageSubmit)

	admin.GET(api.VersionPath, handleVersion)
	admin.GET(api.HealthPath, handleHealth)
	if s.promHandler != nil {
		admin.GET(api.MetricsPath, gin.WrapH(s.promHandler))
	}

	engine.NoRoute(handleNotFound)
	if admin != engine {
		admin.NoRoute(handleNotFound)
	}
}

func handleNotFound(c *gin.Context) {
	handleErrorResponse(c, models.ErrRouteNotFound)
}

// Start runs the server until ctx is cancelled or SIGINT/SIGTERM is
// received, then drains in-flight requests and closes the message store.
func (s *Server) Start(ctx context.Context) {
	ctx, halt := contextWithSignal(ctx, os.Interrupt, sigTerm)
	defer halt()
	if err := s.startGears(ctx); err != nil {
		logrus.WithError(err).Error("server stopped with error")
	}
	for _, fn := range s.onShutdown {
		fn()
	}
	if err := s.messageStore.Close(); err != nil {
		logrus.WithError(err).Error("error closing message store")
	}
}

func (s *Server) startGears(ctx context.Context) error {
	servers := []*http.Server{s.httpServer(s.webListenPort, s.Router)}
	if s.AdminRouter != s.Router {
		servers = append(servers, s.httpServer(s.adminListenPort, s.AdminRouter))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("cannot listen on %s: %w", srv.Addr, err)
		}
		logrus.WithFields(logrus.Fields{"addr": ln.Addr().String()}).Info("Serving")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	logrus.WithFields(logrus.Fields{"timeout": s.shutdownTimeout}).Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(sctx); serr != nil {
			logrus.WithError(serr).WithFields(logrus.Fields{"addr": srv.Addr}).Error("error shutting down listener")
		}
	}
	wg.Wait()
	return err
}

func (s *Server) httpServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           ":" + strconv.Itoa(port),
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}
