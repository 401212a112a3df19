package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/scraphq/admind/pkg/config"
	"github.com/scraphq/admind/pkg/dataservice"
	"github.com/scraphq/admind/pkg/logging"
)

// API serves the admin REST surface on top of the data-service projects.
type API struct {
	cfg     *config.Config
	server  config.Server
	factory *dataservice.Factory
	log     *slog.Logger
	version string

	corsConfig CORSConfig
	sanitizer  *bluemonday.Policy
	httpServer *http.Server
	listenAddr string
	startTime  time.Time
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithFactory replaces the data-service client factory built from the
// configuration snapshot.
func WithFactory(f *dataservice.Factory) Option {
	return func(a *API) {
		a.factory = f
	}
}

// WithVersion sets the version string reported by the status endpoint.
// Defaults to "dev".
func WithVersion(version string) Option {
	return func(a *API) {
		if version != "" {
			a.version = version
		}
	}
}

// WithServerSettings sets the HTTP server settings (port, timeouts, CORS
// origins).
func WithServerSettings(s config.Server) Option {
	return func(a *API) {
		a.server = s
	}
}

// WithListenAddr overrides the listen address derived from the server
// settings. Tests use "127.0.0.1:0".
func WithListenAddr(addr string) Option {
	return func(a *API) {
		a.listenAddr = addr
	}
}

// WithCORS sets the CORS configuration explicitly, replacing the one derived
// from the server settings.
func WithCORS(cors CORSConfig) Option {
	return func(a *API) {
		a.corsConfig = cors
	}
}

// New builds the admin API from the configuration snapshot.
func New(cfg *config.Config, opts ...Option) *API {
	a := &API{
		cfg:       cfg,
		server:    config.DefaultServer(),
		log:       logging.Nop(),
		version:   "dev",
		sanitizer: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.factory == nil {
		a.factory = dataservice.NewFactory(cfg)
	}
	if len(a.corsConfig.AllowedOrigins) == 0 {
		a.corsConfig = DefaultCORSConfig(a.server.CORSOrigins...)
	}
	if a.listenAddr == "" {
		a.listenAddr = fmt.Sprintf(":%d", a.server.Port)
	}
	a.log = a.log.With("component", "admin")

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	a.httpServer = &http.Server{
		Addr:         a.listenAddr,
		Handler:      a.withMiddleware(mux),
		ReadTimeout:  a.server.ReadTimeoutDuration(),
		WriteTimeout: a.server.WriteTimeoutDuration(),
	}

	return a
}

// withMiddleware wraps the mux. Order (outermost to innermost): recovery →
// request id → logging → security headers → CORS → handler.
func (a *API) withMiddleware(handler http.Handler) http.Handler {
	h := a.corsMiddleware(handler)
	h = securityHeadersMiddleware(h)
	h = a.loggingMiddleware(h)
	h = requestIDMiddleware(h)
	return a.recoveryMiddleware(h)
}

// Start begins serving in the background.
func (a *API) Start() error {
	a.startTime = time.Now()
	a.log.Info("starting admin API",
		"addr", a.listenAddr,
		"adminEnabled", a.cfg.AdminEnabled,
		"version", a.version)

	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("admin API error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (a *API) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.httpServer.Shutdown(ctx)
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (a *API) Handler() http.Handler {
	return a.httpServer.Handler
}

// Uptime returns seconds since Start.
func (a *API) Uptime() int {
	if a.startTime.IsZero() {
		return 0
	}
	return int(time.Since(a.startTime).Seconds())
}
