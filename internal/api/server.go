package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/audit"
	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/discovery"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-cec/internal/sequence"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// batchAction is the surface action that backs POST /{device}/press/{buttons}.
const batchAction = "press_batch"

// HealthChecker is implemented by optional components reported on /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SightingLister lists the devices ever seen on the bus.
type SightingLister interface {
	List(ctx context.Context) ([]audit.Sighting, error)
}

// PeerBrowser finds other cecctl instances on the local network.
type PeerBrowser interface {
	Browse(ctx context.Context) ([]discovery.Instance, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	Logger      *logging.Logger
	Guard       *cec.Guard
	Interpreter *sequence.Interpreter
	Audit       audit.Repository // optional: /audit returns 503 without it
	Sightings   SightingLister   // optional: /audit/sightings returns 503 without it
	Peers       PeerBrowser      // optional: /peers returns 503 without it
	Components  map[string]HealthChecker
	Version     string
}

// Server is the HTTP API server for cecctl.
//
// It manages the HTTP listener, routes and middleware.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	guard      *cec.Guard
	interp     *sequence.Interpreter
	auditRepo  audit.Repository
	sightings  SightingLister
	peers      PeerBrowser
	components map[string]HealthChecker
	version    string
	started    time.Time
	server     *http.Server
	listener   net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, guard, interpreter)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Guard == nil {
		return nil, fmt.Errorf("controller guard is required")
	}
	if deps.Interpreter == nil {
		return nil, fmt.Errorf("sequence interpreter is required")
	}
	if _, ok := deps.Interpreter.Surface().Lookup(batchAction); !ok {
		return nil, fmt.Errorf("sequence surface has no %s action", batchAction)
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		guard:      deps.Guard,
		interp:     deps.Interpreter,
		auditRepo:  deps.Audit,
		sightings:  deps.Sightings,
		peers:      deps.Peers,
		components: deps.Components,
		version:    deps.Version,
		started:    time.Now(),
	}, nil
}

// Start binds the listener and serves HTTP in a background goroutine.
// The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for the bind; it does not bound the listener lifetime
//
// Returns:
//   - error: If the address cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("binding API listener on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	s.logger.Info("API server starting", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close gracefully shuts down the API server.
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
