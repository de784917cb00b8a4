// Package server exposes a running scene over HTTP for external inspectors:
// editor panels, debug overlays, and anything else that wants to watch or
// query scene state without linking the core in-process. The surface is
// read-only; edits still go through the owning Scene.
package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/meshforge/scenecore/events"
	"github.com/meshforge/scenecore/server/handler"
	servertypes "github.com/meshforge/scenecore/server/types"
)

const (
	defaultPort     = "4040"
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	app      *fiber.App
	provider servertypes.Provider
	eventHub *events.EventHub

	port string

	running       atomic.Bool
	shutdownMutex sync.Mutex
}

// New returns an HTTP server with handlers for every inspector endpoint.
// The event hub may be nil, in which case the events route is not served.
func New(provider servertypes.Provider, eventHub *events.EventHub, opts ...Option) (*Server, error) {
	if provider == nil {
		return nil, eris.New("server requires a non-nil scene provider")
	}

	app := fiber.New(fiber.Config{
		Network:               "tcp", // Enable server listening on both ipv4 & ipv6 (default: ipv4 only)
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})
	app.Use(cors.New())

	s := &Server{
		app:      app,
		provider: provider,
		eventHub: eventHub,
		port:     defaultPort,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()

	return s, nil
}

// Serve serves the application, blocking the calling thread.
// Call this in a new go routine to prevent blocking.
func (s *Server) Serve() error {
	port := s.port
	if port == "" {
		port = defaultPort
	}

	s.running.Store(true)
	defer s.running.Store(false)

	log.Info().Msgf("Starting inspector server at port %s", port)
	if err := s.app.Listen(":" + port); err != nil {
		return eris.Wrap(err, "error starting inspector server")
	}
	return nil
}

// Port returns the port the server listens on.
func (s *Server) Port() string {
	if s.port == "" {
		return defaultPort
	}
	return s.port
}

// Shutdown gracefully shuts down the server and closes all active websocket
// connections. It is safe to call more than once.
func (s *Server) Shutdown() error {
	s.shutdownMutex.Lock()
	defer s.shutdownMutex.Unlock()

	if !s.running.Load() {
		return nil
	}

	log.Info().Msg("Shutting down inspector server")

	// Close websocket connections first so the fiber shutdown does not sit
	// out its timeout waiting on live relay handlers.
	if s.eventHub != nil {
		s.eventHub.Shutdown()
	}

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return eris.Wrap(err, "error shutting down inspector server")
	}

	log.Info().Msg("Successfully shut down inspector server")
	return nil
}

func (s *Server) setupRoutes() {
	// Route: /events/
	if s.eventHub != nil {
		s.app.Use("/events", handler.WebSocketUpgrader)
		s.app.Get("/events", handler.WebSocketEvents(s.eventHub.NewWebSocketEventHandler()))
	}

	// Route: /scene
	s.app.Get("/scene", handler.GetScene(s.provider))

	// Route: /health
	s.app.Get("/health", handler.GetHealth(s.provider))

	// Route: /query
	s.app.Post("/query", handler.PostQuery(s.provider))

	// Route: /debug/state
	s.app.Get("/debug/state", handler.GetState(s.provider))
}
