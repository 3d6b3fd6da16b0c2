package server

import (
	"context"
	"log/slog"
	"net/http"

	bodymcp "github.com/claude/bodymap/internal/mcp"
	"github.com/claude/bodymap/internal/models"
	"github.com/claude/bodymap/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Store persists ingested sessions and profile edits. *storage.DB satisfies it.
type Store interface {
	InsertSession(ctx context.Context, s models.WorkoutSession) (uuid.UUID, error)
	UpsertProfile(ctx context.Context, p models.Profile) error
}

// Catalog is the muscle configuration used to resolve URL parameters.
// *muscles.Table satisfies it.
type Catalog interface {
	Normalize(label string) (string, bool)
	GroupForBodyPart(part string) (string, bool)
	BodyParts() []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	trackers *tracker.Manager
	catalog  Catalog
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	mcp      http.Handler
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithIdentity replaces the default DevIdentity middleware.
func WithIdentity(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.identity = mw }
}

// WithMCP serves the MCP server over streamable HTTP at /mcp, behind the
// same logging and identity middleware as the REST API. Tool calls run as
// the user resolved for the request.
func WithMCP(m *mcpserver.MCPServer) Option {
	return func(s *Server) {
		s.mcp = mcpserver.NewStreamableHTTPServer(m,
			mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
				return bodymcp.WithUserID(ctx, userIDFromContext(r))
			}),
		)
	}
}

// New creates a new Server with all routes configured.
func New(store Store, trackers *tracker.Manager, catalog Catalog, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:    store,
		trackers: trackers,
		catalog:  catalog,
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/profile", s.handleGetProfile)
	s.router.Put("/api/v1/profile", s.handlePutProfile)

	s.router.Route("/api/v1/recovery", func(r chi.Router) {
		r.Get("/", s.handleRecovery)
		r.Get("/muscles/{group}", s.handleMuscle)
		r.Get("/body-parts/{part}", s.handleBodyPart)
		r.Get("/body-map", s.handleBodyMap)
		r.Get("/gradient", s.handleGradient)
		r.Post("/refresh", s.handleRefresh)
	})

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/sessions", s.handleIngestSession)
	})

	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp)
	}
}
