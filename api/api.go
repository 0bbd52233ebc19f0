package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/tagstash/pkg/stash"
)

// Server is the API server for capturing and querying records
type Server struct {
	config Config
	svc    *stash.Service
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The service is injected to allow sharing with other components
// (e.g., the MCP server).
func NewServer(config Config, svc *stash.Service, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/records", s.handleCreateRecord)
	v1.Post("/records/batch", s.handleImportRecords)
	v1.Get("/records", s.handleSearchRecords)
	v1.Get("/records/by-tags", s.handleFindByTags)
	v1.Get("/records/:id", s.handleGetRecord)
	v1.Put("/records/:id", s.handleUpdateRecord)
	v1.Delete("/records/:id", s.handleDeleteRecord)
	v1.Get("/tags", s.handleTagStatistics)

	if config.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCP.Handler()))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
