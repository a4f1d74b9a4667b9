// ABOUTME: MCP server exposing the daily record store and query engine.
// ABOUTME: Wraps the MCP server with a storage Repository and a query Engine.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/healthcoach/internal/classifier"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer  *mcp.Server
	repo       storage.Repository
	engine     *query.Engine
	classifier *classifier.Classifier
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithEngine replaces the default query engine.
func WithEngine(e *query.Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithClassifier replaces the default classifier used when ask gets no intent.
func WithClassifier(c *classifier.Classifier) Option {
	return func(s *Server) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, opts ...Option) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "healthcoach",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer:  mcpServer,
		repo:       repo,
		classifier: classifier.New(),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = query.NewEngine(repo, query.WithLogger(s.logger))
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
