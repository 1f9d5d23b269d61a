// Package httpapi exposes the issuance and verification workflows over
// HTTP. It is a presentation layer: every trust decision is made by the
// certledger client it wraps.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/certledger"
	"github.com/meigma/certledger/render"
)

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 10 * time.Second

// Renderer produces a certificate image carrying a QR code that links to
// the certificate's public verification URL.
type Renderer interface {
	RenderWithQR(cert render.Certificate, url string) ([]byte, error)
}

// Server serves the certificate HTTP API.
type Server struct {
	client    *certledger.Client
	renderer  Renderer
	logger    *slog.Logger
	addr      string
	publicURL string

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithRenderer enables server-side certificate rendering on issue
// requests that carry no image.
func WithRenderer(r Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAddr sets the listen address. Defaults to ":2444".
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithPublicURL sets the externally reachable base URL used in QR codes
// and response links.
func WithPublicURL(publicURL string) Option {
	return func(s *Server) {
		s.publicURL = strings.TrimRight(publicURL, "/")
	}
}

// New creates an API server around a certledger client.
func New(client *certledger.Client, opts ...Option) *Server {
	s := &Server{
		client:    client,
		addr:      ":2444",
		publicURL: "http://localhost:2444",
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api")
	{
		api.POST("/certificates", s.handleIssue)
		api.GET("/certificates/:id", s.handleLookup)
		api.POST("/certificates/:id/verify", s.handleVerify)
		api.GET("/content/:locator", s.handleContent)
	}
	s.engine = engine

	return s
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.logger
}

// Handler returns the server's HTTP handler, useful for tests and for
// mounting under an existing mux.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.log().Info("http api listening", "addr", s.addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
