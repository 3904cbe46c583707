// Package server exposes playlist export and import over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/playlist"
)

// Options configures request defaults.
type Options struct {
	// DefaultFormat is used when a request has no format parameter.
	DefaultFormat codec.Format
	// UserID owns playlists saved through the API.
	UserID string
	// MaxBodySize limits request bodies in bytes.
	MaxBodySize int64
	Debug       bool
}

// Server handles HTTP requests for playlist export and import
type Server struct {
	router    *gin.Engine
	playlists *playlist.PlaylistService
	opts      Options
	logger    *log.Logger
}

// New creates a new HTTP server instance
func New(playlists *playlist.PlaylistService, opts Options, logger *log.Logger) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = codec.FormatDetailed
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 16 << 20
	}

	s := &Server{
		router:    gin.New(),
		playlists: playlists,
		opts:      opts,
		logger:    logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/export", s.exportDocument)
		api.POST("/import", s.importDocument)
		api.GET("/playlists", s.listPlaylists)
		api.GET("/playlists/:id/export", s.exportStored)
		api.DELETE("/playlists/:id", s.deletePlaylist)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// A listen failure is returned as is.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := s.logger.WithFields(log.Fields{"component": "server", "address": addr})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(log.Fields{
			"component": "server",
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
		}).Debug("Handled request")
	}
}
