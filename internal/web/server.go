// Package web serves the browser form and JSON API over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/seanhalberthal/uncomment/internal/config"
	"github.com/seanhalberthal/uncomment/internal/logger"
	"github.com/seanhalberthal/uncomment/internal/processor"
)

// limiterSweepInterval is how often idle per-client limiters are dropped.
const limiterSweepInterval = time.Minute

// Server wraps an HTTP server that speaks HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	httpServer *http.Server
	limiter    *RateLimiter
	stop       chan struct{}
}

// New creates a server for the processor using the server and limit settings.
func New(cfg *config.Config, proc *processor.Processor) (*Server, error) {
	h, err := NewHandler(proc, cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           h2c.NewHandler(h.Routes(), &http2.Server{}),
			ReadTimeout:       cfg.Server.ReadTimeout(),
			ReadHeaderTimeout: cfg.Server.ReadTimeout(),
			WriteTimeout:      cfg.Server.WriteTimeout(),
		},
		limiter: h.limiter,
		stop:    make(chan struct{}),
	}, nil
}

// Start listens until the server is shut down.
func (s *Server) Start() error {
	if s.limiter != nil {
		go s.sweepLimiters()
	}

	logger.Slog().Info("starting web server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) sweepLimiters() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.limiter.Cleanup(limiterSweepInterval)
		}
	}
}
