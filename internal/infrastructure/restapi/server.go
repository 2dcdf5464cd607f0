package restapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"wallet_enricher/internal/app/port"
)

// Server runs the status router in the background while a job executes.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a new Server listening on addr.
func NewServer(addr string, runs port.RunReader, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(runs, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in a goroutine. Listen errors are logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Status server starting", zap.String("address", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
