package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/flow"
	"go.uber.org/zap"

	"covcheck/internal/coverity"
)

// shutdownTimeout bounds graceful shutdown after the run context ends.
const shutdownTimeout = 5 * time.Second

// Routes registers the API handlers on a new mux.
func Routes(fv FieldValidator, instances coverity.Instances, lister ViewLister, logger *zap.Logger) *flow.Mux {
	mux := flow.New()

	mux.Handle(
		"/v1/instances",
		InstancesHandler(fv, logger.With(zap.String("handler", "list instances"))),
		"GET",
	)

	mux.Handle(
		"/v1/instances/check",
		CheckInstanceHandler(fv, logger.With(zap.String("handler", "check instance"))),
		"GET",
	)

	mux.Handle(
		"/v1/connection/test",
		TestConnectionHandler(fv, logger.With(zap.String("handler", "test connection"))),
		"POST",
	)

	mux.Handle(
		"/v1/views",
		ViewsHandler(instances, lister, logger.With(zap.String("handler", "list views"))),
		"GET",
	)

	return mux
}

// Server serves an HTTP handler until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New creates a server for handler listening on addr.
func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.Named("server"),
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("listen", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
