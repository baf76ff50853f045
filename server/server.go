package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"menu-admin-go/logger"
)

const (
	DefaultPort = 8080

	// DefaultReadTimeout bounds reading the entire request, body included.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout must cover handler execution, which includes the
	// frontend's own round trip to the REST backend.
	DefaultWriteTimeout = 30 * time.Second

	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the grace period for in-flight requests.
	DefaultShutdownTimeout = 5 * time.Second

	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)

// Server runs an http.Handler until its context is canceled.
type Server struct {
	handler         http.Handler
	port            int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	maxHeaderBytes  int
	listener        net.Listener

	mu      sync.RWMutex
	running bool
	addr    string
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

// WithListener serves on an already bound listener instead of :port.
// Tests use it with 127.0.0.1:0.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// New creates a server for handler with the provided options.
func New(handler http.Handler, opts ...Option) *Server {
	s := &Server{
		handler:         handler,
		port:            DefaultPort,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		idleTimeout:     DefaultIdleTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxHeaderBytes:  DefaultMaxHeaderBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRunning reports whether the socket is bound and accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound address once running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Serve starts the HTTP server and blocks until ctx is canceled or the
// server fails. A graceful shutdown returns nil.
func (s *Server) Serve(ctx context.Context) error {
	log := logger.GetLogger()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", s.port),
		Handler:        s.handler,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
	}

	listener := s.listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("failed to create listener: %w", err)
		}
	}
	log.Infow("starting server", "addr", listener.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.mu.Lock()
		s.running = true
		s.addr = listener.Addr().String()
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		log.Infow("shutting down server", "grace_period", s.shutdownTimeout)
		start := time.Now()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("server shutdown error", "error", err)
		}
		log.Infow("server shutdown complete", "duration", time.Since(start))
		return nil
	})

	return g.Wait()
}
