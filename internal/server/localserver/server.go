package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/omriasta/core/internal/server/httpserver/reqctx"
	"github.com/omriasta/core/internal/telemetry/logger"
)

// SocketMode is the permission set on the socket file.
const SocketMode fs.FileMode = 0o600

// Server serves HTTP on a Unix socket.
type Server struct {
	path       string
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithErrorLog routes net/http server errors to l.
func WithErrorLog(l logger.Logger) Option {
	return func(s *Server) {
		s.httpServer.ErrorLog = logger.StdLogger(l)
	}
}

// New creates a server for the socket at path. Every request handed to
// handler carries reqctx.Local.
func New(path string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		path: path,
		httpServer: &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handler.ServeHTTP(w, r.WithContext(reqctx.WithLocal(r.Context())))
			}),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Listen binds the socket. A stale socket file left by a previous run is
// removed first; any other file at path is an error.
func (s *Server) Listen() (net.Listener, error) {
	if err := removeStale(s.path); err != nil {
		return nil, err
	}
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, SocketMode); err != nil {
		l.Close()
		return nil, fmt.Errorf("chmod %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	return l, nil
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	err := s.httpServer.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe binds the socket and serves on it.
func (s *Server) ListenAndServe() error {
	l, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Shutdown stops the server gracefully and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	bound := s.listener != nil
	s.listener = nil
	s.mu.Unlock()

	if bound {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	return os.Remove(path)
}
