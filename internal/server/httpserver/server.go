package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/omriasta/core/internal/infra/tlsroots"
	"github.com/omriasta/core/internal/telemetry/logger"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	tlsEnabled bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTLS serves HTTPS with the certificate held by certs. Client
// certificates are verified against clientCAs when it is non-empty.
func WithTLS(certs *tlsroots.Watcher, clientCAs *tlsroots.Pool, requireClientCert bool) ServerOption {
	return func(s *Server) {
		s.httpServer.TLSConfig = tlsroots.ServerConfig(certs, clientCAs, requireClientCert)
		s.tlsEnabled = true
	}
}

// WithErrorLog routes net/http server errors to l.
func WithErrorLog(l logger.Logger) ServerOption {
	return func(s *Server) {
		s.httpServer.ErrorLog = logger.StdLogger(l)
	}
}

// WithTimeouts sets the read header, read, write and idle timeouts.
// Zero values keep the defaults.
func WithTimeouts(readHeader, read, write, idle time.Duration) ServerOption {
	return func(s *Server) {
		if readHeader > 0 {
			s.httpServer.ReadHeaderTimeout = readHeader
		}
		if read > 0 {
			s.httpServer.ReadTimeout = read
		}
		if write > 0 {
			s.httpServer.WriteTimeout = write
		}
		if idle > 0 {
			s.httpServer.IdleTimeout = idle
		}
	}
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		handler: handler,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TLSEnabled reports whether the server was configured WithTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// ListenAndServe starts the server, over TLS when configured WithTLS.
func (s *Server) ListenAndServe() error {
	if s.tlsEnabled {
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server with a fixed key pair.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Serve accepts connections on l, over TLS when configured WithTLS.
func (s *Server) Serve(l net.Listener) error {
	if s.tlsEnabled {
		return s.httpServer.ServeTLS(l, "", "")
	}
	return s.httpServer.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
