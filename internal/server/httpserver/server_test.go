package httpserver

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/core/lifecycle"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/infra/tlsroots"
	"github.com/omriasta/core/internal/server/httpserver/router"
	"github.com/omriasta/core/internal/server/httpserver/view"
	"github.com/omriasta/core/internal/telemetry/metric"
)

func TestNew(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(":8080", handler, WithTimeouts(time.Second, 2*time.Second, 3*time.Second, 0))
	if s.httpServer == nil || s.handler == nil {
		t.Fatal("New() returned an incomplete server")
	}
	if s.httpServer.ReadHeaderTimeout != time.Second || s.httpServer.WriteTimeout != 3*time.Second {
		t.Errorf("timeouts not applied: %+v", s.httpServer)
	}
	if s.httpServer.IdleTimeout != 120*time.Second {
		t.Errorf("IdleTimeout = %v, want default", s.httpServer.IdleTimeout)
	}
	if s.TLSEnabled() {
		t.Error("TLSEnabled() = true without WithTLS")
	}
}

func TestServer_Shutdown(t *testing.T) {
	s := New("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(ln)
	}()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Serve returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for Serve to return")
	}
}

func TestServer_TLS(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeTestKeyPair(t, certFile, keyFile)

	certs, err := tlsroots.NewWatcher(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	s := New("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "secure")
	}), WithTLS(certs, nil, false))
	if !s.TLSEnabled() {
		t.Fatal("TLSEnabled() = false")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go s.Serve(ln)
	defer s.Shutdown(context.Background())

	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	resp, err := client.Get("https://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "secure" {
		t.Errorf("body = %q, want secure", body)
	}
	if resp.TLS == nil {
		t.Error("response not served over TLS")
	}
}

func TestDefaultRouterConfig(t *testing.T) {
	cfg := DefaultRouterConfig()
	if cfg.Kind != RouterMux {
		t.Errorf("Kind = %q, want %q", cfg.Kind, RouterMux)
	}
	if cfg.RateLimit <= 0 {
		t.Error("RateLimit should be positive")
	}
	if !cfg.MetricsAuthRequired {
		t.Error("metrics should require auth by default")
	}
}

func TestNewRouter_Errors(t *testing.T) {
	state := lifecycle.NewState(lifecycle.Running)

	tests := []struct {
		name string
		cfg  *RouterConfig
		want *domain.DomainError
	}{
		{"nil config", nil, domain.ErrConfiguration},
		{"no state", &RouterConfig{}, domain.ErrConfiguration},
		{"unknown router", &RouterConfig{State: state, Kind: "chi"}, domain.ErrConfiguration},
		{
			"duplicate view",
			&RouterConfig{State: state, Views: []view.View{
				&pingView{Base: view.Base{Path: "/health"}},
			}},
			domain.ErrViewRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouter(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewRouter() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type pingView struct {
	view.Base
}

func (*pingView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.Text("pong"), nil
}

func (*pingView) Delete(_ *http.Request, _ router.Params) (view.Result, error) {
	panic("delete exploded")
}

type streamView struct {
	view.Base
}

func (*streamView) Get(_ *http.Request, _ router.Params) (view.Result, error) {
	return view.Stream(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "partial")
		panic("stream exploded")
	}), nil
}

type routerFixture struct {
	handler http.Handler
	bearer  string
	state   *lifecycle.State
	metrics *metric.Registry
}

func newRouterFixture(t *testing.T, kind string, mutate func(*RouterConfig)) *routerFixture {
	t.Helper()

	tok, secret, err := domain.NewAccessToken("user-1", "Test User", true)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	auth, err := service.NewAuthService(&service.AuthServiceConfig{
		Tokens:          []domain.AccessToken{*tok},
		TrustedNetworks: []string{"127.0.0.1"},
	})
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}

	services := service.NewRegistry()
	if err := service.RegisterBuiltins(services, func(string) {}); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}

	var logs bytes.Buffer
	f := &routerFixture{
		bearer:  "Bearer " + tok.ID + ":" + secret,
		state:   lifecycle.NewState(lifecycle.Running),
		metrics: metric.NewRegistry(),
	}
	cfg := &RouterConfig{
		Kind:               kind,
		State:              f.state,
		Auth:               auth,
		Services:           services,
		Metrics:            f.metrics,
		Logger:             newTestLogger(t, &logs),
		CORSAllowedOrigins: []string{"https://app.example.com"},
		Views: []view.View{
			&pingView{Base: view.Base{ViewName: "ping", Path: "/api/ping", Public: true, AllowCORS: true}},
		},
		MetricsAuthRequired: true,
		EnableAudit:         true,
	}
	if mutate != nil {
		mutate(cfg)
	}

	h, err := NewRouter(cfg)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	f.handler = h
	return f
}

func (f *routerFixture) do(method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.10:4000"
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_EndToEnd(t *testing.T) {
	for _, kind := range []string{RouterMux, RouterGorilla} {
		t.Run(kind, func(t *testing.T) {
			f := newRouterFixture(t, kind, nil)
			authed := http.Header{"Authorization": {f.bearer}}

			tests := []struct {
				name       string
				method     string
				path       string
				header     http.Header
				wantStatus int
			}{
				{"api authenticated", http.MethodGet, "/api/", authed, http.StatusOK},
				{"api anonymous", http.MethodGet, "/api/", nil, http.StatusUnauthorized},
				{"api bad token", http.MethodGet, "/api/", http.Header{"Authorization": {"Bearer x:y"}}, http.StatusUnauthorized},
				{"service call", http.MethodPost, "/api/services/system/ping", authed, http.StatusOK},
				{"health public", http.MethodGet, "/healthz", nil, http.StatusOK},
				{"metrics protected", http.MethodGet, "/metrics", nil, http.StatusUnauthorized},
				{"metrics authenticated", http.MethodGet, "/metrics", authed, http.StatusOK},
				{"extra view", http.MethodGet, "/api/ping", nil, http.StatusOK},
				{"panic recovered", http.MethodDelete, "/api/ping", nil, http.StatusInternalServerError},
				{"head on get-only view", http.MethodHead, "/api/ping", nil, http.StatusMethodNotAllowed},
				{"unknown path", http.MethodGet, "/nope", nil, http.StatusNotFound},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					rec := f.do(tt.method, tt.path, tt.header)
					if rec.Code != tt.wantStatus {
						t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
					}
					if rec.Header().Get(HeaderRequestID) == "" {
						t.Error("X-Request-ID missing")
					}
				})
			}
		})
	}
}

func TestNewRouter_PanicAfterStreamStarted(t *testing.T) {
	for _, kind := range []string{RouterMux, RouterGorilla} {
		t.Run(kind, func(t *testing.T) {
			f := newRouterFixture(t, kind, func(cfg *RouterConfig) {
				cfg.Views = append(cfg.Views, &streamView{Base: view.Base{ViewName: "stream", Path: "/api/stream", Public: true}})
			})

			var got any
			func() {
				defer func() { got = recover() }()
				f.do(http.MethodGet, "/api/stream", nil)
			}()

			if got != http.ErrAbortHandler {
				t.Fatalf("recovered %v, want http.ErrAbortHandler", got)
			}
		})
	}
}

func TestNewRouter_NotRunning(t *testing.T) {
	f := newRouterFixture(t, RouterMux, nil)
	f.state.Set(lifecycle.Stopping)

	rec := f.do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestNewRouter_TrustedNetwork(t *testing.T) {
	f := newRouterFixture(t, RouterMux, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/services/system/ping", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Context domain.Context `json:"context"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Context.UserID != domain.SystemUser.ID {
		t.Errorf("context user = %q, want %q", body.Context.UserID, domain.SystemUser.ID)
	}
}

func TestNewRouter_CORS(t *testing.T) {
	f := newRouterFixture(t, RouterMux, nil)

	preflight := func(path, origin string) *httptest.ResponseRecorder {
		return f.do(http.MethodOptions, path, http.Header{
			"Origin":                        {origin},
			"Access-Control-Request-Method": {http.MethodGet},
		})
	}

	if rec := preflight("/api/ping", "https://app.example.com"); rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec := preflight("/api/ping", "https://evil.example.com"); rec.Code != http.StatusForbidden {
		t.Errorf("preflight from unknown origin status = %d, want 403", rec.Code)
	}
	if rec := preflight("/metrics", "https://app.example.com"); rec.Code == http.StatusNoContent {
		t.Error("metrics view should not answer preflight requests")
	}

	rec := f.do(http.MethodGet, "/api/ping", http.Header{"Origin": {"https://app.example.com"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestNewRouter_RateLimit(t *testing.T) {
	f := newRouterFixture(t, RouterMux, func(cfg *RouterConfig) {
		cfg.RateLimit = 1
		cfg.RateBurst = 1
	})

	if rec := f.do(http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}
	rec := f.do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}

// writeTestKeyPair writes a self-signed certificate for localhost.
func writeTestKeyPair(t *testing.T, certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(42),
		Subject:               pkix.Name{CommonName: "localhost"},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}

	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600); err != nil {
		t.Fatal(err)
	}
}
