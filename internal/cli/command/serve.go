package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/omriasta/core/internal/core/lifecycle"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/infra/buildinfo"
	"github.com/omriasta/core/internal/infra/confloader"
	"github.com/omriasta/core/internal/infra/shutdown"
	"github.com/omriasta/core/internal/infra/tlsroots"
	"github.com/omriasta/core/internal/server/config"
	"github.com/omriasta/core/internal/server/httpserver"
	"github.com/omriasta/core/internal/server/localserver"
	"github.com/omriasta/core/internal/telemetry/logger"
	"github.com/omriasta/core/internal/telemetry/metric"
)

// ServeCommand runs the HTTP server until SIGINT or SIGTERM.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP server",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	loader, cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting hub-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath(),
	)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	h, err := newHub(cfg, log)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(c.Context)
	defer stop()

	if h.limiters != nil {
		go h.limiters.RunPruner(runCtx, rateLimiterPruneInterval, rateLimiterIdle)
	}

	opts, err := h.serverOptions(runCtx)
	if err != nil {
		return err
	}
	srv := httpserver.New(cfg.Server.HTTP.Addr, h.handler, opts...)

	ln, err := net.Listen("tcp", cfg.Server.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err)
	}

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout,
		shutdown.WithState(h.state),
		shutdown.WithLogger(log),
	)
	shutdownHandler.OnShutdown("watchers", func(context.Context) error {
		stop()
		return nil
	})
	shutdownHandler.OnShutdown("http", srv.Shutdown)

	var local *localserver.Server
	var localLn net.Listener
	if cfg.Server.Local.Enabled() {
		local = localserver.New(cfg.Server.Local.Path, h.handler, localserver.WithErrorLog(log))
		localLn, err = local.Listen()
		if err != nil {
			ln.Close()
			return err
		}
		shutdownHandler.OnShutdown("local", local.Shutdown)
	}

	if path := loader.FilePath(); path != "" {
		if err := h.watchConfig(runCtx, loader, path); err != nil {
			log.Warn("configuration hot reload disabled", "error", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			stop()
		}
	}()

	if local != nil {
		go func() {
			if err := local.Serve(localLn); err != nil {
				log.Error("local socket server error", "error", err)
			}
		}()
		log.Info("local socket listening", "path", local.Path())
	}

	h.state.Set(lifecycle.Running)
	log.Info("HTTP server listening",
		"addr", ln.Addr().String(),
		"tls", srv.TLSEnabled(),
		"router", cfg.Server.HTTP.Router,
	)

	if err := shutdownHandler.Wait(runCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	select {
	case err := <-serveErr:
		return err
	default:
	}
	log.Info("server stopped gracefully")
	return nil
}

// hub is the wired server core.
type hub struct {
	cfg      *config.ServerConfig
	log      logger.Logger
	state    *lifecycle.State
	auth     *service.AuthService
	services *service.Registry
	metrics  *metric.Registry
	limiters *service.RateLimiterRegistry
	handler  http.Handler
}

// Idle client buckets are dropped after rateLimiterIdle.
const (
	rateLimiterPruneInterval = time.Minute
	rateLimiterIdle          = 10 * time.Minute
)

func newHub(cfg *config.ServerConfig, log logger.Logger) (*hub, error) {
	h := &hub{
		cfg:      cfg,
		log:      log,
		state:    lifecycle.NewState(lifecycle.Starting),
		services: service.NewRegistry(),
		metrics:  metric.NewRegistry(),
	}

	auth, err := service.NewAuthService(&service.AuthServiceConfig{
		Tokens:          cfg.Security.AccessTokens,
		TrustedNetworks: cfg.Security.TrustedNetworks,
		CacheTTL:        cfg.Security.CredentialCacheTTL,
		CacheSize:       cfg.Security.CredentialCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init auth: %w", err)
	}
	h.auth = auth

	if err := service.RegisterBuiltins(h.services, logger.SetLevel); err != nil {
		return nil, fmt.Errorf("register services: %w", err)
	}
	h.metrics.MustRegister(metric.NewCollector(
		func() string { return h.state.Get().String() },
		func() int { return countServices(h.services) },
	))

	proxies, err := service.ParseNetworks(cfg.Server.HTTP.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	httpCfg := cfg.Server.HTTP
	if httpCfg.RateLimit > 0 {
		h.limiters = service.NewRateLimiterRegistry(httpCfg.RateLimit, httpCfg.RateBurst)
	}
	h.handler, err = httpserver.NewRouter(&httpserver.RouterConfig{
		Kind:                httpCfg.Router,
		State:               h.state,
		Auth:                h.auth,
		Services:            h.services,
		Metrics:             h.metrics,
		Logger:              log,
		CORSAllowedOrigins:  httpCfg.CORSAllowedOrigins,
		UseXForwardedFor:    httpCfg.UseXForwardedFor,
		TrustedProxies:      proxies,
		MetricsAuthRequired: httpCfg.MetricsAuthRequired,
		RateLimit:           httpCfg.RateLimit,
		RateBurst:           httpCfg.RateBurst,
		RateLimiters:        h.limiters,
		EnableAudit:         httpCfg.Audit,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	return h, nil
}

func countServices(r *service.Registry) int {
	n := 0
	for _, info := range r.Services() {
		n += len(info.Services)
	}
	return n
}

// serverOptions builds the server options. With TLS configured, the key
// pair watcher runs until ctx is done.
func (h *hub) serverOptions(ctx context.Context) ([]httpserver.ServerOption, error) {
	httpCfg := h.cfg.Server.HTTP
	opts := []httpserver.ServerOption{
		httpserver.WithErrorLog(h.log),
		httpserver.WithTimeouts(httpCfg.ReadHeaderTimeout, 0, 0, httpCfg.IdleTimeout),
	}
	if !httpCfg.TLSEnabled() {
		return opts, nil
	}

	certs, err := tlsroots.NewWatcher(httpCfg.TLSCertFile, httpCfg.TLSKeyFile, tlsroots.WithLogger(h.log))
	if err != nil {
		return nil, err
	}
	go func() {
		if err := certs.Run(ctx); err != nil {
			h.log.Error("certificate watcher stopped", "error", err)
		}
	}()

	clientCAs := tlsroots.NewEmptyPool()
	if httpCfg.TLSClientCAFile != "" {
		clientCAs, err = tlsroots.LoadClientCAs(httpCfg.TLSClientCAFile)
		if err != nil {
			return nil, err
		}
	}
	return append(opts, httpserver.WithTLS(certs, clientCAs, httpCfg.TLSRequireClientCert)), nil
}

// watchConfig reloads the configuration file whenever it changes.
func (h *hub) watchConfig(ctx context.Context, loader *confloader.Loader, path string) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(h.log))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		w.Close()
		return err
	}
	w.OnChange(func(string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			h.log.Error("configuration reload failed", "error", err)
			return
		}
		if err := h.apply(next); err != nil {
			h.log.Error("configuration reload rejected", "error", err)
		}
	})
	go w.Run(ctx)
	return nil
}

// apply re-applies the settings that can change at runtime: the log level,
// the access tokens and the trusted networks. Anything else needs a
// restart.
func (h *hub) apply(next *config.ServerConfig) error {
	if err := config.Verify(next); err != nil {
		return err
	}
	if err := h.auth.Reload(next.Security.AccessTokens, next.Security.TrustedNetworks); err != nil {
		return err
	}
	logger.SetLevel(next.Log.Level)

	h.log.Info("configuration reloaded",
		"log_level", next.Log.Level,
		"access_tokens", len(next.Security.AccessTokens),
	)
	return nil
}
