package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/sitescope/internal/adapters/backend"
	"github.com/okian/sitescope/internal/adapters/http/api"
	"github.com/okian/sitescope/internal/adapters/http/site"
	"github.com/okian/sitescope/internal/adapters/http/swagger"
	"github.com/okian/sitescope/internal/adapters/render"
	app "github.com/okian/sitescope/internal/app"
	"github.com/okian/sitescope/internal/config"
	"github.com/okian/sitescope/internal/domain/dedupe"
	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/domain/normalize"
	"github.com/okian/sitescope/internal/domain/visual"
	"github.com/okian/sitescope/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// writeSlack is added to the backend timeout so chat answers can still be
	// written after a slow backend.
	writeSlack = 15 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "sitescope exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.LogFile != "" {
		if err := logger.Init(logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)); err != nil {
			return err
		}
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      time.Duration(cfg.BackendTimeoutMS)*time.Millisecond + writeSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService wires the map service from cfg.
func newService(cfg *config.Config) (*app.Service, error) {
	layer, err := visual.ParseLayer(cfg.DefaultLayer)
	if err != nil {
		return nil, err
	}

	var genOpts []mock.Option
	if cfg.MockSeed != 0 {
		genOpts = append(genOpts, mock.WithSeed(cfg.MockSeed))
	}
	gen := mock.NewGenerator(genOpts...)

	responder, err := newResponder(cfg, gen)
	if err != nil {
		return nil, err
	}

	return app.New(
		app.WithLogger(logger.Named("service")),
		app.WithLayer(layer),
		app.WithQueueSize(cfg.UpdateQueueSize),
		app.WithGenerator(gen),
		app.WithReplayCache(dedupe.NewInMemoryResults(dedupe.WithMaxSize(cfg.ReplayCacheSize))),
		app.WithNormalizer(normalize.New(
			normalize.WithPrecision(cfg.AuxPrecision),
			normalize.WithLogger(logger.Named("normalize")),
		)),
		app.WithRenderer(render.NewLayerStore(
			render.WithLayer(layer),
			render.WithNamer(gen.Catalog().Name),
			render.WithLogger(logger.Named("render")),
		)),
		app.WithResponder(responder),
	), nil
}

// newResponder selects the chat backend: the HTTP client behind an apology
// fallback when a backend URL is configured, otherwise the mock responder.
func newResponder(cfg *config.Config, gen *mock.Generator) (backend.Responder, error) {
	if cfg.BackendURL == "" {
		return backend.NewMockResponder(
			backend.WithGenerator(gen),
			backend.WithDelay(
				time.Duration(cfg.MockDelayMinMS)*time.Millisecond,
				time.Duration(cfg.MockDelayMaxMS)*time.Millisecond,
			),
			backend.WithMockLogger(logger.Named("mock_backend")),
		), nil
	}
	client, err := backend.NewHTTPClient(cfg.BackendURL,
		backend.WithTimeout(time.Duration(cfg.BackendTimeoutMS)*time.Millisecond),
		backend.WithRetries(cfg.BackendRetries),
		backend.WithClientLogger(logger.Named("backend")),
	)
	if err != nil {
		return nil, err
	}
	return backend.NewFallback(client, logger.Named("backend")), nil
}

// newHandler registers the API, the API reference and the viewer on one mux.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	catalog := svc.Generator().Catalog()
	locate := func(id string) (float64, float64, bool) {
		r, ok := catalog.Lookup(id)
		return r.Lat, r.Lng, ok
	}
	api.NewServer(svc, svc, locate).Register(ctx, mux)

	site.Register(ctx, mux)

	return api.Handler(mux, cfg.CORSAllowedOrigins)
}
