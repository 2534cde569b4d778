package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/api"
	"github.com/svmesh/svmesh-web/internal/cache"
	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/content"
	"github.com/svmesh/svmesh-web/internal/db"
	"github.com/svmesh/svmesh-web/internal/httpx"
	"github.com/svmesh/svmesh-web/internal/logger"
	"github.com/svmesh/svmesh-web/internal/render"
	"github.com/svmesh/svmesh-web/internal/repository"
	"github.com/svmesh/svmesh-web/internal/routes"
	"github.com/svmesh/svmesh-web/internal/site"
	"github.com/svmesh/svmesh-web/internal/sse"
	"github.com/svmesh/svmesh-web/internal/util"
	"github.com/svmesh/svmesh-web/internal/watch"
)

//go:embed static
var staticFiles embed.FS

const defaultConfigPath = "config.yaml"

func main() {
	envErr := godotenv.Load()

	bootLogger := logger.New("info", os.Getenv("LOG_FORMAT"))
	config.SetLogger(bootLogger)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		bootLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(log)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("No .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	repository.SetLogger(l.With().Str("component", "repository").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	api.SetLogger(l.With().Str("component", "api").Logger())
	site.SetLogger(l.With().Str("component", "site").Logger())
	sse.SetLogger(l.With().Str("component", "sse").Logger())
	watch.SetLogger(l.With().Str("component", "watch").Logger())
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	repo, closeRepo, err := repository.New(ctx, cfg, repository.S3Credentials{
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return fmt.Errorf(config.ErrInitializeStorageFmt+": %w", cfg.Storage.Backend, err)
	}
	defer closeRepo()

	clients := sse.NewSSEClients()

	handler, err := newHandler(cfg, repo, clients, cfg.ContentBaseURL(), log)
	if err != nil {
		return err
	}

	if cfg.Content.WatchInterval > 0 {
		watcher := watch.New(repo, cfg.Content.WatchInterval, func(topic string) {
			clients.Broadcast(topic, "reload")
		})
		go watcher.Run(ctx)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	srv.RegisterOnShutdown(clients.CloseAll)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Backend).
			Str("renderer", cfg.Markdown.Renderer).
			Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler builds the full route table. The site reads content through
// the API at contentBaseURL, normally this same server.
func newHandler(cfg *config.Config, repo repository.ContentRepository, clients *sse.SSEClients, contentBaseURL string, log zerolog.Logger) (http.Handler, error) {
	static, err := fs.Sub(staticFiles, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}
	if err := hashStatic(static); err != nil {
		return nil, err
	}

	client := content.NewClient(contentBaseURL,
		content.WithHTTPClient(httpx.NewClient(cfg.Content.FetchTimeout, cfg.Content.FetchRetries)),
		content.WithLogger(log.With().Str("component", "content").Logger()),
		content.WithConcurrency(cfg.Content.FetchConcurrency),
	)

	s, err := site.New(client, cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, serveRobots)
	mux.HandleFunc(routes.HealthPath, serveHealth)
	mux.HandleFunc(routes.Events, clients.Handler)
	mux.Handle(routes.StaticPath, http.StripPrefix(routes.StaticPath, http.FileServer(http.FS(static))))

	api.NewHandler(repo).Register(mux)
	s.Register(mux)

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath { // Ignore robots.txt
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(cfg.Server.HSTS, mux.ServeHTTP)(w, r)
		}
	})

	return cacheIt(securedMux), nil
}

// hashStatic records an ETag for every embedded static file.
func hashStatic(static fs.FS) error {
	return fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		cache.SetStaticHash(routes.StaticPath+path, util.ETag(data))
		return nil
	})
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, config.CTypeText)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow:"))
}

func serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.Header().Set(config.HCacheControl, "no-store")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "Healthy"})
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(hsts bool, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if hsts {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		h(w, r)
	}
}
