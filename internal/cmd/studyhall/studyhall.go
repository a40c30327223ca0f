// Package studyhall parses backend command flags and composes the serving
// entrypoint: storage, the event bus, the core services, and the HTTP,
// event stream, and chat transports.
package studyhall

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/studyhall/studyhall/internal/auth"
	"github.com/studyhall/studyhall/internal/event"
	entrypoint "github.com/studyhall/studyhall/internal/platform/cmd"
	"github.com/studyhall/studyhall/internal/service"
	apiserver "github.com/studyhall/studyhall/internal/services/api"
	chatserver "github.com/studyhall/studyhall/internal/services/chat/app"
	streamserver "github.com/studyhall/studyhall/internal/services/stream/app"
	"github.com/studyhall/studyhall/internal/storage/sqlite"
)

const defaultShutdownTimeout = 10 * time.Second

// Config holds backend command configuration.
type Config struct {
	HTTPAddr        string        `env:"STUDYHALL_HTTP_ADDR"        envDefault:":8080"`
	DBPath          string        `env:"STUDYHALL_DB_PATH"          envDefault:"studyhall.db"`
	TokenIssuer     string        `env:"STUDYHALL_TOKEN_ISSUER"     envDefault:"studyhall"`
	TokenSecret     string        `env:"STUDYHALL_TOKEN_SECRET"`
	TokenTTL        time.Duration `env:"STUDYHALL_TOKEN_TTL"        envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"STUDYHALL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "sqlite database path")
	fs.StringVar(&cfg.TokenIssuer, "token-issuer", cfg.TokenIssuer, "access token issuer")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "access token signing secret")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "access token lifetime")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run wires the backend and serves until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStudyhall, func(ctx context.Context) error {
		if cfg.TokenSecret == "" {
			return errors.New("token secret is required")
		}

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}()

		bus := event.NewBus()
		detach := event.NewRecorder(store).Attach(bus)
		defer detach()

		tokenCfg := auth.Config{
			Issuer: cfg.TokenIssuer,
			Secret: []byte(cfg.TokenSecret),
			TTL:    cfg.TokenTTL,
		}

		chatSvc := service.NewChatService(store, store, store)
		api := apiserver.NewServer(
			service.NewCourseService(store, store, bus),
			service.NewEnrollmentService(store, store, store, bus),
			chatSvc,
			tokenCfg,
		)

		mux := http.NewServeMux()
		api.Register(mux)
		mux.Handle("GET /events/stream", streamserver.NewServer(bus, tokenCfg))
		mux.Handle("GET /chat/ws", chatserver.NewServer(chatSvc, tokenCfg, nil))

		return listenAndServe(ctx, cfg, mux)
	})
}

func listenAndServe(ctx context.Context, cfg Config, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	log.Printf("studyhall server listening on %s", cfg.HTTPAddr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownTimeout := cfg.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
