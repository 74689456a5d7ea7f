package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/controller"
	"github.com/wolfeidau/admetrics/internal/kv"
	"github.com/wolfeidau/admetrics/internal/logger"
	"github.com/wolfeidau/admetrics/internal/session"
	"github.com/wolfeidau/admetrics/internal/telemetry"
)

const serviceName = "admetrics"

var (
	// ErrNotLoggedIn is returned by commands that need a saved session.
	ErrNotLoggedIn = errors.New("not logged in, run admetrics login first")

	// ErrSessionExpired is returned when the API rejects the saved session.
	ErrSessionExpired = errors.New("session expired, run admetrics login again")
)

type Globals struct {
	Debug        bool          `help:"Enable debug logging." env:"ADMETRICS_DEBUG"`
	APIURL       string        `name:"api-url" help:"Metrics API base URL." default:"http://localhost:8000" env:"ADMETRICS_API_URL"`
	StateDir     string        `help:"Directory holding the saved session." type:"path" default:"~/.admetrics" env:"ADMETRICS_STATE_DIR"`
	StateBackend string        `help:"Session storage backend (file, sqlite or memory)." enum:"file,sqlite,memory" default:"file" env:"ADMETRICS_STATE_BACKEND"`
	PageSize     int           `help:"Page size to assume when the API omits it, 0 means unknown." default:"0" env:"ADMETRICS_PAGE_SIZE"`
	Timeout      time.Duration `help:"Request timeout, 0 disables it." default:"0" env:"ADMETRICS_TIMEOUT"`
	Telemetry    bool          `help:"Export traces and metrics over OTLP." env:"ADMETRICS_TELEMETRY"`

	Version string `kong:"-"`
}

// app is everything a command needs to talk to the API.
type app struct {
	store    kv.Store
	ctrl     *controller.Controller
	shutdown telemetry.ShutdownFunc
}

func (g *Globals) setupLogging() {
	log.Logger = logger.Setup(g.Debug)
}

func (g *Globals) open(ctx context.Context) (*app, error) {
	shutdown := telemetry.ShutdownFunc(func(context.Context) error { return nil })
	if g.Telemetry {
		s, err := telemetry.InitTelemetry(ctx, serviceName, g.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to initialise telemetry: %w", err)
		}
		shutdown = s
	}

	store, err := kv.Open(g.StateBackend, g.StateDir)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	if g.StateBackend == kv.BackendMemory {
		log.Warn().Msg("memory state backend selected, the session will not outlive this command")
	}

	cl, err := client.New(client.Config{
		BaseURL: g.APIURL,
		Timeout: g.Timeout,
	})
	if err != nil {
		_ = store.Close()
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	ctrl := controller.New(cl, session.NewStore(store), controller.WithPageSize(g.PageSize))

	log.Debug().
		Str("api", g.APIURL).
		Str("backend", g.StateBackend).
		Str("stateDir", g.StateDir).
		Msg("client ready")

	return &app{store: store, ctrl: ctrl, shutdown: shutdown}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close state store")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := a.shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to flush telemetry")
	}
}

func writerOr(w io.Writer, fallback *os.File) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
