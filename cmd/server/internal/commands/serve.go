package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/admetrics/internal/apitest"
	httpmiddleware "github.com/wolfeidau/admetrics/internal/http"
	"github.com/wolfeidau/admetrics/internal/logger"
	"github.com/wolfeidau/admetrics/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServeCmd runs the in-process metrics API on a real listener so the CLI can
// be exercised without the production service.
type ServeCmd struct {
	Listen       string    `help:"HTTP listen address" default:"127.0.0.1:8000" env:"ADMETRICS_DEV_LISTEN"`
	Rows         int       `help:"number of generated metric rows" default:"250"`
	Seed         uint64    `help:"seed for generated rows" default:"1"`
	LastDay      time.Time `help:"date of the newest generated row (YYYY-MM-DD), defaults to today" format:"2006-01-02"`
	OmitPageSize bool      `help:"leave page_size out of /metrics responses"`
	Tracing      bool      `help:"enable tracing" default:"false" env:"ADMETRICS_DEV_TRACING"`
}

func (c *ServeCmd) handler(log zerolog.Logger) (http.Handler, error) {
	last := c.LastDay
	if last.IsZero() {
		last = time.Now().UTC().Truncate(24 * time.Hour)
	}

	var opts []apitest.Option
	if c.OmitPageSize {
		opts = append(opts, apitest.WithoutPageSize())
	}

	api, err := apitest.NewDefault(apitest.GenerateRows(c.Rows, last, c.Seed), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create api: %w", err)
	}

	var handler http.Handler = api
	handler = httpmiddleware.AccessLog(log)(handler)
	handler = httpmiddleware.RequestMiddleware()(handler)

	return handler, nil
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting development server")

	if c.Tracing {
		shutdown, err := telemetry.InitTelemetry(ctx, "admetrics-devserver", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	handler, err := c.handler(log)
	if err != nil {
		return err
	}
	if c.Tracing {
		handler = otelhttp.NewHandler(handler, "admetrics-devserver")
	}

	srv := configureHTTPServer(c.Listen, handler)
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("listen", c.Listen).
			Int("rows", c.Rows).
			Str("admin", apitest.Admin.Email).
			Str("user", apitest.Standard.Email).
			Msg("Development server listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down development server")
	return srv.Shutdown(shutdownCtx)
}
