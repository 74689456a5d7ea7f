package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/logger"
	"github.com/wolfeidau/admetrics/internal/tui"
)

const browseLogFile = "browse.log"

// BrowseCmd runs the interactive dashboard. Logs go to a file in the state
// directory since the terminal belongs to the dashboard.
type BrowseCmd struct{}

func (b *BrowseCmd) Run(ctx context.Context, globals *Globals) error {
	lg, closer, err := logger.SetupFile(globals.StateDir, browseLogFile, globals.Debug)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()
	log.Logger = lg

	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	return tui.Run(ctx, a.ctrl)
}
