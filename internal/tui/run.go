package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wolfeidau/admetrics/internal/controller"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *controller.Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
