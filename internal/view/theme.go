package view

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	Purple       = lipgloss.Color("#A855F7")
	BrightPurple = lipgloss.Color("#C084FC")

	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")
	Black     = lipgloss.Color("#111827")

	Green = lipgloss.Color("#22C55E")
	Red   = lipgloss.Color("#EF4444")
)

// Styles contains the shared terminal styles
type Styles struct {
	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Header   lipgloss.Style
	Sorted   lipgloss.Style
	Selected lipgloss.Style
	Cell     lipgloss.Style
	Disabled lipgloss.Style
	Active   lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	Container lipgloss.Style
	Card      lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
}

var (
	defaultStyles *Styles
	stylesOnce    sync.Once
)

// DefaultStyles returns the singleton default Styles instance
func DefaultStyles() *Styles {
	stylesOnce.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			MarginBottom(1),

		Body: lipgloss.NewStyle().
			Foreground(LightGray),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Header: lipgloss.NewStyle().
			Foreground(LightGray).
			Bold(true),

		Sorted: lipgloss.NewStyle().
			Foreground(BrightPurple).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(Black).
			Background(White).
			Bold(true),

		Cell: lipgloss.NewStyle().
			Foreground(LightGray),

		Disabled: lipgloss.NewStyle().
			Foreground(DarkGray),

		Active: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(DimGray).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(LightGray).
			Bold(true),

		Container: lipgloss.NewStyle().
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(1, 2),

		Success: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),
	}
}
