package tui

import "github.com/charmbracelet/lipgloss"

// Layout defaults used until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30
	minHeight     = 5
	borderPadding = 4

	// Lines taken by everything except the rows: title, search, header,
	// summary, status and help.
	chromeHeight = 8
)

// Colors.
const (
	colorPrimary  = lipgloss.Color("39")
	colorSubtle   = lipgloss.Color("245")
	colorSuccess  = lipgloss.Color("42")
	colorWarning  = lipgloss.Color("214")
	colorCritical = lipgloss.Color("196")
	colorSelected = lipgloss.Color("236")
	colorCode     = lipgloss.Color("180")
)

//nolint:gochecknoglobals // Shared styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	LabelStyle    = lipgloss.NewStyle().Foreground(colorSubtle)
	ValueStyle    = lipgloss.NewStyle().Bold(true)
	SubtleStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	InfoStyle     = lipgloss.NewStyle().Foreground(colorPrimary)
	SuccessStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	WarningStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	CriticalStyle = lipgloss.NewStyle().Foreground(colorCritical).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	TableHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Underline(true)
	TableSelectedStyle = lipgloss.NewStyle().Background(colorSelected).Bold(true)

	// StaleStyle marks rows that may be out of date.
	StaleStyle = lipgloss.NewStyle().Foreground(colorWarning).Faint(true)

	// Inline message markup.
	BoldStyle   = lipgloss.NewStyle().Bold(true)
	ItalicStyle = lipgloss.NewStyle().Italic(true)
	StrikeStyle = lipgloss.NewStyle().Strikethrough(true)
	CodeStyle   = lipgloss.NewStyle().Foreground(colorCode)
)
