package cli

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

const levelDebug = slog.LevelDebug

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
)
