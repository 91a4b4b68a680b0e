package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Edward-Lombe/besix/internal/config"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	key     lipgloss.Style
	value   lipgloss.Style
	subtle  lipgloss.Style
	errText lipgloss.Style
	help    lipgloss.Style
}

func newStyles(theme config.ThemeConfig) styles {
	highlight := lipgloss.Color(theme.Highlight)
	subtle := lipgloss.Color(theme.Subtle)
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(highlight),
		header:  lipgloss.NewStyle().Bold(true),
		key:     lipgloss.NewStyle().Foreground(highlight),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Success)),
		subtle:  lipgloss.NewStyle().Foreground(subtle),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Error)),
		help:    lipgloss.NewStyle().Foreground(subtle),
	}
}
