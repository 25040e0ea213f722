package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the client. Colors are ANSI 256
// codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	ErrorText   lipgloss.Color
	SuccessText lipgloss.Color

	// Globe glyphs
	MapAirport lipgloss.Color
	MapPath    lipgloss.Color
	MapMarker  lipgloss.Color
}

// DarkTheme targets terminals with a dark background
var DarkTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	Accent:             lipgloss.Color("39"),
	SelectedBackground: lipgloss.Color("237"),
	SelectedForeground: lipgloss.Color("231"),
	HeaderForeground:   lipgloss.Color("75"),
	BorderColor:        lipgloss.Color("240"),
	HelpText:           lipgloss.Color("241"),
	ErrorText:          lipgloss.Color("203"),
	SuccessText:        lipgloss.Color("114"),
	MapAirport:         lipgloss.Color("66"),
	MapPath:            lipgloss.Color("221"),
	MapMarker:          lipgloss.Color("208"),
}

// LightTheme targets terminals with a light background
var LightTheme = Theme{
	NormalText:         lipgloss.Color("235"),
	FaintText:          lipgloss.Color("245"),
	Accent:             lipgloss.Color("25"),
	SelectedBackground: lipgloss.Color("153"),
	SelectedForeground: lipgloss.Color("16"),
	HeaderForeground:   lipgloss.Color("24"),
	BorderColor:        lipgloss.Color("250"),
	HelpText:           lipgloss.Color("244"),
	ErrorText:          lipgloss.Color("160"),
	SuccessText:        lipgloss.Color("28"),
	MapAirport:         lipgloss.Color("109"),
	MapPath:            lipgloss.Color("130"),
	MapMarker:          lipgloss.Color("166"),
}

// ThemeFor picks the palette for the dark mode flag
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme
	}
	return LightTheme
}

func (t Theme) text() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.NormalText) }
func (t Theme) faint() lipgloss.Style  { return lipgloss.NewStyle().Foreground(t.FaintText) }
func (t Theme) accent() lipgloss.Style { return lipgloss.NewStyle().Foreground(t.Accent) }
func (t Theme) help() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.HelpText) }
func (t Theme) errorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.ErrorText)
}
func (t Theme) success() lipgloss.Style { return lipgloss.NewStyle().Foreground(t.SuccessText) }

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.HeaderForeground).Bold(true)
}

func (t Theme) selected() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.SelectedBackground).Foreground(t.SelectedForeground)
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.HeaderForeground).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.BorderColor)
}
