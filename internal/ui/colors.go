package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Colors{
	Accent:  "#7D56F4",
	OK:      "#04B575",
	Err:     "#FF0000",
	Warn:    "#FFA500",
	Muted:   "#626262",
	Reached: "#F5C542",
})

// Colors holds the hex values a [Palette] is built from.
type Colors struct {
	Accent, OK, Err, Warn, Muted, Reached string
}

// Palette is the TUI stylesheet.
type Palette struct {
	title     lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	reached   lipgloss.Style
	purchased lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	frame     lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		title:     NewBold(c.Accent).MarginBottom(1),
		ok:        NewBold(c.OK),
		err:       NewBold(c.Err),
		warn:      NewStyle(c.Warn),
		help:      NewEm(c.Muted),
		reached:   NewBold(c.Reached),
		purchased: NewStyle(c.OK).Strikethrough(true),
		tab:       NewStyle(c.Muted).Padding(0, 1),
		activeTab: NewBold(c.Accent).Padding(0, 1).Underline(true),
		frame:     lipgloss.NewStyle().Padding(1, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
