package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AutoMSR theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconRobot  = "🤖"
	IconPoints = "💎"
	IconSearch = "🔍"
	IconDone   = "✅"
	IconTodo   = "⏳"
	IconDaily  = "📅"
	IconPunch  = "🎟️"
	IconPrize  = "🎁"
	IconInfo   = "ℹ️"
	IconWarn   = "⚠️"
	IconError  = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StatusText colors a completion status the way the board renders it.
func StatusText(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "DONE":
		return Good.Render("DONE")
	case "TODO":
		return Warn.Render("TODO")
	case "INVALID":
		return Bad.Render("INVALID")
	default:
		return Muted.Render(status)
	}
}

// OutcomeText colors a step or run outcome.
func OutcomeText(outcome string) string {
	switch strings.ToUpper(strings.TrimSpace(outcome)) {
	case "SUCCESS":
		return Good.Render("SUCCESS")
	case "FAILURE":
		return Bad.Render("FAILURE")
	case "SKIPPED":
		return Muted.Render("SKIPPED")
	default:
		return Muted.Render(outcome)
	}
}

// TaskIcon picks the icon for a completion record row.
func TaskIcon(daily bool, done bool) string {
	if done {
		return IconDone
	}
	if daily {
		return IconDaily
	}
	return IconTodo
}
