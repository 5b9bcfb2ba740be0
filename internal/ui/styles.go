// Package ui renders devflow CLI output: Ayu-themed lipgloss styles,
// glamour markdown, and pager support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu palette, adaptive between the light and dark variants.
var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	passStyle     = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle     = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle     = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

const separatorLight = "──────────────────────────────────────────"

// RenderWarn renders text in the warning color.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail renders text in the failure color.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderMuted renders de-emphasized text.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// RenderAccent renders highlighted text.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderCategory renders a bold uppercase section header.
func RenderCategory(s string) string { return categoryStyle.Render(strings.ToUpper(s)) }

// RenderSeparator renders a muted horizontal rule.
func RenderSeparator() string { return mutedStyle.Render(separatorLight) }

// Status icons used in list output.
func RenderPassIcon() string { return passStyle.Render("✓") }
func RenderFailIcon() string { return failStyle.Render("✗") }
func RenderSkipIcon() string { return mutedStyle.Render("-") }
func RenderInfoIcon() string { return accentStyle.Render("ℹ") }
