package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/amterp/memmap/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors that work in both light and dark terminals.
// First value is for dark terminals, second for light terminals.
var (
	ColorSuccess = lipgloss.AdaptiveColor{Dark: "#22c55e", Light: "#16a34a"} // green
	ColorError   = lipgloss.AdaptiveColor{Dark: "#ef4444", Light: "#dc2626"} // red
	ColorWarning = lipgloss.AdaptiveColor{Dark: "#f59e0b", Light: "#d97706"} // amber
	ColorMuted   = lipgloss.AdaptiveColor{Dark: "#6b7280", Light: "#9ca3af"} // gray
	ColorAccent  = lipgloss.AdaptiveColor{Dark: "#a78bfa", Light: "#7c3aed"} // identities and IDs
	ColorURL     = lipgloss.AdaptiveColor{Dark: "#38bdf8", Light: "#0284c7"} // cyan
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleID      = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleURL     = lipgloss.NewStyle().Foreground(ColorURL)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "→"

	swatchBlock = "██"
)

func printStatus(w io.Writer, icon string, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

// PrintSuccess prints a success message with a green checkmark.
func PrintSuccess(format string, args ...any) {
	printStatus(os.Stdout, StyleSuccess.Render(IconSuccess), format, args...)
}

// PrintError prints an error message with a red X to stderr.
func PrintError(format string, args ...any) {
	printStatus(os.Stderr, StyleError.Render(IconError), format, args...)
}

// PrintInfo prints an info message with a muted arrow.
func PrintInfo(format string, args ...any) {
	printStatus(os.Stdout, StyleMuted.Render(IconInfo), format, args...)
}

// RenderID renders a contributor, member or memory ID in accent color.
func RenderID(id string) string {
	return StyleID.Render(id)
}

func RenderURL(url string) string {
	return StyleURL.Render(url)
}

func RenderMuted(text string) string {
	return StyleMuted.Render(text)
}

func RenderBold(text string) string {
	return StyleBold.Render(text)
}

// ColorSwatch renders a small block in the given hex color. Unassigned
// colors render as a muted block.
func ColorSwatch(hexColor string) string {
	if hexColor == "" {
		return StyleMuted.Render(swatchBlock)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render(swatchBlock)
}

// RenderColor renders a swatch followed by the hex value in that color.
func RenderColor(hexColor string) string {
	if hexColor == "" {
		return ColorSwatch("") + " " + StyleMuted.Render("none")
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return ColorSwatch(hexColor) + " " + style.Render(hexColor)
}

// RenderSeverity returns the icon and bracketed code for a color issue.
func RenderSeverity(issue service.Issue) (string, string) {
	style, icon := StyleWarning, IconWarning
	if issue.Severity == service.SeverityError {
		style, icon = StyleError, IconError
	}
	return style.Render(icon), style.Render(fmt.Sprintf("[%s]", issue.Code))
}

// LabelValue formats a label-value pair with right-aligned label.
func LabelValue(label, value string, labelWidth int) string {
	labelStyle := lipgloss.NewStyle().
		Width(labelWidth).
		Align(lipgloss.Right).
		Foreground(ColorMuted)
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), value)
}
