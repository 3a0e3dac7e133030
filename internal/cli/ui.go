package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 palette shared by the printers, the history table and the
// review TUI.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// status line markers
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	markWarning = lipgloss.NewStyle().Foreground(colorYellow).Render("!")
	markInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
)

func printMarked(mark, format string, args ...any) {
	fmt.Println(mark + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printMarked(markSuccess, format, args...) }
func printError(format string, args ...any)   { printMarked(markError, format, args...) }
func printInfo(format string, args ...any)    { printMarked(markInfo, format, args...) }

func printWarning(format string, args ...any) {
	printMarked(markWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printOutcome prints one comparison result line.
func printOutcome(outcome, expected string, distance, maxDistance float64) {
	switch outcome {
	case "pass":
		printSuccess("%s %s", StyleValue.Render(expected), StyleDim.Render(fmt.Sprintf("distance %.0f <= %.0f", distance, maxDistance)))
	case "missing-reference":
		printWarning("%s does not exist yet", expected)
	default:
		printError("%s %s", StyleValue.Render(expected), StyleWarning.Render(fmt.Sprintf("distance %.0f > %.0f", distance, maxDistance)))
	}
}

// printStats prints "sample 4 · grid 50x50 · cached" under a result.
func printStats(sampleSize, gridSize int, cached bool) {
	state := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		state = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	parts := []string{
		StyleDim.Render(fmt.Sprintf("sample %d", sampleSize)),
		StyleDim.Render(fmt.Sprintf("grid %dx%d", gridSize, gridSize)),
		state,
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
