// Package display holds the terminal colors and names used by the CLI.
package display

import (
	gkcolor "github.com/gookit/color"
)

// Tool is the command name.
const Tool = "hyref"

// Green highlights descriptive text.
func Green(s string) string {
	return gkcolor.FgGreen.Sprint(s)
}

// Grey marks secondary detail such as coordinates and paths.
func Grey(s string) string {
	return gkcolor.RGB(138, 138, 138).Sprint(s)
}

// Greyf is the formatting form of Grey.
func Greyf(format string, args ...any) string {
	return gkcolor.RGB(138, 138, 138).Sprintf(format, args...)
}

// Gold marks empty-result notices.
func Gold(s string) string {
	return gkcolor.RGB(181, 181, 91).Sprint(s)
}

// LightBlue marks cell names and table headers.
func LightBlue(s string) string {
	return gkcolor.HiBlue.Sprint(s)
}

// Red marks errors and unresolved references.
func Red(s string) string {
	return gkcolor.FgRed.Sprint(s)
}

// Disable turns colors off, for piped output and tests.
func Disable() {
	gkcolor.Disable()
}
