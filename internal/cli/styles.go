package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/charmbracelet/lipgloss"
)

var (
	errorColor   = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	warningColor = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"}

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)
)

// PrintError writes err to w in the error style, followed by a hint drawn
// from the error details when its code has one
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, ErrorStyle.Render("Error: "+err.Error()))
	if hint := errorHint(err); hint != "" {
		_, _ = fmt.Fprintln(w, WarningStyle.Render(hint))
	}
}

func errorHint(err error) string {
	details := errors.GetErrorDetails(err)

	switch errors.GetErrorCode(err) {
	case errors.ErrCommandFailed:
		stderr, _ := details["stderr"].(string)
		if stderr == "" {
			return ""
		}
		hint := "  " + strings.ReplaceAll(stderr, "\n", "\n  ")
		if code, ok := details["exit_code"].(int); ok {
			hint = fmt.Sprintf("  exit status %d\n%s", code, hint)
		}
		return hint
	case errors.ErrBackendNotFound:
		if available, ok := details["available"].([]string); ok && len(available) > 0 {
			return "  available backends: " + strings.Join(available, ", ")
		}
	}
	return ""
}
