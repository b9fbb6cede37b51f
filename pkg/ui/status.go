package ui

import (
	"github.com/pterm/pterm"
)

// Status of a package, group or step
type Status string

const (
	StatusSuccess Status = "success" // Installed or ran successfully
	StatusError   Status = "error"   // Install or command failed
	StatusQueue   Status = "queue"   // To be installed or run
	StatusSkipped Status = "skipped" // Left out of the run
	StatusIgnored Status = "ignored" // Excluded by the ignore file
)

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusSuccess:
		return pterm.NewStyle(pterm.FgGreen)
	case StatusError:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case StatusQueue:
		return pterm.NewStyle(pterm.FgYellow)
	case StatusSkipped:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// HeaderStyle is used for group names
var HeaderStyle = pterm.NewStyle(pterm.Bold)
