package ui

import (
	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// DisableColor turns styling off, e.g. for --no-color or when writing files.
func DisableColor() {
	color.NoColor = true
}

// TaskID styles a task identifier, highlighting it when it is critical.
func TaskID(id string, critical bool) string {
	if critical {
		return BoldRed(id)
	}
	return BoldMagenta(id)
}

// StatusIcon returns a colored icon for a batch file outcome.
func StatusIcon(status string) string {
	switch status {
	case "ok":
		return Green("✓")
	case "failed":
		return Red("✗")
	case "skipped":
		return Yellow("⊘")
	default:
		return Dim("◌")
	}
}
