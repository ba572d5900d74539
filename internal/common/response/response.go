package response

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

type Status int

const (
	StatusSuccess Status = iota
	StatusInfo
	StatusError
)

const (
	colorSuccess = "10" // green
	colorInfo    = "12" // blue
	colorError   = "9"  // red
)

// WriteResponse prints one status line. The renderer is bound to w, so
// colors are only emitted when w is a terminal.
func WriteResponse(w io.Writer, status Status, payload interface{}) {
	r := lipgloss.NewRenderer(w)

	var symbol, color string
	switch status {
	case StatusSuccess:
		symbol, color = "✔", colorSuccess
	case StatusInfo:
		symbol, color = "•", colorInfo
	default:
		symbol, color = "✖", colorError
	}

	var message string
	switch v := payload.(type) {
	case error:
		message = v.Error()
	case string:
		message = v
	default:
		message = fmt.Sprintf("%v", v)
	}

	mark := r.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(symbol)
	_, _ = fmt.Fprintf(w, "%s %s\n", mark, message)
}
