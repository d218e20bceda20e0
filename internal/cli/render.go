package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"taskmanager/internal/client"
	"taskmanager/internal/dto"

	"github.com/charmbracelet/lipgloss"
)

var (
	mutedColor   = lipgloss.Color("8")
	successColor = lipgloss.Color("10")
	errorColor   = lipgloss.Color("9")

	statusColors = map[string]lipgloss.Color{
		"pending":     lipgloss.Color("11"),
		"in-progress": lipgloss.Color("12"),
		"completed":   lipgloss.Color("10"),
	}
)

type renderer struct {
	w       io.Writer
	plain   bool
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
}

func newRenderer(w io.Writer, plain bool) *renderer {
	r := &renderer{w: w, plain: plain}
	if !plain {
		r.header = lipgloss.NewStyle().Bold(true).Underline(true)
		r.muted = lipgloss.NewStyle().Foreground(mutedColor)
		r.success = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	}
	return r
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

func (r *renderer) status(s string) string {
	c, ok := statusColors[s]
	if r.plain || !ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// Tasks prints one row per task in a fixed-width table.
func (r *renderer) Tasks(list []dto.TaskResponse) {
	if len(list) == 0 {
		fmt.Fprintln(r.w, r.style(r.muted, "No tasks found."))
		return
	}

	idW, titleW := len("ID"), len("TITLE")
	for _, t := range list {
		idW = max(idW, len(t.ID))
		titleW = max(titleW, lipgloss.Width(t.Title))
	}

	fmt.Fprintln(r.w, r.style(r.header, fmt.Sprintf("%-*s  %-*s  %-11s  %s", idW, "ID", titleW, "TITLE", "STATUS", "UPDATED")))
	for _, t := range list {
		fmt.Fprintf(r.w, "%-*s  %s  %s  %s\n",
			idW, t.ID,
			t.Title+strings.Repeat(" ", titleW-lipgloss.Width(t.Title)),
			r.status(t.Status)+strings.Repeat(" ", 11-len(t.Status)),
			r.style(r.muted, formatTime(t.UpdatedAt)),
		)
	}
	fmt.Fprintln(r.w, r.style(r.muted, fmt.Sprintf("%d task(s)", len(list))))
}

// Task prints a single task as labelled fields.
func (r *renderer) Task(t dto.TaskResponse) {
	label := func(s string) string { return r.style(r.muted, fmt.Sprintf("%-12s", s)) }
	fmt.Fprintln(r.w, label("ID")+t.ID)
	fmt.Fprintln(r.w, label("Title")+t.Title)
	if t.Description != "" {
		fmt.Fprintln(r.w, label("Description")+t.Description)
	}
	fmt.Fprintln(r.w, label("Status")+r.status(t.Status))
	fmt.Fprintln(r.w, label("Updated")+formatTime(t.UpdatedAt))
}

func (r *renderer) Success(msg string) {
	fmt.Fprintln(r.w, r.style(r.success, msg))
}

// Error renders err for stderr. The cause of a transport failure is shown
// after the message.
func Error(w io.Writer, err error, plain bool) {
	msg := "Error: " + err.Error()
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Err != nil {
		msg += " (" + apiErr.Err.Error() + ")"
	}
	if !plain {
		msg = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Render(msg)
	}
	fmt.Fprintln(w, msg)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
