// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskdeck/internal/service"
)

// FormatTask formats one task as a two-line entry:
//
//	{ID:>4}  {TITLE}  ({AGE})
//	      {DESCRIPTION}
func FormatTask(w io.Writer, t service.Task, now time.Time) {
	fmt.Fprintf(w, "%4d  %s  (%s)\n", t.ID, normalizeText(t.Title), Age(now, t.CreatedAt))
	if desc := normalizeText(t.Description); desc != "" {
		fmt.Fprintf(w, "      %s\n", desc)
	}
}

// FormatInsertEvent formats a task pushed by the change feed.
func FormatInsertEvent(w io.Writer, t service.Task) {
	fmt.Fprintf(w, "new %4d  %s\n", t.ID, normalizeText(t.Title))
}

// Age renders how long ago ts was, relative to now. Timestamps older than
// a month fall back to the date.
func Age(now, ts time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return ts.Format("2006-01-02")
	}
}

// normalizeText flattens newlines so one field stays on one line.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
