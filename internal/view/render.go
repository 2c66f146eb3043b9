// Package view renders tracker state as plain text for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"

	"jobmate/tracker/internal/application"
	"jobmate/tracker/internal/tracker"
)

// Render writes the status line and the application list.
func Render(w io.Writer, st tracker.State) error {
	var b strings.Builder

	if st.Saving {
		b.WriteString("saving...\n")
	}
	if msg := st.ErrorMessage(); msg != "" {
		fmt.Fprintf(&b, "error: %s\n", msg)
	}

	b.WriteString("applications\n")
	switch {
	case len(st.Records) > 0:
		for i, r := range st.Records {
			if i > 0 {
				b.WriteString("\n")
			}
			writeRecord(&b, r)
		}
	case !st.Loaded && st.Loading:
		b.WriteString("loading...\n")
	default:
		b.WriteString("no applications yet\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRecord(b *strings.Builder, r application.Record) {
	fmt.Fprintf(b, "[%s] %s — %s\n", r.ID, r.Company, r.Role)

	b.WriteString("  ")
	b.WriteString(r.Status.Label())
	if r.Location != "" {
		b.WriteString(" · ")
		b.WriteString(r.Location)
	}
	b.WriteString("\n")

	if r.AppliedDate != nil {
		fmt.Fprintf(b, "  applied: %s\n", *r.AppliedDate)
	}
	if r.NextFollowUp != nil {
		fmt.Fprintf(b, "  follow up: %s\n", *r.NextFollowUp)
	}
	if r.Link != "" {
		fmt.Fprintf(b, "  link: %s\n", r.Link)
	}
	if r.Notes != "" {
		// Notes keep their own whitespace; only a trailing newline is added.
		b.WriteString(r.Notes)
		if !strings.HasSuffix(r.Notes, "\n") {
			b.WriteString("\n")
		}
	}
}
