// Package render turns aggregated ticket data into terminal output: styled
// text reports, tables, or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/deskhand/deskhand/internal/ticket"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// TicketTable writes one line per ticket: seqNo, subject, status, priority,
// last update.
func TicketTable(w io.Writer, tickets []ticket.Ticket) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBJECT\tSTATUS\tPRIORITY\tUPDATED")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.SeqNo, t.Subject, t.Status, t.Priority, formatTime(t.UpdatedAt))
	}
	tw.Flush()
}

// TicketDetail writes a full single-ticket view with members and comments.
func TicketDetail(w io.Writer, t *ticket.Ticket) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("#%d %s", t.SeqNo, t.Subject)))
	fmt.Fprintf(w, "Status:   %s\n", t.Status)
	fmt.Fprintf(w, "Priority: %s\n", t.Priority)
	if t.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", t.Category)
	}
	fmt.Fprintf(w, "Created:  %s\n", formatTime(t.CreatedAt))
	fmt.Fprintf(w, "Updated:  %s\n", formatTime(t.UpdatedAt))

	if len(t.Members) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render("Members:"))
		for _, m := range t.Members {
			fmt.Fprintf(w, "  %s%s\n", m.DisplayName(), memberTag(m))
		}
	}

	if len(t.Comments) > 0 {
		fmt.Fprintln(w)
		writeComments(w, t.Comments)
	}
}

func memberTag(m ticket.Member) string {
	if m.Anon {
		return dimStyle.Render(" (contact)")
	}
	return ""
}

// ActivityReport writes the aggregated history: an "Activities:" section
// with one block per activity rendered by type, then a "Comments:" section.
func ActivityReport(w io.Writer, hist *ticket.History) {
	fmt.Fprintln(w, headingStyle.Render("Activities:"))
	if len(hist.Activities) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  none"))
	}
	for i := range hist.Activities {
		writeActivity(w, &hist.Activities[i])
	}

	fmt.Fprintln(w)
	writeComments(w, hist.Comments)
}

func writeComments(w io.Writer, comments []ticket.Comment) {
	fmt.Fprintln(w, headingStyle.Render("Comments:"))
	if len(comments) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  none"))
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "  %s %s\n", titleStyle.Render(c.Author), dimStyle.Render(formatTime(c.CreatedAt)))
		writeIndented(w, c.Text)
	}
}

func writeActivity(w io.Writer, a *ticket.Activity) {
	header := a.Type.String()
	if dir := a.Direction.String(); dir != "" {
		header += " (" + dir + ")"
	}
	fmt.Fprintf(w, "  %s %s\n", titleStyle.Render(header), dimStyle.Render(formatTime(a.CreatedAt)))

	switch a.Type {
	case ticket.TypeEmail:
		writeEmail(w, a)
	case ticket.TypeCall:
		writeCall(w, a)
	default:
		writeGeneric(w, a)
	}

	for _, f := range a.Attachments {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("attachment %d", f.ID)
		}
		fmt.Fprintf(w, "    %s\n", dimStyle.Render("[file] "+name))
	}
}

func writeEmail(w io.Writer, a *ticket.Activity) {
	if a.From != "" {
		fmt.Fprintf(w, "    From:    %s\n", a.From)
	}
	if a.To != "" {
		fmt.Fprintf(w, "    To:      %s\n", a.To)
	}
	if a.SenderName != "" {
		fmt.Fprintf(w, "    Sender:  %s\n", a.SenderName)
	}
	if a.Subject != "" {
		fmt.Fprintf(w, "    Subject: %s\n", a.Subject)
	}
	if a.Body != "" {
		writeIndented(w, a.Body)
	}
}

func writeCall(w io.Writer, a *ticket.Activity) {
	if agent := a.AgentMember(); agent != nil {
		fmt.Fprintf(w, "    Agent:    %s\n", agent.DisplayName())
	}
	if contact := a.ContactMember(); contact != nil {
		fmt.Fprintf(w, "    Contact:  %s\n", contact.DisplayName())
	}
	if a.CallFrom != "" || a.CallTo != "" {
		fmt.Fprintf(w, "    Number:   %s -> %s\n", a.CallFrom, a.CallTo)
	}
	if d := a.Duration(); d != "" {
		fmt.Fprintf(w, "    Duration: %s\n", d)
	}
	if a.Recordings > 0 {
		fmt.Fprintf(w, "    Recordings: %d\n", a.Recordings)
	}
}

func writeGeneric(w io.Writer, a *ticket.Activity) {
	if contact := a.ContactMember(); contact != nil {
		fmt.Fprintf(w, "    Contact: %s\n", contact.DisplayName())
	}
	if a.Description != "" {
		writeIndented(w, a.Description)
	}
}

func writeIndented(w io.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
