package render

import (
	"time"

	"github.com/deskhand/deskhand/internal/ticket"
)

// JSON view structs. Field names follow the remote API spelling so that
// --json output lines up with what the raw API returns, plus the added
// emailBody field carrying the normalized body of email activities.

// TicketJSON is the JSON view of a ticket.
type TicketJSON struct {
	SeqNo     int           `json:"seqNo"`
	EactID    int64         `json:"eactId"`
	Subject   string        `json:"subject"`
	Status    string        `json:"status,omitempty"`
	Priority  string        `json:"priority,omitempty"`
	Category  string        `json:"category,omitempty"`
	CreatedAt *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
	Members   []MemberJSON  `json:"members,omitempty"`
	Comments  []CommentJSON `json:"comments,omitempty"`
}

// MemberJSON is the JSON view of a participant.
type MemberJSON struct {
	Name   string `json:"name"`
	RoleID int    `json:"roleId"`
	Anon   bool   `json:"anon,omitempty"`
}

// CommentJSON is the JSON view of a ticket comment.
type CommentJSON struct {
	Author    string     `json:"author"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Text      string     `json:"text"`
}

// ActivityJSON is the JSON view of an aggregated activity.
type ActivityJSON struct {
	EactID      int64        `json:"eactId"`
	Type        string       `json:"type"`
	Direction   string       `json:"direction,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	From        string       `json:"from,omitempty"`
	To          string       `json:"to,omitempty"`
	SenderName  string       `json:"senderName,omitempty"`
	CallFrom    string       `json:"callFrom,omitempty"`
	CallTo      string       `json:"callTo,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	Recordings  int          `json:"recordings,omitempty"`
	Description string       `json:"description,omitempty"`
	Members     []MemberJSON `json:"members,omitempty"`
	EmailBody   string       `json:"emailBody,omitempty"`
}

// HistoryJSON is the JSON view of an aggregated ticket history.
type HistoryJSON struct {
	Activities []ActivityJSON `json:"activities"`
	Comments   []CommentJSON  `json:"comments"`
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// NewTicketJSON builds the JSON view of a ticket.
func NewTicketJSON(t *ticket.Ticket) TicketJSON {
	out := TicketJSON{
		SeqNo:     t.SeqNo,
		EactID:    t.EactID,
		Subject:   t.Subject,
		Status:    t.Status,
		Priority:  t.Priority,
		Category:  t.Category,
		CreatedAt: optTime(t.CreatedAt),
		UpdatedAt: optTime(t.UpdatedAt),
	}
	for _, m := range t.Members {
		out.Members = append(out.Members, newMemberJSON(m))
	}
	for _, c := range t.Comments {
		out.Comments = append(out.Comments, newCommentJSON(c))
	}
	return out
}

// NewTicketListJSON builds the JSON view of a ticket list.
func NewTicketListJSON(tickets []ticket.Ticket) []TicketJSON {
	out := make([]TicketJSON, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketJSON(&tickets[i]))
	}
	return out
}

// NewHistoryJSON builds the JSON view of an aggregated history.
func NewHistoryJSON(hist *ticket.History) HistoryJSON {
	out := HistoryJSON{
		Activities: make([]ActivityJSON, 0, len(hist.Activities)),
		Comments:   make([]CommentJSON, 0, len(hist.Comments)),
	}
	for i := range hist.Activities {
		out.Activities = append(out.Activities, newActivityJSON(&hist.Activities[i]))
	}
	for _, c := range hist.Comments {
		out.Comments = append(out.Comments, newCommentJSON(c))
	}
	return out
}

func newMemberJSON(m ticket.Member) MemberJSON {
	return MemberJSON{
		Name:   m.DisplayName(),
		RoleID: m.RoleID,
		Anon:   m.Anon,
	}
}

func newCommentJSON(c ticket.Comment) CommentJSON {
	return CommentJSON{
		Author:    c.Author,
		CreatedAt: optTime(c.CreatedAt),
		Text:      c.Text,
	}
}

func newActivityJSON(a *ticket.Activity) ActivityJSON {
	out := ActivityJSON{
		EactID:      a.EactID,
		Type:        a.Type.String(),
		Direction:   a.Direction.String(),
		CreatedAt:   optTime(a.CreatedAt),
		Subject:     a.Subject,
		From:        a.From,
		To:          a.To,
		SenderName:  a.SenderName,
		CallFrom:    a.CallFrom,
		CallTo:      a.CallTo,
		Recordings:  a.Recordings,
		Description: a.Description,
	}
	if a.Type == ticket.TypeCall {
		out.Duration = a.Duration()
	}
	if a.Type == ticket.TypeEmail {
		out.EmailBody = a.Body
	}
	for _, m := range a.Members {
		out.Members = append(out.Members, newMemberJSON(m))
	}
	return out
}
