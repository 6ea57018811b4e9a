package gateway

import (
	"time"

	"github.com/deskhand/deskhand/internal/ticket"
)

// Wire DTOs for the helpdesk API. The payloads are loosely typed on the
// wire; they are decoded into these structs and converted to domain types
// here at the boundary, so nothing untyped travels further in.

type localizedName struct {
	Name string `json:"name"`
}

func (l *localizedName) value() string {
	if l == nil {
		return ""
	}
	return l.Name
}

type userRefDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type entityRefDTO struct {
	Name  string `json:"name"`
	Name2 string `json:"name2"`
}

type memberDTO struct {
	RoleID int           `json:"roleId"`
	Anon   bool          `json:"anon"`
	User   *userRefDTO   `json:"user"`
	Entity *entityRefDTO `json:"entity"`
	Name   string        `json:"name"`
}

type textDTO struct {
	Creator   string `json:"creator"`
	CreatedAt string `json:"createdAt"`
	Text      string `json:"text"`
}

type linkDTO struct {
	Type       string `json:"type"`
	FromEactID int64  `json:"fromEactId"`
	ToEactID   int64  `json:"toEactId"`
}

type attachmentDTO struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type caseDTO struct {
	SeqNo     int            `json:"seqNo"`
	EactID    int64          `json:"eactId"`
	Subject   string         `json:"subject"`
	Status    *localizedName `json:"status"`
	Priority  *localizedName `json:"priority"`
	Category  *localizedName `json:"category"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	Members   []memberDTO    `json:"members"`
	Texts     []textDTO      `json:"texts"`
	Links     []linkDTO      `json:"links"`
}

type activityDTO struct {
	EactID      int64           `json:"eactId"`
	Type        int             `json:"type"`
	Direction   int             `json:"direction"`
	CreatedAt   string          `json:"createdAt"`
	Subject     string          `json:"subject"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	SenderName  string          `json:"senderName"`
	CallFrom    string          `json:"callFrom"`
	CallTo      string          `json:"callTo"`
	CallStart   string          `json:"callStart"`
	CallEnd     string          `json:"callEnd"`
	Recordings  int             `json:"recordings"`
	Description string          `json:"description"`
	Members     []memberDTO     `json:"members"`
	Attachments []attachmentDTO `json:"attachments"`
}

// parseTime decodes an API timestamp. Missing or unparseable values map to
// the zero time, which sorts before every real timestamp.
func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d caseDTO) toDomain() ticket.Ticket {
	t := ticket.Ticket{
		SeqNo:     d.SeqNo,
		EactID:    d.EactID,
		Subject:   d.Subject,
		Status:    d.Status.value(),
		Priority:  d.Priority.value(),
		Category:  d.Category.value(),
		CreatedAt: parseTime(d.CreatedAt),
		UpdatedAt: parseTime(d.UpdatedAt),
	}
	for _, m := range d.Members {
		t.Members = append(t.Members, m.toDomain())
	}
	for _, txt := range d.Texts {
		t.Comments = append(t.Comments, ticket.Comment{
			Author:    txt.Creator,
			CreatedAt: parseTime(txt.CreatedAt),
			Text:      txt.Text,
		})
	}
	for _, l := range d.Links {
		t.Links = append(t.Links, ticket.Link{
			Type:       ticket.LinkType(l.Type),
			FromEactID: l.FromEactID,
			ToEactID:   l.ToEactID,
		})
	}
	return t
}

func (d memberDTO) toDomain() ticket.Member {
	m := ticket.Member{
		RoleID: d.RoleID,
		Anon:   d.Anon,
		Name:   d.Name,
	}
	if d.User != nil {
		m.FirstName = d.User.FirstName
		m.LastName = d.User.LastName
	}
	if d.Entity != nil {
		m.EntityName = d.Entity.Name
		m.EntityExtra = d.Entity.Name2
	}
	return m
}

func (d activityDTO) toDomain() ticket.Activity {
	a := ticket.Activity{
		EactID:      d.EactID,
		Type:        ticket.ActivityType(d.Type),
		Direction:   parseDirection(d.Direction),
		CreatedAt:   parseTime(d.CreatedAt),
		Subject:     d.Subject,
		From:        d.From,
		To:          d.To,
		SenderName:  d.SenderName,
		CallFrom:    d.CallFrom,
		CallTo:      d.CallTo,
		CallStart:   parseTime(d.CallStart),
		CallEnd:     parseTime(d.CallEnd),
		Recordings:  d.Recordings,
		Description: d.Description,
	}
	for _, m := range d.Members {
		a.Members = append(a.Members, m.toDomain())
	}
	for _, f := range d.Attachments {
		a.Attachments = append(a.Attachments, ticket.Attachment{
			ID:   f.ID,
			Type: f.Type,
			Name: f.Name,
		})
	}
	return a
}

func parseDirection(code int) ticket.Direction {
	switch code {
	case 1:
		return ticket.DirectionOutbound
	case 2:
		return ticket.DirectionInbound
	default:
		return ticket.DirectionNone
	}
}
