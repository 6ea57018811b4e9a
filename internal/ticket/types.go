// Package ticket holds the helpdesk domain model and the activity
// aggregation pipeline that builds a ticket's communication history.
package ticket

import "time"

// ActivityType is the communication event type code used by the remote API.
type ActivityType int

// Activity type codes. EmailConversation is a container for a mail thread
// and is never displayed itself; it is always expanded into its individual
// Email activities.
const (
	TypeChat ActivityType = iota + 1
	TypeCall
	TypeNote
	TypeEmail
	TypeFacebookChat
	TypeWeChat
	TypeSMS
	TypeScreenShare
	TypeInstagramChat
	TypeWhatsApp
	TypeEmailConversation
)

var activityTypeNames = map[ActivityType]string{
	TypeChat:              "Chat",
	TypeCall:              "Call",
	TypeNote:              "Note",
	TypeEmail:             "Email",
	TypeFacebookChat:      "Facebook Chat",
	TypeWeChat:            "WeChat",
	TypeSMS:               "SMS",
	TypeScreenShare:       "Screen Share",
	TypeInstagramChat:     "Instagram Chat",
	TypeWhatsApp:          "WhatsApp",
	TypeEmailConversation: "Email Conversation",
}

func (t ActivityType) String() string {
	if name, ok := activityTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Direction indicates whether a communication event was sent or received.
type Direction int

// Activity directions.
const (
	DirectionNone Direction = iota
	DirectionOutbound
	DirectionInbound
)

func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "outbound"
	case DirectionInbound:
		return "inbound"
	default:
		return ""
	}
}

// LinkType classifies an edge in the activity graph. Only Case links
// (activity attached to a ticket) and Conversation links (email belonging
// to a thread container) are consumed.
type LinkType string

// Link types.
const (
	LinkCase         LinkType = "Case"
	LinkConversation LinkType = "Conversation"
)

// LinkDirection selects which end of a link a search starts from.
type LinkDirection string

// Link search directions.
const (
	LinkFrom LinkDirection = "FROM"
	LinkTo   LinkDirection = "TO"
)

// Link is a typed directed edge between two activities (or between a ticket
// and an activity) in the underlying graph.
type Link struct {
	Type       LinkType
	FromEactID int64
	ToEactID   int64
}

// Member role identifiers as used by the remote API. Role id 0 together
// with anon=false marks the handling agent on an activity.
const (
	RoleAgent         = 0
	RoleAssignedUser  = 1
	RoleCaseFollower  = 2
	RoleContactPerson = 3
)

// Member is a participant on a ticket or activity. Anon marks external,
// non-employee participants.
type Member struct {
	RoleID int
	Anon   bool

	// Name parts of a linked internal user record.
	FirstName string
	LastName  string

	// Name parts of a linked external entity record.
	EntityName  string
	EntityExtra string

	// Raw fallback name when neither record is linked.
	Name string
}

// DisplayName resolves the member name from the linked user record, then
// the external entity record, then the raw name field.
func (m Member) DisplayName() string {
	if name := joinNames(m.FirstName, m.LastName); name != "" {
		return name
	}
	if name := joinNames(m.EntityName, m.EntityExtra); name != "" {
		return name
	}
	return m.Name
}

func joinNames(a, b string) string {
	switch {
	case a != "" && b != "":
		return a + " " + b
	case a != "":
		return a
	default:
		return b
	}
}

// Attachment is a file reference carried by an activity.
type Attachment struct {
	ID   int64
	Type string
	Name string
}

// Activity is a single communication event linked to a ticket. CreatedAt is
// the zero time when the API omitted or garbled the timestamp; zero sorts
// before every real timestamp.
type Activity struct {
	EactID    int64
	Type      ActivityType
	Direction Direction
	CreatedAt time.Time
	Members   []Member

	// Email fields. Body is filled during aggregation from the normalized
	// HTML content; it stays empty when the content fetch fails.
	From       string
	To         string
	Subject    string
	SenderName string
	Body       string

	// Call fields.
	CallFrom   string
	CallTo     string
	CallStart  time.Time
	CallEnd    time.Time
	Recordings int

	// Free-text description for generic activity types.
	Description string

	Attachments []Attachment
}

// Comment is a free-text note attached directly to a ticket, outside the
// activity/link graph.
type Comment struct {
	Author    string
	CreatedAt time.Time
	Text      string
}

// Ticket is a support case. EactID is the ticket's own activity identifier,
// the stable join key into the link graph.
type Ticket struct {
	SeqNo    int
	EactID   int64
	Subject  string
	Status   string
	Priority string
	Category string

	CreatedAt time.Time
	UpdatedAt time.Time

	Members  []Member
	Comments []Comment
	Links    []Link
}
