package ticket

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/deskhand/deskhand/internal/htmltext"
)

// FetchOptions selects optional sub-records on a ticket fetch.
type FetchOptions struct {
	IncludeComments bool
	IncludeMembers  bool
}

// Gateway is the narrow API surface the aggregator needs. The gateway maps
// a missing ticket to *NotFoundError and any other non-success response to
// *UpstreamError.
type Gateway interface {
	FetchTicket(ctx context.Context, seqNo int, opts FetchOptions) (*Ticket, error)
	SearchTicketsByActivityID(ctx context.Context, eactIDs []int64) ([]Ticket, error)
	SearchActivitiesByIDs(ctx context.Context, eactIDs []int64, includeMembers bool) ([]Activity, error)
	SearchActivitiesByLink(ctx context.Context, eactIDs []int64, linkType LinkType, dir LinkDirection, includeMembers bool) ([]Activity, error)
	FetchEmailBody(ctx context.Context, eactID int64) (string, error)
}

// History is the aggregated communication record of one ticket: activities
// sorted ascending by creation time, and the ticket's comments in the order
// the API returned them.
type History struct {
	Activities []Activity
	Comments   []Comment
}

// Aggregator stitches ticket, link, and activity records from several API
// calls into a single chronological history.
type Aggregator struct {
	gw  Gateway
	log *slog.Logger
}

// NewAggregator returns an aggregator using gw for all fetches.
func NewAggregator(log *slog.Logger, gw Gateway) *Aggregator {
	return &Aggregator{
		gw:  gw,
		log: log.With(slog.String("component", "aggregator")),
	}
}

// History builds the communication history for the ticket with the given
// sequence number. Every fetch in the chain is mandatory and aborts the
// aggregation on failure; only the per-email body fetch is tolerant, an
// email whose content cannot be loaded keeps an empty body.
func (a *Aggregator) History(ctx context.Context, seqNo int) (*History, error) {
	tkt, err := a.gw.FetchTicket(ctx, seqNo, FetchOptions{IncludeComments: true})
	if err != nil {
		return nil, err
	}
	if tkt == nil {
		return nil, &NotFoundError{SeqNo: seqNo}
	}

	linked, err := a.linkedActivityIDs(ctx, tkt)
	if err != nil {
		return nil, err
	}

	var activities []Activity
	if len(linked) > 0 {
		batch, err := a.gw.SearchActivitiesByIDs(ctx, linked, true)
		if err != nil {
			return nil, err
		}
		activities, err = a.expandConversations(ctx, batch)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.Before(activities[j].CreatedAt)
	})

	a.attachEmailBodies(ctx, activities)

	return &History{
		Activities: activities,
		Comments:   tkt.Comments,
	}, nil
}

// linkedActivityIDs fetches the ticket's full record and collects the
// source ids of all Case links pointing at the ticket's own eactId.
func (a *Aggregator) linkedActivityIDs(ctx context.Context, tkt *Ticket) ([]int64, error) {
	full, err := a.gw.SearchTicketsByActivityID(ctx, []int64{tkt.EactID})
	if err != nil {
		return nil, err
	}

	var ids []int64
	seen := make(map[int64]bool)
	for _, cand := range full {
		if cand.EactID != tkt.EactID {
			continue
		}
		for _, link := range cand.Links {
			if link.Type == LinkCase && link.ToEactID == tkt.EactID && !seen[link.FromEactID] {
				seen[link.FromEactID] = true
				ids = append(ids, link.FromEactID)
			}
		}
	}
	return ids, nil
}

// expandConversations replaces every Email Conversation container with the
// individual emails linked to it. Expansion is one level deep; the API does
// not nest containers.
func (a *Aggregator) expandConversations(ctx context.Context, batch []Activity) ([]Activity, error) {
	out := make([]Activity, 0, len(batch))
	for _, act := range batch {
		if act.Type != TypeEmailConversation {
			out = append(out, act)
			continue
		}
		emails, err := a.gw.SearchActivitiesByLink(ctx, []int64{act.EactID}, LinkConversation, LinkFrom, true)
		if err != nil {
			return nil, err
		}
		out = append(out, emails...)
	}
	return out, nil
}

// attachEmailBodies fetches and normalizes the HTML body of every email in
// the list. The fetches are independent and run concurrently, each writing
// its own slot; a failed fetch leaves that email's body empty.
func (a *Aggregator) attachEmailBodies(ctx context.Context, activities []Activity) {
	var wg sync.WaitGroup
	for i := range activities {
		if activities[i].Type != TypeEmail {
			continue
		}
		wg.Add(1)
		go func(slot *Activity) {
			defer wg.Done()
			html, err := a.gw.FetchEmailBody(ctx, slot.EactID)
			if err != nil {
				a.log.Debug("email body unavailable",
					slog.Int64("eact_id", slot.EactID),
					slog.Any("error", err))
				return
			}
			slot.Body = htmltext.Normalize(html)
		}(&activities[i])
	}
	wg.Wait()
}
