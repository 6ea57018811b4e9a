// Package gateway implements the HTTP client for the helpdesk REST API:
// session bootstrap against the login portal and authenticated calls
// against the session-scoped service endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deskhand/deskhand/internal/ticket"
)

// DefaultTimeout bounds every single API call.
const DefaultTimeout = 30 * time.Second

// Session is the result of a login: an opaque bearer token and the service
// endpoint assigned to this session.
type Session struct {
	Token      string `json:"token"`
	ServiceURL string `json:"serviceUrl"`
}

// Client talks to the helpdesk API. It implements ticket.Gateway plus the
// simple CRUD calls the CLI commands use.
type Client struct {
	portalURL  string
	serviceURL string
	token      string
	log        *slog.Logger
	http       *http.Client
}

// New builds a client for the given login portal. A session must be
// attached with Login or UseSession before service calls are made.
func New(log *slog.Logger, portalURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		portalURL: strings.TrimRight(strings.TrimSpace(portalURL), "/"),
		log:       log.With(slog.String("component", "gateway")),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// UseSession attaches a previously resolved session.
func (c *Client) UseSession(serviceURL, token string) {
	c.serviceURL = strings.TrimRight(strings.TrimSpace(serviceURL), "/")
	c.token = token
}

// Login authenticates against the portal and resolves the session-scoped
// service endpoint. The session is attached to the client and returned so
// the caller can persist it.
func (c *Client) Login(ctx context.Context, user, password string) (Session, error) {
	payload := struct {
		User     string `json:"user"`
		Password string `json:"password"`
	}{User: user, Password: password}

	var sess Session
	status, body, err := c.do(ctx, http.MethodPost, c.portalURL+"/session/login", payload)
	if err != nil {
		return Session{}, err
	}
	if status < 200 || status >= 300 {
		return Session{}, upstream(status, body)
	}
	if err := json.Unmarshal(body, &sess); err != nil {
		return Session{}, fmt.Errorf("decode login response: %w", err)
	}
	if strings.TrimSpace(sess.Token) == "" || strings.TrimSpace(sess.ServiceURL) == "" {
		return Session{}, fmt.Errorf("login succeeded but session is incomplete")
	}
	c.UseSession(sess.ServiceURL, sess.Token)
	return sess, nil
}

// FetchTicket loads one ticket by sequence number. A 404 maps to
// *ticket.NotFoundError.
func (c *Client) FetchTicket(ctx context.Context, seqNo int, opts ticket.FetchOptions) (*ticket.Ticket, error) {
	include := make([]string, 0, 2)
	if opts.IncludeComments {
		include = append(include, "texts")
	}
	if opts.IncludeMembers {
		include = append(include, "members")
	}
	u := fmt.Sprintf("%s/case/%d", c.serviceURL, seqNo)
	if len(include) > 0 {
		u += "?include=" + strings.Join(include, ",")
	}

	status, body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &ticket.NotFoundError{SeqNo: seqNo}
	}
	if status < 200 || status >= 300 {
		return nil, upstream(status, body)
	}

	var dto caseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("decode case %d: %w", seqNo, err)
	}
	t := dto.toDomain()
	return &t, nil
}

// SearchTicketsByActivityID looks up the full case records, including the
// link graph, for the given activity identifiers.
func (c *Client) SearchTicketsByActivityID(ctx context.Context, eactIDs []int64) ([]ticket.Ticket, error) {
	payload := struct {
		EactIDs []int64 `json:"eactIds"`
	}{EactIDs: eactIDs}

	var resp struct {
		Cases []caseDTO `json:"cases"`
	}
	if err := c.postJSON(ctx, c.serviceURL+"/case/search", payload, &resp); err != nil {
		return nil, err
	}
	out := make([]ticket.Ticket, 0, len(resp.Cases))
	for _, dto := range resp.Cases {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// SearchActivitiesByIDs batch-loads activities by identifier.
func (c *Client) SearchActivitiesByIDs(ctx context.Context, eactIDs []int64, includeMembers bool) ([]ticket.Activity, error) {
	payload := struct {
		EactIDs        []int64 `json:"eactIds"`
		IncludeMembers bool    `json:"includeMembers"`
	}{EactIDs: eactIDs, IncludeMembers: includeMembers}
	return c.searchActivities(ctx, payload)
}

// SearchActivitiesByLink loads the activities connected to the given ones
// by links of the given type and direction.
func (c *Client) SearchActivitiesByLink(ctx context.Context, eactIDs []int64, linkType ticket.LinkType, dir ticket.LinkDirection, includeMembers bool) ([]ticket.Activity, error) {
	payload := struct {
		LinkedTo       []int64 `json:"linkedTo"`
		LinkType       string  `json:"linkType"`
		Direction      string  `json:"direction"`
		IncludeMembers bool    `json:"includeMembers"`
	}{LinkedTo: eactIDs, LinkType: string(linkType), Direction: string(dir), IncludeMembers: includeMembers}
	return c.searchActivities(ctx, payload)
}

func (c *Client) searchActivities(ctx context.Context, payload any) ([]ticket.Activity, error) {
	var resp struct {
		Activities []activityDTO `json:"activities"`
	}
	if err := c.postJSON(ctx, c.serviceURL+"/activity/search", payload, &resp); err != nil {
		return nil, err
	}
	out := make([]ticket.Activity, 0, len(resp.Activities))
	for _, dto := range resp.Activities {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// FetchEmailBody loads the raw HTML body of an email activity.
func (c *Client) FetchEmailBody(ctx context.Context, eactID int64) (string, error) {
	u := fmt.Sprintf("%s/activity/%d/content", c.serviceURL, eactID)
	status, body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", upstream(status, body)
	}
	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode content %d: %w", eactID, err)
	}
	return resp.HTML, nil
}

// ListTickets fetches tickets, optionally filtered by status, newest first.
func (c *Client) ListTickets(ctx context.Context, status string, limit int) ([]ticket.Ticket, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := c.serviceURL + "/case"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	code, body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if code < 200 || code >= 300 {
		return nil, upstream(code, body)
	}
	var resp struct {
		Cases []caseDTO `json:"cases"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode case list: %w", err)
	}
	out := make([]ticket.Ticket, 0, len(resp.Cases))
	for _, dto := range resp.Cases {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// TicketDraft is the payload for creating a ticket.
type TicketDraft struct {
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Category    string `json:"category,omitempty"`
}

// TicketPatch is the payload for updating a ticket; nil fields are left
// untouched.
type TicketPatch struct {
	Subject  *string `json:"subject,omitempty"`
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// CreateTicket creates a new ticket and returns the stored record.
func (c *Client) CreateTicket(ctx context.Context, draft TicketDraft) (*ticket.Ticket, error) {
	var dto caseDTO
	if err := c.postJSON(ctx, c.serviceURL+"/case", draft, &dto); err != nil {
		return nil, err
	}
	t := dto.toDomain()
	return &t, nil
}

// UpdateTicket applies a partial update to a ticket. A 404 maps to
// *ticket.NotFoundError.
func (c *Client) UpdateTicket(ctx context.Context, seqNo int, patch TicketPatch) (*ticket.Ticket, error) {
	u := fmt.Sprintf("%s/case/%d", c.serviceURL, seqNo)
	status, body, err := c.do(ctx, http.MethodPatch, u, patch)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &ticket.NotFoundError{SeqNo: seqNo}
	}
	if status < 200 || status >= 300 {
		return nil, upstream(status, body)
	}
	var dto caseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("decode case %d: %w", seqNo, err)
	}
	t := dto.toDomain()
	return &t, nil
}

// AddComment appends a free-text comment to a ticket. A 404 maps to
// *ticket.NotFoundError.
func (c *Client) AddComment(ctx context.Context, seqNo int, text string) error {
	payload := struct {
		Text string `json:"text"`
	}{Text: text}
	u := fmt.Sprintf("%s/case/%d/text", c.serviceURL, seqNo)
	status, body, err := c.do(ctx, http.MethodPost, u, payload)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return &ticket.NotFoundError{SeqNo: seqNo}
	}
	if status < 200 || status >= 300 {
		return upstream(status, body)
	}
	return nil
}

// postJSON issues a POST and decodes a 2xx response body into out.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	status, body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return upstream(status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do performs one authenticated request and returns status and raw body.
// Transport failures come back as *ticket.UpstreamError.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &ticket.UpstreamError{Message: err.Error()}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("close response body failed", slog.Any("error", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &ticket.UpstreamError{Message: err.Error()}
	}
	return resp.StatusCode, body, nil
}

func upstream(status int, body []byte) error {
	return &ticket.UpstreamError{
		Status:  status,
		Message: strings.TrimSpace(string(body)),
	}
}
