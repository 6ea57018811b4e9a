package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhand/deskhand/internal/ticket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginResolvesSession(t *testing.T) {
	var gotUser, gotPassword string
	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/session/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var req struct {
			User     string `json:"user"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotUser, gotPassword = req.User, req.Password
		json.NewEncoder(w).Encode(Session{Token: "tok-1", ServiceURL: "https://svc.example.com/api/"})
	}))
	defer portal.Close()

	c := New(testLogger(), portal.URL, time.Second)
	sess, err := c.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "s3cret", gotPassword)
	assert.Equal(t, "tok-1", sess.Token)
	// Trailing slash on the service endpoint is normalized away.
	assert.Equal(t, "https://svc.example.com/api", c.serviceURL)
	assert.Equal(t, "tok-1", c.token)
}

func TestLoginRejectedCredentials(t *testing.T) {
	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer portal.Close()

	c := New(testLogger(), portal.URL, time.Second)
	_, err := c.Login(context.Background(), "alice", "wrong")

	var ue *ticket.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusUnauthorized, ue.Status)
	assert.Equal(t, "invalid credentials", ue.Message)
}

func TestFetchTicketDecodesCase(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/case/42", r.URL.Path)
		require.Equal(t, "texts,members", r.URL.Query().Get("include"))
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.Write([]byte(`{
			"seqNo": 42,
			"eactId": 1000,
			"subject": "Printer on fire",
			"status": {"name": "Open"},
			"priority": {"name": "High"},
			"createdAt": "2024-05-01T10:00:00Z",
			"members": [
				{"roleId": 1, "user": {"firstName": "Bob", "lastName": "Jones"}},
				{"roleId": 3, "anon": true, "entity": {"name": "Acme", "name2": "Corp"}}
			],
			"texts": [
				{"creator": "Alice Smith", "createdAt": "2024-05-01T11:00:00Z", "text": "Looking into this now"}
			],
			"links": [
				{"type": "Case", "fromEactId": 2000, "toEactId": 1000}
			]
		}`))
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL+"/api", "tok")

	got, err := c.FetchTicket(context.Background(), 42, ticket.FetchOptions{IncludeComments: true, IncludeMembers: true})
	require.NoError(t, err)

	assert.Equal(t, 42, got.SeqNo)
	assert.Equal(t, int64(1000), got.EactID)
	assert.Equal(t, "Open", got.Status)
	assert.Equal(t, "High", got.Priority)
	assert.Empty(t, got.Category)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "Bob Jones", got.Members[0].DisplayName())
	assert.Equal(t, "Acme Corp", got.Members[1].DisplayName())
	assert.True(t, got.Members[1].Anon)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Alice Smith", got.Comments[0].Author)
	require.Len(t, got.Links, 1)
	assert.Equal(t, ticket.LinkCase, got.Links[0].Type)
}

func TestFetchTicketNotFound(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL, "tok")

	_, err := c.FetchTicket(context.Background(), 99, ticket.FetchOptions{})

	var nf *ticket.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 99, nf.SeqNo)
}

func TestServerErrorBecomesUpstreamError(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "database is down", http.StatusInternalServerError)
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL, "tok")

	_, err := c.SearchTicketsByActivityID(context.Background(), []int64{1000})

	var ue *ticket.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
	assert.Equal(t, "database is down", ue.Message)
}

func TestTransportFailureBecomesUpstreamError(t *testing.T) {
	c := New(testLogger(), "https://portal.invalid", 100*time.Millisecond)
	c.UseSession("http://127.0.0.1:1", "tok")

	_, err := c.SearchActivitiesByIDs(context.Background(), []int64{1}, false)

	var ue *ticket.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.Status)
	assert.NotEmpty(t, ue.Message)
}

func TestSearchActivitiesByLinkPayload(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activity/search", r.URL.Path)
		var req struct {
			LinkedTo       []int64 `json:"linkedTo"`
			LinkType       string  `json:"linkType"`
			Direction      string  `json:"direction"`
			IncludeMembers bool    `json:"includeMembers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int64{300}, req.LinkedTo)
		assert.Equal(t, "Conversation", req.LinkType)
		assert.Equal(t, "FROM", req.Direction)
		assert.True(t, req.IncludeMembers)
		w.Write([]byte(`{"activities": [
			{"eactId": 301, "type": 4, "direction": 2, "createdAt": "2024-03-01T10:00:00Z",
			 "from": "customer@example.com", "subject": "Re: help"}
		]}`))
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL, "tok")

	acts, err := c.SearchActivitiesByLink(context.Background(), []int64{300}, ticket.LinkConversation, ticket.LinkFrom, true)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, ticket.TypeEmail, acts[0].Type)
	assert.Equal(t, ticket.DirectionInbound, acts[0].Direction)
	assert.Equal(t, "customer@example.com", acts[0].From)
}

func TestFetchEmailBody(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activity/301/content", r.URL.Path)
		w.Write([]byte(`{"html": "<p>Hello</p>"}`))
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL, "tok")

	html, err := c.FetchEmailBody(context.Background(), 301)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", html)
}

func TestUnparseableTimestampIsZero(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"activities": [{"eactId": 1, "type": 3, "createdAt": "not-a-date"}]}`))
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL, "tok")

	acts, err := c.SearchActivitiesByIDs(context.Background(), []int64{1}, false)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.True(t, acts[0].CreatedAt.IsZero())
}

func TestAddComment(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/case/42/text", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "on it", req.Text)
		w.WriteHeader(http.StatusCreated)
	}))
	defer svc.Close()

	c := New(testLogger(), "https://portal.invalid", time.Second)
	c.UseSession(svc.URL, "tok")

	require.NoError(t, c.AddComment(context.Background(), 42, "on it"))
}
