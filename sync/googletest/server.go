// ABOUTME: In-process fake of Google's OAuth token endpoint and Calendar v3 events API
// ABOUTME: Used by tests across packages to exercise the real clients over HTTP
package googletest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const eventsPath = "/calendars/primary/events"

// Request is one recorded Calendar API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]any
}

// Server serves /token and the primary calendar's events endpoints.
// Token responses hand out access-1, access-2, ... in call order.
type Server struct {
	srv *httptest.Server

	mu            sync.Mutex
	tokenCalls    int
	refreshTokens []string
	requests      []Request
	events        map[string]*calendar.Event
	nextID        int
	calendarFail  int
	tokenFail     bool
}

// New starts a fake closed at test cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{events: map[string]*calendar.Event{}}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the fake's base URL.
func (s *Server) URL() string { return s.srv.URL }

// OAuthConfig points an oauth2 config at the fake token endpoint.
func (s *Server) OAuthConfig(scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/api/auth/google/callback",
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.srv.URL + "/auth",
			TokenURL:  s.srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Endpoint routes a Calendar service to the fake.
func (s *Server) Endpoint() option.ClientOption {
	return option.WithEndpoint(s.srv.URL + "/")
}

// Requests returns the recorded Calendar API calls, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// TokenCalls counts token endpoint hits of any grant type.
func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

// RefreshTokens lists the refresh tokens presented, in order.
func (s *Server) RefreshTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refreshTokens...)
}

// FailTokens makes every token request fail with invalid_grant.
func (s *Server) FailTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenFail = true
}

// FailCalendar makes every Calendar call answer with code.
func (s *Server) FailCalendar(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendarFail = code
}

// Seed stores an event as if it already existed remotely.
func (s *Server) Seed(event *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Id] = event
}

// Remove deletes an event behind the client's back.
func (s *Server) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
}

// Event returns the stored event or nil.
func (s *Server) Event(id string) *calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

// EventCount is the number of stored events.
func (s *Server) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Path == "/token" {
		s.handleToken(w, r)
		return
	}

	rec := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization")}
	if r.Method == http.MethodPost || r.Method == http.MethodPatch {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}
	s.requests = append(s.requests, rec)

	if s.calendarFail != 0 {
		writeAPIError(w, s.calendarFail)
		return
	}

	switch {
	case r.URL.Path == eventsPath && r.Method == http.MethodGet:
		s.list(w)
	case r.URL.Path == eventsPath && r.Method == http.MethodPost:
		s.insert(w, rec.Body)
	case strings.HasPrefix(r.URL.Path, eventsPath+"/"):
		s.byID(w, r.Method, strings.TrimPrefix(r.URL.Path, eventsPath+"/"), rec.Body)
	default:
		writeAPIError(w, http.StatusNotFound)
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	s.tokenCalls++
	if s.tokenFail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	resp := map[string]any{
		"access_token": fmt.Sprintf("access-%d", s.tokenCalls),
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	switch r.Form.Get("grant_type") {
	case "refresh_token":
		s.refreshTokens = append(s.refreshTokens, r.Form.Get("refresh_token"))
	case "authorization_code":
		resp["refresh_token"] = "refresh-for-" + r.Form.Get("code")
	}
	writeJSON(w, resp)
}

func (s *Server) list(w http.ResponseWriter) {
	items := make([]*calendar.Event, 0, len(s.events))
	for _, e := range s.events {
		items = append(items, e)
	}
	sort.Slice(items, func(i, j int) bool { return startOf(items[i]) < startOf(items[j]) })
	writeJSON(w, &calendar.Events{Items: items})
}

func (s *Server) insert(w http.ResponseWriter, body map[string]any) {
	s.nextID++
	event := eventFromBody(body)
	event.Id = fmt.Sprintf("evt-%d", s.nextID)
	s.events[event.Id] = event
	writeJSON(w, event)
}

func (s *Server) byID(w http.ResponseWriter, method, id string, body map[string]any) {
	event, ok := s.events[id]
	switch method {
	case http.MethodDelete:
		if !ok {
			writeAPIError(w, http.StatusGone)
			return
		}
		delete(s.events, id)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPatch:
		if !ok {
			writeAPIError(w, http.StatusNotFound)
			return
		}
		patch := eventFromBody(body)
		if _, set := body["summary"]; set {
			event.Summary = patch.Summary
		}
		if _, set := body["description"]; set {
			event.Description = patch.Description
		}
		if patch.Start != nil {
			event.Start, event.End = patch.Start, patch.End
		}
		writeJSON(w, event)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed)
	}
}

func startOf(e *calendar.Event) string {
	if e.Start == nil {
		return ""
	}
	if e.Start.Date != "" {
		return e.Start.Date
	}
	return e.Start.DateTime
}

func eventFromBody(body map[string]any) *calendar.Event {
	raw, _ := json.Marshal(body)
	var event calendar.Event
	_ = json.Unmarshal(raw, &event)
	return &event
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s"}}`, code, http.StatusText(code))
}
