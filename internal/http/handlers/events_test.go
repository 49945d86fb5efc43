package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/cache"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/http/handlers"
	"github.com/sportnest/sportnest/internal/http/middlewares"
)

// Keep gin quiet during tests
func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of handlers.EventsRepository

type fakeEventsRepo struct {
	createFn func(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	getFn    func(ctx context.Context, id string) (event.Event, error)
	listFn   func(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error)
	mineFn   func(ctx context.Context, submitterID string) ([]event.Event, error)
	updateFn func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeEventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return event.Event{}, nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return event.Event{}, nil
}

func (f *fakeEventsRepo) ListApproved(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeEventsRepo) ListBySubmitter(ctx context.Context, submitterID string) ([]event.Event, error) {
	if f.mineFn != nil {
		return f.mineFn(ctx, submitterID)
	}
	return nil, nil
}

func (f *fakeEventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return event.Event{}, nil
}

func (f *fakeEventsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// small helper to mount one handler per test
func setupRouter(method, path string, mws []gin.HandlerFunc, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	chain := append(mws, h)
	r.Handle(method, path, chain...)

	return r
}

// stands in for the JWT middleware
func withIdentity(memberID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middlewares.SetIdentity(c, memberID, memberID+"@example.com", role)
		c.Next()
	}
}

func validEventBody(name string) string {
	date := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)

	return `{
		"name": "` + name + `",
		"description": "An open training day",
		"venue": "Main Hall",
		"date": "` + date + `",
		"startTime": "10:00",
		"endTime": "12:00",
		"capacity": 30,
		"registrationFee": 15
	}`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("failed to unmarshal error body %q: %v", body, err)
	}
	return env.Error.Code
}

func TestSubmitEventHandler(t *testing.T) {
	memberID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: validEventBody("Open Day"),
			repoSetup: func(f *fakeEventsRepo) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					if req.SubmitterID != memberID {
						return event.Event{}, errors.New("submitter not taken from identity")
					}
					return event.Event{
						ID:          newUUID(),
						Name:        req.Name,
						Venue:       req.Venue,
						Status:      event.StatusPending,
						SubmitterID: req.SubmitterID,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "validation_error",
			body: `{"name": ""}`,
			repoSetup: func(f *fakeEventsRepo) {
				// repo must not be reached on an invalid payload
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, errors.New("should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: validEventBody("Open Day"),
			repoSetup: func(f *fakeEventsRepo) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewEventsHandler(repo, nil)
			r := setupRouter(http.MethodPost, "/events", []gin.HandlerFunc{withIdentity(memberID, "member")}, h.Submit)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var got event.Event
				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if got.SubmitterID != memberID {
					t.Fatalf("got submitterId %q, want %q", got.SubmitterID, memberID)
				}
				if got.Status != event.StatusPending {
					t.Fatalf("new submissions must start pending, got %q", got.Status)
				}
			}
		})
	}
}

func TestGetEventHandler(t *testing.T) {
	approvedID := newUUID()
	pendingID := newUUID()
	missingID := newUUID()

	repo := &fakeEventsRepo{
		getFn: func(ctx context.Context, id string) (event.Event, error) {
			switch id {
			case approvedID:
				return event.Event{ID: id, Name: "Open Day", Status: event.StatusApproved}, nil
			case pendingID:
				return event.Event{ID: id, Name: "Draft", Status: event.StatusPending}, nil
			default:
				return event.Event{}, event.ErrNotFound
			}
		},
	}

	h := handlers.NewEventsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/events/:id", nil, h.Get)

	tests := []struct {
		name           string
		url            string
		wantStatusCode int
	}{
		{"approved_visible", "/events/" + approvedID, http.StatusOK},
		{"pending_hidden", "/events/" + pendingID, http.StatusNotFound},
		{"missing", "/events/" + missingID, http.StatusNotFound},
		{"invalid_id", "/events/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListApprovedEventsHandler(t *testing.T) {
	repo := &fakeEventsRepo{
		listFn: func(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error) {
			if filter.Query == nil || *filter.Query != "football" {
				return nil, 0, errors.New("query filter not passed")
			}
			if filter.Limit != 10 || filter.Offset != 10 {
				return nil, 0, errors.New("pagination not translated to limit/offset")
			}
			return []event.Event{
				{ID: "id-1", Name: "Football Camp", Status: event.StatusApproved},
			}, 21, nil
		},
	}

	h := handlers.NewEventsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/events", nil, h.ListApproved)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events?q=football&page=2&limit=10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []event.Event `json:"items"`
		Total int           `json:"total"`
		Page  int           `json:"page"`
		Limit int           `json:"limit"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if len(resp.Items) != 1 || resp.Total != 21 || resp.Page != 2 || resp.Limit != 10 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestListApprovedEventsHandler_CacheHit(t *testing.T) {
	calls := 0

	repo := &fakeEventsRepo{
		listFn: func(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error) {
			calls++
			return []event.Event{{ID: "id-1", Name: "Open Day", Status: event.StatusApproved}}, 1, nil
		},
	}

	h := handlers.NewEventsHandler(repo, cache.New(30*time.Second))
	r := setupRouter(http.MethodGet, "/events", nil, h.ListApproved)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/events?limit=20", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("call %d got %d, body=%s", i+1, w.Code, w.Body.String())
		}
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}
}

func TestListApprovedEventsHandler_ETagNotModified(t *testing.T) {
	repo := &fakeEventsRepo{
		listFn: func(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error) {
			return []event.Event{{ID: "id-1", Name: "Open Day", Status: event.StatusApproved}}, 1, nil
		},
	}

	h := handlers.NewEventsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/events", nil, h.ListApproved)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d, body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header in first response")
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/events", nil)
	req2.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d", w2.Code, http.StatusNotModified)
	}
	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}
}

func TestListMineHandler(t *testing.T) {
	memberID := newUUID()

	repo := &fakeEventsRepo{
		mineFn: func(ctx context.Context, submitterID string) ([]event.Event, error) {
			if submitterID != memberID {
				return nil, errors.New("wrong submitter")
			}
			return []event.Event{
				{ID: "id-1", Status: event.StatusPending, SubmitterID: submitterID},
				{ID: "id-2", Status: event.StatusRejected, SubmitterID: submitterID},
			}, nil
		},
	}

	h := handlers.NewEventsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/members/me/events", []gin.HandlerFunc{withIdentity(memberID, "member")}, h.ListMine)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/members/me/events", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("got count %d, want 2", resp.Count)
	}
}

// The edit/delete rule: submitters own their drafts, approval locks them,
// admins bypass everything.
func TestUpdateEventPermissions(t *testing.T) {
	ownerID := newUUID()
	strangerID := newUUID()
	eventID := newUUID()

	tests := []struct {
		name           string
		callerID       string
		callerRole     string
		status         event.Status
		wantStatusCode int
		wantCode       string
	}{
		{"owner_edits_pending", ownerID, "member", event.StatusPending, http.StatusOK, ""},
		{"owner_edits_rejected", ownerID, "member", event.StatusRejected, http.StatusOK, ""},
		{"owner_blocked_on_approved", ownerID, "member", event.StatusApproved, http.StatusForbidden, "approved_locked"},
		{"admin_edits_approved", strangerID, "admin", event.StatusApproved, http.StatusOK, ""},
		{"stranger_forbidden", strangerID, "member", event.StatusPending, http.StatusForbidden, "forbidden"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventsRepo{
				getFn: func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{ID: id, Status: tt.status, SubmitterID: ownerID}, nil
				},
				updateFn: func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
					return event.Event{ID: id, Name: req.Name, Status: tt.status, SubmitterID: ownerID}, nil
				},
			}

			h := handlers.NewEventsHandler(repo, nil)
			r := setupRouter(http.MethodPut, "/events/:id", []gin.HandlerFunc{withIdentity(tt.callerID, tt.callerRole)}, h.Update)

			req := httptest.NewRequest(http.MethodPut, "/events/"+eventID, bytes.NewBufferString(validEventBody("Updated Day")))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				if got := errorCode(t, w.Body.Bytes()); got != tt.wantCode {
					t.Fatalf("got error code %q, want %q", got, tt.wantCode)
				}
			}
		})
	}
}

func TestDeleteEventPermissions(t *testing.T) {
	ownerID := newUUID()
	eventID := newUUID()

	tests := []struct {
		name           string
		status         event.Status
		wantStatusCode int
	}{
		{"owner_deletes_pending", event.StatusPending, http.StatusNoContent},
		{"owner_blocked_on_approved", event.StatusApproved, http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventsRepo{
				getFn: func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{ID: id, Status: tt.status, SubmitterID: ownerID}, nil
				},
			}

			h := handlers.NewEventsHandler(repo, nil)
			r := setupRouter(http.MethodDelete, "/events/:id", []gin.HandlerFunc{withIdentity(ownerID, "member")}, h.Delete)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/"+eventID, nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	repo := &fakeEventsRepo{
		getFn: func(ctx context.Context, id string) (event.Event, error) {
			return event.Event{}, event.ErrNotFound
		},
	}

	h := handlers.NewEventsHandler(repo, nil)
	r := setupRouter(http.MethodDelete, "/events/:id", []gin.HandlerFunc{withIdentity(newUUID(), "member")}, h.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/"+newUUID(), nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}
