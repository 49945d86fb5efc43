package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/domain/job"
	"github.com/sportnest/sportnest/internal/domain/registration"
	"github.com/sportnest/sportnest/internal/http/handlers"
)

// fakeTx only needs Commit and Rollback; the embedded interface covers the
// rest of pgx.Tx, which the handler never touches.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeRegistrationsRepo struct {
	tx         *fakeTx
	createTxFn func(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (registration.Result, error)
	listFn     func(ctx context.Context, eventID string) ([]registration.Registration, error)
}

func (f *fakeRegistrationsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if f.tx == nil {
		f.tx = &fakeTx{}
	}
	return f.tx, nil
}

func (f *fakeRegistrationsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (registration.Result, error) {
	if f.createTxFn != nil {
		return f.createTxFn(ctx, tx, req)
	}
	return registration.Result{}, nil
}

func (f *fakeRegistrationsRepo) ListByEvent(ctx context.Context, eventID string) ([]registration.Registration, error) {
	if f.listFn != nil {
		return f.listFn(ctx, eventID)
	}
	return nil, nil
}

type fakeEventGetter struct {
	getFn func(ctx context.Context, id string) (event.Event, error)
}

func (f *fakeEventGetter) GetByID(ctx context.Context, id string) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return event.Event{}, nil
}

type fakeJobsEnqueuer struct {
	created []job.CreateRequest
	err     error
}

func (f *fakeJobsEnqueuer) CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error) {
	if f.err != nil {
		return job.Job{}, f.err
	}
	f.created = append(f.created, req)
	return job.New(req), nil
}

func TestRegisterHandler(t *testing.T) {
	eventID := newUUID()

	approvedEvent := func(ctx context.Context, id string) (event.Event, error) {
		return event.Event{ID: id, Name: "Open Day", Status: event.StatusApproved, Capacity: 30}, nil
	}

	tests := []struct {
		name           string
		url            string
		body           string
		eventFn        func(ctx context.Context, id string) (event.Event, error)
		createTxFn     func(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (registration.Result, error)
		wantStatusCode int
		wantCode       string
	}{
		{
			name:    "success",
			url:     "/events/" + eventID + "/register",
			body:    `{"name": "Ada Okafor", "email": "ada@example.com"}`,
			eventFn: approvedEvent,
			createTxFn: func(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (registration.Result, error) {
				if req.EventID != eventID {
					return registration.Result{}, errors.New("event id not taken from URL")
				}
				return registration.Result{
					Registration:    registration.NewFromCreateRequest(req),
					RegisteredCount: 12,
					Capacity:        30,
				}, nil
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:    "event_full",
			url:     "/events/" + eventID + "/register",
			body:    `{"name": "Ada Okafor", "email": "ada@example.com"}`,
			eventFn: approvedEvent,
			createTxFn: func(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (registration.Result, error) {
				return registration.Result{}, event.ErrEventFull
			},
			wantStatusCode: http.StatusConflict,
			wantCode:       "event_full",
		},
		{
			name: "event_missing",
			url:  "/events/" + eventID + "/register",
			body: `{"name": "Ada Okafor", "email": "ada@example.com"}`,
			eventFn: func(ctx context.Context, id string) (event.Event, error) {
				return event.Event{}, event.ErrNotFound
			},
			wantStatusCode: http.StatusNotFound,
			wantCode:       "not_found",
		},
		{
			name:           "invalid_email",
			url:            "/events/" + eventID + "/register",
			body:           `{"name": "Ada Okafor", "email": "not-an-email"}`,
			eventFn:        approvedEvent,
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_request",
		},
		{
			name:           "invalid_event_id",
			url:            "/events/nope/register",
			body:           `{"name": "Ada Okafor", "email": "ada@example.com"}`,
			eventFn:        approvedEvent,
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_request",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRegistrationsRepo{createTxFn: tt.createTxFn}
			events := &fakeEventGetter{getFn: tt.eventFn}
			jobs := &fakeJobsEnqueuer{}

			h := handlers.NewRegistrationsHandler(repo, events, jobs, nil)
			r := setupRouter(http.MethodPost, "/events/:id/register", nil, h.Register)

			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewBufferString(tt.body))
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

			if tt.wantStatusCode != http.StatusCreated {
				if repo.tx != nil && repo.tx.committed {
					t.Fatal("transaction must not commit on failure")
				}
				return
			}

			// success path: commit happened and the confirmation job rode
			// the same transaction
			if repo.tx == nil || !repo.tx.committed {
				t.Fatal("expected the transaction to commit")
			}

			if len(jobs.created) != 1 {
				t.Fatalf("expected 1 enqueued job, got %d", len(jobs.created))
			}
			if jobs.created[0].Type != job.TypeRegistrationConfirmation {
				t.Fatalf("got job type %q", jobs.created[0].Type)
			}

			payload, err := job.DecodeRegistrationConfirmation(jobs.created[0].Payload)
			if err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload.EventName != "Open Day" || payload.Email != "ada@example.com" {
				t.Fatalf("unexpected payload: %+v", payload)
			}

			var res registration.Result
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if res.RegisteredCount != 12 || res.Capacity != 30 {
				t.Fatalf("unexpected counts in response: %+v", res)
			}
		})
	}
}

func TestListRegistrationsForEvent(t *testing.T) {
	eventID := newUUID()

	repo := &fakeRegistrationsRepo{
		listFn: func(ctx context.Context, id string) ([]registration.Registration, error) {
			if id != eventID {
				return nil, errors.New("wrong event id")
			}
			return []registration.Registration{
				{ID: newUUID(), EventID: id, Name: "Ada", Email: "ada@example.com"},
				{ID: newUUID(), EventID: id, Name: "Bayo", Email: "bayo@example.com"},
			}, nil
		},
	}

	h := handlers.NewRegistrationsHandler(repo, &fakeEventGetter{}, &fakeJobsEnqueuer{}, nil)
	r := setupRouter(http.MethodGet, "/admin/events/:id/registrations", nil, h.ListForEvent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/events/"+eventID+"/registrations", nil))

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
