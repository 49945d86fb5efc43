package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/http/handlers"
)

type fakeModerationRepo struct {
	listFn      func(ctx context.Context, filter event.ModerationFilter) ([]event.Event, int, error)
	setStatusFn func(ctx context.Context, id string, status event.Status) (event.Event, error)
}

func (f *fakeModerationRepo) ListForModeration(ctx context.Context, filter event.ModerationFilter) ([]event.Event, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeModerationRepo) SetStatus(ctx context.Context, id string, status event.Status) (event.Event, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, id, status)
	}
	return event.Event{}, nil
}

func TestModerationListHandler(t *testing.T) {
	repo := &fakeModerationRepo{
		listFn: func(ctx context.Context, filter event.ModerationFilter) ([]event.Event, int, error) {
			if filter.Status == nil || *filter.Status != event.StatusPending {
				return nil, 0, errors.New("status filter not passed")
			}
			return []event.Event{{ID: "id-1", Status: event.StatusPending}}, 7, nil
		},
	}

	h := handlers.NewModerationHandler(repo, nil, nil)
	r := setupRouter(http.MethodGet, "/admin/events", nil, h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/events?status=pending", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Total != 7 || resp.Page != 1 || resp.Limit != 20 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestModerationListRejectsBadStatus(t *testing.T) {
	h := handlers.NewModerationHandler(&fakeModerationRepo{}, nil, nil)
	r := setupRouter(http.MethodGet, "/admin/events", nil, h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/events?status=archived", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestApproveHandler(t *testing.T) {
	eventID := newUUID()
	invalidated := 0

	repo := &fakeModerationRepo{
		setStatusFn: func(ctx context.Context, id string, status event.Status) (event.Event, error) {
			if status != event.StatusApproved {
				return event.Event{}, errors.New("wrong status")
			}
			return event.Event{ID: id, Status: status}, nil
		},
	}

	h := handlers.NewModerationHandler(repo, nil, func() { invalidated++ })
	r := setupRouter(http.MethodPost, "/admin/events/:id/approve", nil, h.Approve)

	// approving twice is a harmless no-op, both calls succeed
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/events/"+eventID+"/approve", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("call %d got status %d, body=%s", i+1, w.Code, w.Body.String())
		}

		var got event.Event
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if got.Status != event.StatusApproved {
			t.Fatalf("got status %q, want approved", got.Status)
		}
	}

	if invalidated != 2 {
		t.Fatalf("expected cache invalidation on every decision, got %d", invalidated)
	}
}

func TestRejectHandlerNotFound(t *testing.T) {
	repo := &fakeModerationRepo{
		setStatusFn: func(ctx context.Context, id string, status event.Status) (event.Event, error) {
			return event.Event{}, event.ErrNotFound
		},
	}

	h := handlers.NewModerationHandler(repo, nil, nil)
	r := setupRouter(http.MethodPost, "/admin/events/:id/reject", nil, h.Reject)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/events/"+newUUID()+"/reject", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}
