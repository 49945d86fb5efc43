package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/domain/registration"
	"github.com/sportnest/sportnest/internal/domain/report"
)

func seedEvent(t *testing.T, r *EventsRepo, capacity int) event.Event {
	t.Helper()

	e, err := r.Create(event.CreateEventRequest{
		Name:      "5K Charity Run",
		Venue:     "Riverside Park",
		Date:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "12:00",
		Capacity:  capacity,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func TestRegisterConcurrentNeverExceedsCapacity(t *testing.T) {
	repo := NewEventsRepo()
	e := seedEvent(t, repo, 25)

	const attempts = 200

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	full := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := repo.Register(registration.CreateRegistrationRequest{
				EventID: e.ID,
				Name:    fmt.Sprintf("Runner %d", n),
				Email:   fmt.Sprintf("runner%d@example.com", n),
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				accepted++
			case errors.Is(err, event.ErrEventFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()

	if accepted != 25 {
		t.Fatalf("accepted = %d, want 25", accepted)
	}
	if full != attempts-25 {
		t.Fatalf("full rejections = %d, want %d", full, attempts-25)
	}
	if got := repo.CountForEvent(e.ID); got != 25 {
		t.Fatalf("stored registrations = %d, want 25", got)
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	repo := NewEventsRepo()

	_, err := repo.Register(registration.CreateRegistrationRequest{
		EventID: "nope",
		Name:    "Jo",
		Email:   "jo@example.com",
	})
	if !errors.Is(err, event.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRegisterDuplicateEmailAllowed(t *testing.T) {
	repo := NewEventsRepo()
	e := seedEvent(t, repo, 10)

	for i := 0; i < 2; i++ {
		if _, err := repo.Register(registration.CreateRegistrationRequest{
			EventID: e.ID,
			Name:    "Same Person",
			Email:   "same@example.com",
		}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	if got := repo.CountForEvent(e.ID); got != 2 {
		t.Fatalf("count = %d, want 2 (duplicate emails are accepted)", got)
	}
}

func seedApprovedWithRegs(t *testing.T, r *EventsRepo, name, venue string, date time.Time, capacity, regs int, fee float64) event.Event {
	t.Helper()

	e, err := r.Create(event.CreateEventRequest{
		Name:            name,
		Venue:           venue,
		Date:            date,
		StartTime:       "09:00",
		EndTime:         "12:00",
		Capacity:        capacity,
		RegistrationFee: fee,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := r.SetStatus(e.ID, event.StatusApproved); err != nil {
		t.Fatalf("approve %s: %v", name, err)
	}

	for i := 0; i < regs; i++ {
		if _, err := r.Register(registration.CreateRegistrationRequest{
			EventID: e.ID,
			Name:    fmt.Sprintf("Guest %d", i),
			Email:   fmt.Sprintf("guest%d@example.com", i),
		}); err != nil {
			t.Fatalf("register %s #%d: %v", name, i, err)
		}
	}
	return e
}

func TestSummaryAggregation(t *testing.T) {
	repo := NewEventsRepo()

	aug := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	seedApprovedWithRegs(t, repo, "Open Day", "Main Hall", aug, 10, 5, 10)
	seedApprovedWithRegs(t, repo, "5K Run", "Riverside Park", aug, 20, 10, 0)
	seedApprovedWithRegs(t, repo, "Finals", "Main Hall", sep, 30, 15, 20)

	// pending events count toward the total but never toward approved rollups
	seedEvent(t, repo, 99)

	s, err := repo.Summary(report.Filter{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if s.KPIs.Capacity != 60 {
		t.Errorf("kpis.capacity = %d, want 60", s.KPIs.Capacity)
	}
	if s.KPIs.Registrations != 30 {
		t.Errorf("kpis.regs = %d, want 30", s.KPIs.Registrations)
	}
	if s.KPIs.Events != 4 || s.KPIs.Approved != 3 {
		t.Errorf("kpis events/approved = %d/%d, want 4/3", s.KPIs.Events, s.KPIs.Approved)
	}
	if want := 5*10.0 + 15*20.0; s.KPIs.FeeRevenue != want {
		t.Errorf("kpis.feeRevenue = %.2f, want %.2f", s.KPIs.FeeRevenue, want)
	}

	if s.StatusCounts.Pending != 1 || s.StatusCounts.Approved != 3 || s.StatusCounts.Rejected != 0 {
		t.Errorf("statusCounts = %+v, want 1 pending / 3 approved / 0 rejected", s.StatusCounts)
	}

	if len(s.Monthly) != 2 {
		t.Fatalf("monthly buckets = %d, want 2", len(s.Monthly))
	}
	if b := s.Monthly[0]; b.Month != "2026-08" || b.Events != 2 || b.Capacity != 30 || b.Registrations != 15 {
		t.Errorf("2026-08 bucket = %+v", b)
	}

	if len(s.TopVenues) == 0 || s.TopVenues[0].Venue != "Main Hall" || s.TopVenues[0].Events != 2 {
		t.Errorf("topVenues = %+v, want Main Hall first with 2", s.TopVenues)
	}

	// approved rows only, date order, ratio of registrations over capacity
	if len(s.Events) != 3 {
		t.Fatalf("event rows = %d, want 3", len(s.Events))
	}
	if s.Events[0].Date != "2026-08-10" || s.Events[2].Name != "Finals" {
		t.Errorf("event rows out of order: %+v", s.Events)
	}
	if got := s.Events[2].FillRatio; got != 0.5 {
		t.Errorf("Finals fill ratio = %.2f, want 0.50", got)
	}
}

func TestSummaryDateAndStatusFilter(t *testing.T) {
	repo := NewEventsRepo()

	aug := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	seedApprovedWithRegs(t, repo, "Open Day", "Main Hall", aug, 10, 5, 0)
	seedApprovedWithRegs(t, repo, "Finals", "Main Hall", sep, 30, 15, 0)
	pending := seedEvent(t, repo, 99)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	s, err := repo.Summary(report.Filter{From: &from})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if s.KPIs.Capacity != 30 || s.KPIs.Registrations != 15 {
		t.Errorf("filtered kpis = %d/%d, want 30/15", s.KPIs.Capacity, s.KPIs.Registrations)
	}
	if s.StatusCounts.Approved != 1 {
		t.Errorf("filtered approved = %d, want 1", s.StatusCounts.Approved)
	}

	status := "pending"
	s, err = repo.Summary(report.Filter{Status: &status})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(s.Events) != 1 || s.Events[0].ID != pending.ID {
		t.Errorf("status-filtered rows = %+v, want only the pending event", s.Events)
	}
}

func TestSetStatusFreeTransitions(t *testing.T) {
	repo := NewEventsRepo()
	e := seedEvent(t, repo, 5)

	for _, s := range []event.Status{event.StatusApproved, event.StatusApproved, event.StatusRejected, event.StatusApproved} {
		got, err := repo.SetStatus(e.ID, s)
		if err != nil {
			t.Fatalf("set status %s: %v", s, err)
		}
		if got.Status != s {
			t.Fatalf("status = %s, want %s", got.Status, s)
		}
	}
}
