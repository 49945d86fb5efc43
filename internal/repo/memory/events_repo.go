package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/domain/registration"
	"github.com/sportnest/sportnest/internal/domain/report"
)

// EventsRepo is an in-memory stand-in for the Postgres store. It keeps the
// same capacity semantics under one mutex, which makes it handy for
// exercising concurrent registration without a database.
type EventsRepo struct {
	mu            sync.RWMutex
	events        map[string]event.Event
	registrations map[string][]registration.Registration // keyed by event ID
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{
		events:        make(map[string]event.Event),
		registrations: make(map[string][]registration.Registration),
	}
}

func (r *EventsRepo) Create(req event.CreateEventRequest) (event.Event, error) {
	e := event.NewFromCreateRequest(req)

	r.mu.Lock()
	r.events[e.ID] = e
	r.mu.Unlock()

	return e, nil
}

func (r *EventsRepo) GetByID(id string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	e.RegisteredCount = len(r.registrations[id])
	return e, nil
}

func (r *EventsRepo) SetStatus(id string, status event.Status) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	r.events[id] = e

	e.RegisteredCount = len(r.registrations[id])
	return e, nil
}

// Register checks capacity and appends under the same lock, so concurrent
// callers can never oversell an event.
func (r *EventsRepo) Register(req registration.CreateRegistrationRequest) (registration.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[req.EventID]
	if !ok {
		return registration.Result{}, event.ErrNotFound
	}

	current := len(r.registrations[req.EventID])
	if current >= e.Capacity {
		return registration.Result{}, event.ErrEventFull
	}

	reg := registration.NewFromCreateRequest(req)
	r.registrations[req.EventID] = append(r.registrations[req.EventID], reg)

	return registration.Result{
		Registration:    reg,
		RegisteredCount: current + 1,
		Capacity:        e.Capacity,
	}, nil
}

func (r *EventsRepo) ListByEvent(eventID string) ([]registration.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.events[eventID]; !ok {
		return nil, event.ErrNotFound
	}

	regs := r.registrations[eventID]
	out := make([]registration.Registration, len(regs))
	copy(out, regs)
	return out, nil
}

func (r *EventsRepo) CountForEvent(eventID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations[eventID])
}

func inRange(e event.Event, filter report.Filter) bool {
	if filter.From != nil && e.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && e.Date.After(*filter.To) {
		return false
	}
	return true
}

// Summary computes the same aggregate the Postgres repo assembles in SQL.
// Keeping a second implementation of the counting rules means they can be
// pinned by plain unit tests.
func (r *EventsRepo) Summary(filter report.Filter) (report.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := report.Summary{
		GeneratedAt: time.Now().UTC(),
		Monthly:     make([]report.MonthlyBucket, 0),
		TopVenues:   make([]report.VenueCount, 0),
		Events:      make([]report.EventRatio, 0),
	}

	rowStatus := event.StatusApproved
	if filter.Status != nil && *filter.Status != "" {
		rowStatus = event.Status(*filter.Status)
	}

	monthly := map[string]*report.MonthlyBucket{}
	venues := map[string]int{}

	for _, e := range r.events {
		if !inRange(e, filter) {
			continue
		}

		regs := len(r.registrations[e.ID])

		switch e.Status {
		case event.StatusPending:
			out.StatusCounts.Pending++
		case event.StatusApproved:
			out.StatusCounts.Approved++
		case event.StatusRejected:
			out.StatusCounts.Rejected++
		}

		month := e.Date.UTC().Format("2006-01")
		b, ok := monthly[month]
		if !ok {
			b = &report.MonthlyBucket{Month: month}
			monthly[month] = b
		}
		b.Events++
		b.Capacity += e.Capacity
		b.Registrations += regs

		venues[e.Venue]++

		if e.Status == event.StatusApproved {
			out.KPIs.Capacity += e.Capacity
			out.KPIs.Registrations += regs
			out.KPIs.FeeRevenue += e.RegistrationFee * float64(regs)
		}

		if e.Status == rowStatus {
			row := report.EventRatio{
				ID:            e.ID,
				Name:          e.Name,
				Venue:         e.Venue,
				Date:          e.Date.UTC().Format("2006-01-02"),
				Capacity:      e.Capacity,
				Registrations: regs,
			}
			if e.Capacity > 0 {
				row.FillRatio = float64(regs) / float64(e.Capacity)
			}
			out.Events = append(out.Events, row)
		}
	}

	out.KPIs.Events = out.StatusCounts.Pending + out.StatusCounts.Approved + out.StatusCounts.Rejected
	out.KPIs.Approved = out.StatusCounts.Approved

	for _, b := range monthly {
		out.Monthly = append(out.Monthly, *b)
	}
	sort.Slice(out.Monthly, func(i, j int) bool { return out.Monthly[i].Month < out.Monthly[j].Month })

	for v, n := range venues {
		out.TopVenues = append(out.TopVenues, report.VenueCount{Venue: v, Events: n})
	}
	sort.Slice(out.TopVenues, func(i, j int) bool {
		if out.TopVenues[i].Events != out.TopVenues[j].Events {
			return out.TopVenues[i].Events > out.TopVenues[j].Events
		}
		return out.TopVenues[i].Venue < out.TopVenues[j].Venue
	})
	if len(out.TopVenues) > 5 {
		out.TopVenues = out.TopVenues[:5]
	}

	sort.Slice(out.Events, func(i, j int) bool {
		if out.Events[i].Date != out.Events[j].Date {
			return out.Events[i].Date < out.Events[j].Date
		}
		return out.Events[i].ID < out.Events[j].ID
	})
	if len(out.Events) > report.MaxEventRows {
		out.Events = out.Events[:report.MaxEventRows]
	}

	return out, nil
}
