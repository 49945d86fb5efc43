package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/domain/job"
	"github.com/sportnest/sportnest/internal/domain/registration"
	"github.com/sportnest/sportnest/internal/observability"
	"github.com/sportnest/sportnest/internal/repo/postgres"
)

type RegistrationsRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (registration.Result, error)
	ListByEvent(ctx context.Context, eventID string) ([]registration.Registration, error)
}

type JobsEnqueuer interface {
	CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
}

type eventGetter interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

type RegistrationsHandler struct {
	repo   RegistrationsRepository
	events eventGetter
	jobs   JobsEnqueuer
	prom   *observability.Prom
}

func NewRegistrationsHandler(repo RegistrationsRepository, events eventGetter, jobs JobsEnqueuer, prom *observability.Prom) *RegistrationsHandler {
	return &RegistrationsHandler{repo: repo, events: events, jobs: jobs, prom: prom}
}

func (h *RegistrationsHandler) countOutcome(outcome string) {
	if h.prom != nil {
		h.prom.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

// Register takes a public registration. The capacity check and the insert
// run inside one transaction together with the confirmation job, so a
// committed registration always has its notification queued.
func (h *RegistrationsHandler) Register(ctx *gin.Context) {
	eventID := ctx.Param("id")

	if uuid.Validate(eventID) != nil {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	var req registration.CreateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// URL param is the source of truth
	req.EventID = eventID

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	ev, err := h.events.GetByID(cctx, eventID)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			h.countOutcome("not_found")
			RespondNotFound(ctx, "Event not found")
			return
		}
		h.countOutcome("error")
		RespondInternal(ctx, "Could not register for event")
		return
	}

	tx, err := h.repo.BeginTx(cctx)
	if err != nil {
		h.countOutcome("error")
		RespondInternal(ctx, "Could not register for event")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	res, err := h.repo.CreateTx(cctx, tx, req)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrEventFull):
			h.countOutcome("full")
			RespondConflict(ctx, "event_full", "This event is already at full capacity.")
		case errors.Is(err, event.ErrNotFound):
			h.countOutcome("not_found")
			RespondNotFound(ctx, "Event not found")
		default:
			h.countOutcome("error")
			RespondInternal(ctx, "Could not register for event")
		}
		return
	}

	payload, err := job.EncodeRegistrationConfirmation(job.RegistrationConfirmationPayload{
		RegistrationID: res.Registration.ID,
		EventID:        eventID,
		EventName:      ev.Name,
		Name:           res.Registration.Name,
		Email:          res.Registration.Email,
	})
	if err != nil {
		h.countOutcome("error")
		RespondInternal(ctx, "Could not register for event")
		return
	}

	_, err = h.jobs.CreateTx(cctx, tx, job.CreateRequest{
		Type:    job.TypeRegistrationConfirmation,
		Payload: payload,
	})
	if err != nil && !postgres.IsUniqueViolation(err) {
		h.countOutcome("error")
		RespondInternal(ctx, "Could not register for event")
		return
	}

	if err := tx.Commit(cctx); err != nil {
		h.countOutcome("error")
		RespondInternal(ctx, "Could not register for event")
		return
	}

	h.countOutcome("ok")

	ctx.JSON(http.StatusCreated, res)
}

// ListForEvent is the admin attendee list.
func (h *RegistrationsHandler) ListForEvent(ctx *gin.Context) {
	eventID := ctx.Param("id")

	if uuid.Validate(eventID) != nil {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	regs, err := h.repo.ListByEvent(cctx, eventID)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondInternal(ctx, "Could not list registrations")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"eventId":       eventID,
		"count":         len(regs),
		"registrations": regs,
	})
}
