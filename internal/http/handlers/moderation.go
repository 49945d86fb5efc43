package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/observability"
)

type ModerationRepository interface {
	ListForModeration(ctx context.Context, filter event.ModerationFilter) ([]event.Event, int, error)
	SetStatus(ctx context.Context, id string, status event.Status) (event.Event, error)
}

// ModerationHandler is the admin queue: browse submissions in any status
// and move them between pending, approved and rejected.
type ModerationHandler struct {
	repo       ModerationRepository
	prom       *observability.Prom
	invalidate func()
}

func NewModerationHandler(repo ModerationRepository, prom *observability.Prom, invalidate func()) *ModerationHandler {
	return &ModerationHandler{repo: repo, prom: prom, invalidate: invalidate}
}

func (h *ModerationHandler) List(ctx *gin.Context) {
	filter := event.ModerationFilter{
		Sort:  ctx.Query("sort"),
		Order: ctx.Query("order"),
		Page:  parsePositiveInt(ctx.Query("page"), 1),
		Limit: parsePositiveInt(ctx.Query("limit"), 20),
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	if raw := ctx.Query("status"); raw != "" {
		status := event.Status(raw)
		if !status.Valid() {
			RespondBadRequest(ctx, "status must be one of pending, approved, rejected", nil)
			return
		}
		filter.Status = &status
	}

	if q := ctx.Query("q"); q != "" {
		filter.Query = &q
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.repo.ListForModeration(cctx, filter)
	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func (h *ModerationHandler) Approve(ctx *gin.Context) {
	h.setStatus(ctx, event.StatusApproved)
}

func (h *ModerationHandler) Reject(ctx *gin.Context) {
	h.setStatus(ctx, event.StatusRejected)
}

// setStatus applies the decision. Transitions are free: re-approving an
// approved event is a harmless no-op, and a rejected event can still be
// approved later.
func (h *ModerationHandler) setStatus(ctx *gin.Context, status event.Status) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.SetStatus(cctx, id, status)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not update event status")
		return
	}

	if h.prom != nil {
		h.prom.ModerationsTotal.WithLabelValues(string(status)).Inc()
	}

	if h.invalidate != nil {
		h.invalidate()
	}

	ctx.JSON(http.StatusOK, e)
}
