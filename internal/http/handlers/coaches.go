package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/coach"
)

type CoachesRepository interface {
	Create(ctx context.Context, req coach.CreateCoachRequest) (coach.Coach, error)
	List(ctx context.Context) ([]coach.Coach, error)
	GetByID(ctx context.Context, id string) (coach.Coach, error)
	Update(ctx context.Context, id string, req coach.UpdateCoachRequest) (coach.Coach, error)
	Delete(ctx context.Context, id string) error
}

// CoachesHandler manages the coaching staff roster (admin only).
type CoachesHandler struct {
	repo CoachesRepository
}

func NewCoachesHandler(repo CoachesRepository) *CoachesHandler {
	return &CoachesHandler{repo: repo}
}

func (h *CoachesHandler) Create(ctx *gin.Context) {
	var req coach.CreateCoachRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not create coach")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CoachesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list coaches")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *CoachesHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "coach id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, coach.ErrNotFound) {
			RespondNotFound(ctx, "Coach not found")
			return
		}
		RespondInternal(ctx, "Could not fetch coach")
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CoachesHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "coach id must be a valid UUID", nil)
		return
	}

	var req coach.UpdateCoachRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Update(cctx, id, req)
	if err != nil {
		if errors.Is(err, coach.ErrNotFound) {
			RespondNotFound(ctx, "Coach not found")
			return
		}
		RespondInternal(ctx, "Could not update coach")
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CoachesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "coach id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, coach.ErrNotFound) {
			RespondNotFound(ctx, "Coach not found")
			return
		}
		RespondInternal(ctx, "Could not delete coach")
		return
	}

	ctx.Status(http.StatusNoContent)
}
