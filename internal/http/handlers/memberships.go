package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/plan"
	"github.com/sportnest/sportnest/internal/http/middlewares"
)

type MembershipsRepository interface {
	ListPlans(ctx context.Context) ([]plan.Plan, error)
	Choose(ctx context.Context, memberID, planID string) (plan.Membership, error)
	Renew(ctx context.Context, memberID string) (plan.Membership, error)
	GetForMember(ctx context.Context, memberID string) (plan.Membership, error)
}

type MembershipsHandler struct {
	repo MembershipsRepository
}

func NewMembershipsHandler(repo MembershipsRepository) *MembershipsHandler {
	return &MembershipsHandler{repo: repo}
}

// ListPlans is public so prospects can compare before signing up.
func (h *MembershipsHandler) ListPlans(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	plans, err := h.repo.ListPlans(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list plans")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": plans, "count": len(plans)})
}

// Choose switches the caller onto a plan, replacing any current membership.
func (h *MembershipsHandler) Choose(ctx *gin.Context) {
	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req plan.ChoosePlanRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, err := h.repo.Choose(cctx, memberID, req.PlanID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			RespondNotFound(ctx, "Plan not found")
			return
		}
		RespondInternal(ctx, "Could not choose plan")
		return
	}

	ctx.JSON(http.StatusCreated, m)
}

// Renew extends the current membership by one plan period.
func (h *MembershipsHandler) Renew(ctx *gin.Context) {
	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, err := h.repo.Renew(cctx, memberID)
	if err != nil {
		if errors.Is(err, plan.ErrNoMembership) {
			RespondNotFound(ctx, "No membership to renew")
			return
		}
		if errors.Is(err, plan.ErrPlanNotFound) {
			RespondNotFound(ctx, "Plan not found")
			return
		}
		RespondInternal(ctx, "Could not renew membership")
		return
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MembershipsHandler) GetMine(ctx *gin.Context) {
	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, err := h.repo.GetForMember(cctx, memberID)
	if err != nil {
		if errors.Is(err, plan.ErrNoMembership) {
			RespondNotFound(ctx, "No membership found")
			return
		}
		RespondInternal(ctx, "Could not fetch membership")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"membership": m,
		"active":     m.Active(time.Now().UTC()),
	})
}
