package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/sponsorship"
	"github.com/sportnest/sportnest/internal/http/middlewares"
)

type SponsorshipsRepository interface {
	Create(ctx context.Context, req sponsorship.ApplyRequest) (sponsorship.Sponsorship, error)
	List(ctx context.Context, status *sponsorship.Status) ([]sponsorship.Sponsorship, error)
	SetStatus(ctx context.Context, id string, status sponsorship.Status) (sponsorship.Sponsorship, error)
}

// SponsorshipsHandler takes sponsorship applications from members and lets
// admins decide them, mirroring event moderation.
type SponsorshipsHandler struct {
	repo SponsorshipsRepository
}

func NewSponsorshipsHandler(repo SponsorshipsRepository) *SponsorshipsHandler {
	return &SponsorshipsHandler{repo: repo}
}

func (h *SponsorshipsHandler) Apply(ctx *gin.Context) {
	var req sponsorship.ApplyRequest

	if !BindJSON(ctx, &req) {
		return
	}

	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.SubmitterID = memberID

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not submit sponsorship application")
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *SponsorshipsHandler) List(ctx *gin.Context) {
	var status *sponsorship.Status

	if raw := ctx.Query("status"); raw != "" {
		s := sponsorship.Status(raw)
		if !s.Valid() {
			RespondBadRequest(ctx, "status must be one of pending, approved, rejected", nil)
			return
		}
		status = &s
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.List(cctx, status)
	if err != nil {
		RespondInternal(ctx, "Could not list sponsorships")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *SponsorshipsHandler) Approve(ctx *gin.Context) {
	h.setStatus(ctx, sponsorship.StatusApproved)
}

func (h *SponsorshipsHandler) Reject(ctx *gin.Context) {
	h.setStatus(ctx, sponsorship.StatusRejected)
}

func (h *SponsorshipsHandler) setStatus(ctx *gin.Context, status sponsorship.Status) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "sponsorship id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.SetStatus(cctx, id, status)
	if err != nil {
		if errors.Is(err, sponsorship.ErrNotFound) {
			RespondNotFound(ctx, "Sponsorship not found")
			return
		}
		RespondInternal(ctx, "Could not update sponsorship")
		return
	}

	ctx.JSON(http.StatusOK, s)
}
