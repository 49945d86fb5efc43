package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/cache"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/domain/member"
	"github.com/sportnest/sportnest/internal/http/middlewares"
)

type EventsRepository interface {
	Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListApproved(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error)
	ListBySubmitter(ctx context.Context, submitterID string) ([]event.Event, error)
	Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventsHandler struct {
	repo      EventsRepository
	listCache *cache.Cache
}

func NewEventsHandler(repo EventsRepository, listCache *cache.Cache) *EventsHandler {
	return &EventsHandler{repo: repo, listCache: listCache}
}

type eventListResponse struct {
	Items []event.Event `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// Submit creates a pending event on behalf of the authenticated member.
func (h *EventsHandler) Submit(ctx *gin.Context) {
	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	// the URL caller is the submitter, never the body
	req.SubmitterID = memberID

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not submit event")
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

// ListApproved is the public calendar: approved events only.
func (h *EventsHandler) ListApproved(ctx *gin.Context) {
	q := ctx.Query("q")
	page := parsePositiveInt(ctx.Query("page"), 1)
	limit := parsePositiveInt(ctx.Query("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	cacheKey := "events:approved:q=" + q + ":page=" + strconv.Itoa(page) + ":limit=" + strconv.Itoa(limit)

	if h.listCache != nil {
		if v, ok := h.listCache.Get(cacheKey); ok {
			if resp, ok := v.(eventListResponse); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	filter := event.ListApprovedFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if q != "" {
		filter.Query = &q
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.repo.ListApproved(cctx, filter)
	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	resp := eventListResponse{Items: items, Total: total, Page: page, Limit: limit}

	if h.listCache != nil {
		h.listCache.Set(cacheKey, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

// Get returns one approved event. Pending and rejected events stay hidden
// from the public view; submitters use their own listing instead.
func (h *EventsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not fetch event")
		return
	}

	if e.Status != event.StatusApproved {
		RespondNotFound(ctx, "Event not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

// ListMine returns the caller's own submissions in every status.
func (h *EventsHandler) ListMine(ctx *gin.Context) {
	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListBySubmitter(cctx, memberID)
	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *EventsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	var req event.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not update event")
		return
	}

	if !h.canMutate(ctx, existing) {
		return
	}

	updated, err := h.repo.Update(cctx, id, req)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not update event")
		return
	}

	h.invalidateListings()

	ctx.JSON(http.StatusOK, updated)
}

func (h *EventsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not delete event")
		return
	}

	if !h.canMutate(ctx, existing) {
		return
	}

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not delete event")
		return
	}

	h.invalidateListings()

	ctx.Status(http.StatusNoContent)
}

// canMutate enforces the edit/delete rule: the submitter may change the
// event while it has not been approved; admins may always change it. It
// writes the error response itself when the answer is no.
func (h *EventsHandler) canMutate(ctx *gin.Context, e event.Event) bool {
	memberID, ok := middlewares.MemberIDFromContext(ctx)
	if !ok || memberID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return false
	}

	role, _ := middlewares.RoleFromContext(ctx)
	if role == member.RoleAdmin {
		return true
	}

	if e.SubmitterID != memberID {
		RespondForbidden(ctx, "You can only change your own events")
		return false
	}

	if e.Status == event.StatusApproved {
		RespondError(ctx, http.StatusForbidden, "approved_locked", "Approved events can only be changed by an admin.", nil)
		return false
	}

	return true
}

func (h *EventsHandler) invalidateListings() {
	if h.listCache != nil {
		h.listCache.Clear()
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
