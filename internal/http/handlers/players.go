package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/player"
)

type PlayersRepository interface {
	Create(ctx context.Context, req player.CreatePlayerRequest) (player.Player, error)
	List(ctx context.Context, team *string) ([]player.Player, error)
	GetByID(ctx context.Context, id string) (player.Player, error)
	Update(ctx context.Context, id string, req player.UpdatePlayerRequest) (player.Player, error)
	Delete(ctx context.Context, id string) error
}

// PlayersHandler manages team rosters (admin only).
type PlayersHandler struct {
	repo PlayersRepository
}

func NewPlayersHandler(repo PlayersRepository) *PlayersHandler {
	return &PlayersHandler{repo: repo}
}

func (h *PlayersHandler) Create(ctx *gin.Context) {
	var req player.CreatePlayerRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not create player")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PlayersHandler) List(ctx *gin.Context) {
	var team *string
	if t := ctx.Query("team"); t != "" {
		team = &t
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.List(cctx, team)
	if err != nil {
		RespondInternal(ctx, "Could not list players")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *PlayersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "player id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, player.ErrNotFound) {
			RespondNotFound(ctx, "Player not found")
			return
		}
		RespondInternal(ctx, "Could not fetch player")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PlayersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "player id must be a valid UUID", nil)
		return
	}

	var req player.UpdatePlayerRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.Update(cctx, id, req)
	if err != nil {
		if errors.Is(err, player.ErrNotFound) {
			RespondNotFound(ctx, "Player not found")
			return
		}
		RespondInternal(ctx, "Could not update player")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PlayersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "player id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, player.ErrNotFound) {
			RespondNotFound(ctx, "Player not found")
			return
		}
		RespondInternal(ctx, "Could not delete player")
		return
	}

	ctx.Status(http.StatusNoContent)
}
