package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/domain/supplier"
)

type SuppliersRepository interface {
	Create(ctx context.Context, req supplier.CreateSupplierRequest) (supplier.Supplier, error)
	List(ctx context.Context) ([]supplier.Supplier, error)
	Update(ctx context.Context, id string, req supplier.UpdateSupplierRequest) (supplier.Supplier, error)
	Delete(ctx context.Context, id string) error

	CreateItem(ctx context.Context, req supplier.CreateItemRequest) (supplier.InventoryItem, error)
	ListItems(ctx context.Context) ([]supplier.InventoryItem, error)
	AdjustItem(ctx context.Context, id string, delta int) (supplier.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// SuppliersHandler covers vendors and the equipment stock they supply
// (admin only).
type SuppliersHandler struct {
	repo SuppliersRepository
}

func NewSuppliersHandler(repo SuppliersRepository) *SuppliersHandler {
	return &SuppliersHandler{repo: repo}
}

func (h *SuppliersHandler) Create(ctx *gin.Context) {
	var req supplier.CreateSupplierRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not create supplier")
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *SuppliersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list suppliers")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *SuppliersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "supplier id must be a valid UUID", nil)
		return
	}

	var req supplier.UpdateSupplierRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Update(cctx, id, req)
	if err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			RespondNotFound(ctx, "Supplier not found")
			return
		}
		RespondInternal(ctx, "Could not update supplier")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *SuppliersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "supplier id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			RespondNotFound(ctx, "Supplier not found")
			return
		}
		RespondInternal(ctx, "Could not delete supplier")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// --- inventory ---

func (h *SuppliersHandler) CreateItem(ctx *gin.Context) {
	var req supplier.CreateItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	it, err := h.repo.CreateItem(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not create inventory item")
		return
	}

	ctx.JSON(http.StatusCreated, it)
}

func (h *SuppliersHandler) ListItems(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListItems(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list inventory")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// AdjustItem moves stock in or out. Draining below zero is refused with a
// conflict instead of clamping.
func (h *SuppliersHandler) AdjustItem(ctx *gin.Context) {
	id := ctx.Param("itemId")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "item id must be a valid UUID", nil)
		return
	}

	var req supplier.AdjustItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	it, err := h.repo.AdjustItem(cctx, id, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, supplier.ErrItemNotFound):
			RespondNotFound(ctx, "Inventory item not found")
		case errors.Is(err, supplier.ErrInsufficientStock):
			RespondConflict(ctx, "insufficient_stock", "Not enough stock for this adjustment.")
		default:
			RespondInternal(ctx, "Could not adjust inventory item")
		}
		return
	}

	ctx.JSON(http.StatusOK, it)
}

func (h *SuppliersHandler) DeleteItem(ctx *gin.Context) {
	id := ctx.Param("itemId")

	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "item id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.repo.DeleteItem(cctx, id); err != nil {
		if errors.Is(err, supplier.ErrItemNotFound) {
			RespondNotFound(ctx, "Inventory item not found")
			return
		}
		RespondInternal(ctx, "Could not delete inventory item")
		return
	}

	ctx.Status(http.StatusNoContent)
}
