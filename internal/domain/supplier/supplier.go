package supplier

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type InventoryItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	SupplierID *string   `json:"supplierId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("supplier not found")
var ErrItemNotFound = errors.New("inventory item not found")

// adjustment would drive the stock count below zero
var ErrInsufficientStock = errors.New("insufficient stock")

type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	ContactName string `json:"contactName" binding:"required,min=2,max=120"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"omitempty,max=30"`
	Category    string `json:"category" binding:"required,min=2,max=80"`
}

type UpdateSupplierRequest = CreateSupplierRequest

type CreateItemRequest struct {
	Name       string  `json:"name" binding:"required,min=2,max=120"`
	Quantity   int     `json:"quantity" binding:"gte=0"`
	UnitPrice  float64 `json:"unitPrice" binding:"required,gte=0"`
	SupplierID *string `json:"supplierId" binding:"omitempty,uuid"`
}

type AdjustItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func NewFromCreateRequest(req CreateSupplierRequest) Supplier {
	now := time.Now()

	return Supplier{
		ID:          uuid.NewString(),
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func NewItemFromCreateRequest(req CreateItemRequest) InventoryItem {
	now := time.Now()

	return InventoryItem{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		SupplierID: req.SupplierID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
