package coach

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Coach struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Salary    float64   `json:"salary"`
	HiredAt   time.Time `json:"hiredAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("coach not found")

type CreateCoachRequest struct {
	Name      string    `json:"name" binding:"required,min=2,max=120"`
	Specialty string    `json:"specialty" binding:"required,min=2,max=120"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"omitempty,max=30"`
	Salary    float64   `json:"salary" binding:"required,gt=0"`
	HiredAt   time.Time `json:"hiredAt" binding:"required"`
}

type UpdateCoachRequest struct {
	Name      string    `json:"name" binding:"required,min=2,max=120"`
	Specialty string    `json:"specialty" binding:"required,min=2,max=120"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"omitempty,max=30"`
	Salary    float64   `json:"salary" binding:"required,gt=0"`
	HiredAt   time.Time `json:"hiredAt" binding:"required"`
}

func NewFromCreateRequest(req CreateCoachRequest) Coach {
	now := time.Now()

	return Coach{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Specialty: req.Specialty,
		Email:     req.Email,
		Phone:     req.Phone,
		Salary:    req.Salary,
		HiredAt:   req.HiredAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
