package registration

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("registration not found")

type CreateRegistrationRequest struct {
	EventID string `json:"-"`
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
}

// Result reports the registration count after a successful registration.
type Result struct {
	Registration    Registration `json:"registration"`
	RegisteredCount int          `json:"registeredCount"`
	Capacity        int          `json:"capacity"`
}

func NewFromCreateRequest(req CreateRegistrationRequest) Registration {
	return Registration{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}
}
