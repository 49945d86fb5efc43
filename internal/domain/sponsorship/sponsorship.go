package sponsorship

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Sponsorship struct {
	ID           string    `json:"id"`
	Company      string    `json:"company"`
	ContactEmail string    `json:"contactEmail"`
	Amount       float64   `json:"amount"`
	Message      string    `json:"message,omitempty"`
	Status       Status    `json:"status"`
	SubmitterID  string    `json:"submitterId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("sponsorship not found")

type ApplyRequest struct {
	Company      string  `json:"company" binding:"required,min=2,max=160"`
	ContactEmail string  `json:"contactEmail" binding:"required,email"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Message      string  `json:"message" binding:"omitempty,max=2000"`

	SubmitterID string `json:"-"`
}

func NewFromApplyRequest(req ApplyRequest) Sponsorship {
	now := time.Now()

	return Sponsorship{
		ID:           uuid.NewString(),
		Company:      req.Company,
		ContactEmail: req.ContactEmail,
		Amount:       req.Amount,
		Message:      req.Message,
		Status:       StatusPending,
		SubmitterID:  req.SubmitterID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
