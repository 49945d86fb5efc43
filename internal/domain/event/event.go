package event

import (
	"errors"
	"time"
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

// RequestedItem is one line of the equipment list the submitter asks the club for.
type RequestedItem struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type Event struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Venue           string          `json:"venue"`
	Facilities      []string        `json:"facilities,omitempty"`
	RequestedItems  []RequestedItem `json:"requestedItems,omitempty"`
	Date            time.Time       `json:"date"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	Capacity        int             `json:"capacity"`
	RegistrationFee float64         `json:"registrationFee"`
	Status          Status          `json:"status"`
	SubmitterID     string          `json:"submitterId"`
	RegisteredCount int             `json:"registeredCount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

var ErrNotFound = errors.New("event not found")

// registration would exceed capacity
var ErrEventFull = errors.New("event is full")

// submitter tried to edit or delete an approved event
var ErrApprovedLocked = errors.New("approved event is locked")

type CreateEventRequest struct {
	Name            string          `json:"name" binding:"required,min=3,max=120"`
	Description     string          `json:"description" binding:"omitempty,max=2000"`
	Venue           string          `json:"venue" binding:"required,min=2,max=120"`
	Facilities      []string        `json:"facilities" binding:"omitempty,dive,min=1"`
	RequestedItems  []RequestedItem `json:"requestedItems" binding:"omitempty,dive"`
	Date            time.Time       `json:"date" binding:"required"`
	StartTime       string          `json:"startTime" binding:"required"`
	EndTime         string          `json:"endTime" binding:"required"`
	Capacity        int             `json:"capacity" binding:"required,min=1,max=50000"`
	RegistrationFee float64         `json:"registrationFee" binding:"omitempty,gte=0"`

	// filled in from the authenticated caller, never from the body
	SubmitterID string `json:"-"`
}

// full update payload; partial patches are not supported at the wire level.
type UpdateEventRequest struct {
	Name            string          `json:"name" binding:"required,min=3,max=120"`
	Description     string          `json:"description" binding:"omitempty,max=2000"`
	Venue           string          `json:"venue" binding:"required,min=2,max=120"`
	Facilities      []string        `json:"facilities" binding:"omitempty,dive,min=1"`
	RequestedItems  []RequestedItem `json:"requestedItems" binding:"omitempty,dive"`
	Date            time.Time       `json:"date" binding:"required"`
	StartTime       string          `json:"startTime" binding:"required"`
	EndTime         string          `json:"endTime" binding:"required"`
	Capacity        int             `json:"capacity" binding:"required,min=1,max=50000"`
	RegistrationFee float64         `json:"registrationFee" binding:"omitempty,gte=0"`
}

// Public listing filter (approved events only).
type ListApprovedFilter struct {
	Query  *string
	Limit  int
	Offset int
}

// Admin moderation listing filter.
type ModerationFilter struct {
	Status *Status
	Query  *string
	Sort   string // date | name | capacity
	Order  string // asc | desc
	Page   int
	Limit  int
}
