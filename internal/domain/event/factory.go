package event

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateEventRequest) Event {
	now := time.Now()

	return Event{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Description:     req.Description,
		Venue:           req.Venue,
		Facilities:      req.Facilities,
		RequestedItems:  req.RequestedItems,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Capacity:        req.Capacity,
		RegistrationFee: req.RegistrationFee,
		Status:          StatusPending,
		SubmitterID:     req.SubmitterID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
