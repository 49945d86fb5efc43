package plan

import (
	"errors"
	"time"
)

type Plan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DurationDays int       `json:"durationDays"`
	Price        float64   `json:"price"`
	Perks        []string  `json:"perks,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Membership is the current plan subscription of one member.
type Membership struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	PlanID    string    `json:"planId"`
	PlanName  string    `json:"planName"`
	StartedAt time.Time `json:"startedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m Membership) Active(now time.Time) bool {
	return now.Before(m.ExpiresAt)
}

var ErrPlanNotFound = errors.New("plan not found")
var ErrNoMembership = errors.New("member has no membership")

type ChoosePlanRequest struct {
	PlanID string `json:"planId" binding:"required,uuid"`
}
