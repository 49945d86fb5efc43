package player

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Team      string    `json:"team"`
	MemberID  *string   `json:"memberId,omitempty"` // link to a club member account, if any
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("player not found")

type CreatePlayerRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=120"`
	Position string  `json:"position" binding:"required,min=2,max=60"`
	Team     string  `json:"team" binding:"required,min=2,max=120"`
	MemberID *string `json:"memberId" binding:"omitempty,uuid"`
}

type UpdatePlayerRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=120"`
	Position string  `json:"position" binding:"required,min=2,max=60"`
	Team     string  `json:"team" binding:"required,min=2,max=120"`
	MemberID *string `json:"memberId" binding:"omitempty,uuid"`
}

func NewFromCreateRequest(req CreatePlayerRequest) Player {
	now := time.Now()

	return Player{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Position:  req.Position,
		Team:      req.Team,
		MemberID:  req.MemberID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
