package progress

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusMissed    Status = "missed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusMissed:
		return true
	}
	return false
}

// Log is one participant's daily check-in for a challenge. Exactly one row
// exists per (challengeId, userId, date).
type Log struct {
	ID          uuid.UUID `json:"id"`
	ChallengeID uuid.UUID `json:"challengeId"`
	UserID      string    `json:"userId"` // Clerk user ID
	Date        string    `json:"date"`   // YYYY-MM-DD
	Status      Status    `json:"status"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LogProgressRequest struct {
	Date   string  `json:"date"`
	Status Status  `json:"status"`
	Note   *string `json:"note,omitempty"`
}
