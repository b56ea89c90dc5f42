package challenge

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used everywhere in the API.
// Challenge dates carry no time-of-day component.
const DateLayout = "2006-01-02"

type Challenge struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	CreatedBy    string    `json:"createdBy"` // Clerk user ID
	StartDate    string    `json:"startDate"` // YYYY-MM-DD
	EndDate      string    `json:"endDate"`   // YYYY-MM-DD
	IsPublic     bool      `json:"isPublic"`
	Participants []string  `json:"participants"` // Clerk user IDs, joined order
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsPublic    bool   `json:"isPublic"`
}
