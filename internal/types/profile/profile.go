package profile

import "time"

// Profile holds the identity attributes synced from Clerk. Aggregate
// counters are not stored here; they are derived on read (DashboardStats)
// so they can never drift from the underlying log rows.
type Profile struct {
	UserID    string    `json:"userId"` // Clerk user ID
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpsertProfileRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type DashboardStats struct {
	TotalChallenges     int `json:"totalChallenges"`
	CompletedChallenges int `json:"completedChallenges"`
	CurrentStreak       int `json:"currentStreak"`
	LongestStreak       int `json:"longestStreak"`
	TotalDays           int `json:"totalDays"`
	SuccessRate         int `json:"successRate"`
}
