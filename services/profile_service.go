package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitLoopAPI/internal/stats"
	"habitLoopAPI/internal/types/challenge"
	"habitLoopAPI/internal/types/profile"
	"habitLoopAPI/internal/types/progress"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	db *pgxpool.Pool
}

func NewProfileService(db *pgxpool.Pool) *ProfileService {
	return &ProfileService{db: db}
}

// UpsertProfile creates the profile on first sign-in and refreshes the
// identity attributes on later calls. Empty request fields leave existing
// values alone, so a sparse webhook payload never wipes a profile.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, req *profile.UpsertProfileRequest) (*profile.Profile, error) {
	p := &profile.Profile{UserID: userID}

	query := `
	INSERT INTO user_profiles (user_id, first_name, last_name, email, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE SET
		first_name = COALESCE(NULLIF($2, ''), user_profiles.first_name),
		last_name  = COALESCE(NULLIF($3, ''), user_profiles.last_name),
		email      = COALESCE(NULLIF($4, ''), user_profiles.email),
		image_url  = COALESCE(NULLIF($5, ''), user_profiles.image_url),
		updated_at = NOW()
	RETURNING first_name, last_name, email, image_url, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		userID, req.FirstName, req.LastName, req.Email, req.ImageURL,
	).Scan(&p.FirstName, &p.LastName, &p.Email, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p := &profile.Profile{}
	query := `
	SELECT user_id, first_name, last_name, email, image_url, created_at, updated_at
	FROM user_profiles
	WHERE user_id = $1
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	log.Printf("DeleteProfile: removed profile for %s", userID)
	return nil
}

// GetDashboardStats derives the profile counters on read instead of
// maintaining stored aggregates. A "completed" challenge is one the user
// joined whose end date has passed; streaks run over the user's entire
// log history with the same logged-sequence semantics as challenge stats.
func (s *ProfileService) GetDashboardStats(ctx context.Context, userID string) (*profile.DashboardStats, error) {
	ds := &profile.DashboardStats{}

	query := `
	SELECT
		COUNT(*) AS total_challenges,
		COUNT(*) FILTER (WHERE c.end_date < CURRENT_DATE) AS completed_challenges
	FROM challenge_participants p
	INNER JOIN challenges c ON c.id = p.challenge_id
	WHERE p.user_id = $1
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(&ds.TotalChallenges, &ds.CompletedChallenges)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge counts: %w", err)
	}

	rows, err := s.db.Query(ctx, `
	SELECT date, status
	FROM progress_logs
	WHERE user_id = $1
	ORDER BY date ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress history: %w", err)
	}
	defer rows.Close()

	var history []progress.Log
	for rows.Next() {
		var l progress.Log
		var d time.Time
		if err := rows.Scan(&d, &l.Status); err != nil {
			return nil, fmt.Errorf("failed to scan progress history: %w", err)
		}
		l.Date = d.Format(challenge.DateLayout)
		history = append(history, l)
		if l.Status == progress.StatusCompleted {
			ds.TotalDays++
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress history: %w", err)
	}

	ds.CurrentStreak = stats.CurrentStreak(history)
	ds.LongestStreak = stats.LongestStreak(history)
	if ds.TotalChallenges > 0 {
		ds.SuccessRate = int(float64(ds.CompletedChallenges)/float64(ds.TotalChallenges)*100 + 0.5)
	}

	return ds, nil
}
