package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitLoopAPI/internal/stats"
	"habitLoopAPI/internal/types/challenge"
	"habitLoopAPI/internal/types/progress"
)

var ErrNotParticipant = errors.New("user is not a participant of this challenge")

type ProgressService struct {
	db *pgxpool.Pool
}

func NewProgressService(db *pgxpool.Pool) *ProgressService {
	return &ProgressService{db: db}
}

// LogProgress records the user's check-in for one calendar day. A second
// call for the same (challenge, user, date) updates status and note in
// place; the unique key on progress_logs guarantees a single row even under
// concurrent submissions.
func (s *ProgressService) LogProgress(ctx context.Context, challengeID uuid.UUID, userID string, req *progress.LogProgressRequest) (*progress.Log, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("invalid status %q: expected completed, partial or missed", req.Status)
	}

	var isParticipant bool
	err = s.db.QueryRow(ctx, `
	SELECT EXISTS(SELECT 1 FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2)
	`, challengeID, userID).Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !isParticipant {
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM challenges WHERE id = $1)`, challengeID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check challenge: %w", err)
		}
		if !exists {
			return nil, ErrChallengeNotFound
		}
		return nil, ErrNotParticipant
	}

	l := &progress.Log{
		ChallengeID: challengeID,
		UserID:      userID,
	}
	query := `
	INSERT INTO progress_logs (id, challenge_id, user_id, date, status, note, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (challenge_id, user_id, date)
	DO UPDATE SET status = $5, note = $6
	RETURNING id, date, status, note, created_at
	`
	var d time.Time
	err = s.db.QueryRow(ctx, query,
		uuid.New(), challengeID, userID, date, req.Status, req.Note,
	).Scan(&l.ID, &d, &l.Status, &l.Note, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log progress: %w", err)
	}
	l.Date = d.Format(challenge.DateLayout)

	log.Printf("LogProgress: %s logged %s for challenge %s on %s", userID, l.Status, challengeID, l.Date)
	return l, nil
}

func (s *ProgressService) queryLogs(ctx context.Context, query string, args ...any) ([]progress.Log, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress logs: %w", err)
	}
	defer rows.Close()

	logs := []progress.Log{}
	for rows.Next() {
		var l progress.Log
		var d time.Time
		err := rows.Scan(&l.ID, &l.ChallengeID, &l.UserID, &d, &l.Status, &l.Note, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress log: %w", err)
		}
		l.Date = d.Format(challenge.DateLayout)
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress logs: %w", err)
	}
	return logs, nil
}

// GetChallengeProgress returns one user's logs for a challenge, oldest
// first — the order the stats calculation expects.
func (s *ProgressService) GetChallengeProgress(ctx context.Context, challengeID uuid.UUID, userID string) ([]progress.Log, error) {
	return s.queryLogs(ctx, `
	SELECT id, challenge_id, user_id, date, status, note, created_at
	FROM progress_logs
	WHERE challenge_id = $1 AND user_id = $2
	ORDER BY date ASC
	`, challengeID, userID)
}

// GetChallengeFeed returns every participant's logs for a challenge, newest
// first, for the detail-page activity feed.
func (s *ProgressService) GetChallengeFeed(ctx context.Context, challengeID uuid.UUID) ([]progress.Log, error) {
	return s.queryLogs(ctx, `
	SELECT id, challenge_id, user_id, date, status, note, created_at
	FROM progress_logs
	WHERE challenge_id = $1
	ORDER BY date DESC, created_at DESC
	`, challengeID)
}

// GetDailyProgress returns the user's logs across all challenges for one
// calendar day, for the dashboard's "today" panel.
func (s *ProgressService) GetDailyProgress(ctx context.Context, userID string, dateStr string) ([]progress.Log, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return s.queryLogs(ctx, `
	SELECT id, challenge_id, user_id, date, status, note, created_at
	FROM progress_logs
	WHERE user_id = $1 AND date = $2
	ORDER BY created_at ASC
	`, userID, date)
}

// GetChallengeStats runs the pure stats calculation over the challenge's
// declared date span and the user's logs. A missing challenge degrades to
// zeroed stats rather than an error: this is a read model over possibly
// incomplete data.
func (s *ProgressService) GetChallengeStats(ctx context.Context, challengeID uuid.UUID, userID string) (stats.ChallengeStats, error) {
	var start, end time.Time
	err := s.db.QueryRow(ctx,
		`SELECT start_date, end_date FROM challenges WHERE id = $1`, challengeID).Scan(&start, &end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats.Zero(), nil
		}
		return stats.Zero(), fmt.Errorf("failed to get challenge: %w", err)
	}

	logs, err := s.GetChallengeProgress(ctx, challengeID, userID)
	if err != nil {
		return stats.Zero(), err
	}

	return stats.Calculate(start, end, logs), nil
}
