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

	"habitLoopAPI/internal/types/challenge"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrAlreadyJoined     = errors.New("user already joined this challenge")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
)

type ChallengeService struct {
	db *pgxpool.Pool
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{db: db}
}

// parseDate rejects anything that is not a bare YYYY-MM-DD calendar date.
// Timestamps with a time-of-day component would skew the inclusive day
// count in the stats calculation, so they never get past this boundary.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(challenge.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// CreateChallenge inserts the challenge, auto-enrolls the creator as its
// first participant and makes sure the creator has a profile row. The three
// writes happen in one transaction.
func (s *ChallengeService) CreateChallenge(ctx context.Context, userID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ch := &challenge.Challenge{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		CreatedBy:    userID,
		StartDate:    start.Format(challenge.DateLayout),
		EndDate:      end.Format(challenge.DateLayout),
		IsPublic:     req.IsPublic,
		Participants: []string{userID},
	}

	query := `
	INSERT INTO challenges (id, title, description, category, created_by, start_date, end_date, is_public, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	RETURNING created_at
	`
	err = tx.QueryRow(ctx, query,
		ch.ID, ch.Title, ch.Description, ch.Category, ch.CreatedBy, start, end, ch.IsPublic,
	).Scan(&ch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO challenge_participants (challenge_id, user_id, joined_at)
	VALUES ($1, $2, NOW())
	`, ch.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO user_profiles (user_id, created_at, updated_at)
	VALUES ($1, NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure creator profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit challenge: %w", err)
	}

	log.Printf("CreateChallenge: %s created challenge %s (%s)", userID, ch.ID, ch.Title)
	return ch, nil
}

const challengeColumns = `
	c.id,
	c.title,
	c.description,
	c.category,
	c.created_by,
	c.start_date,
	c.end_date,
	c.is_public,
	c.created_at,
	COALESCE(
		(SELECT ARRAY_AGG(cp.user_id ORDER BY cp.joined_at)
		 FROM challenge_participants cp
		 WHERE cp.challenge_id = c.id),
		'{}'
	) AS participants
`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	ch := &challenge.Challenge{}
	var start, end time.Time
	err := row.Scan(
		&ch.ID,
		&ch.Title,
		&ch.Description,
		&ch.Category,
		&ch.CreatedBy,
		&start,
		&end,
		&ch.IsPublic,
		&ch.CreatedAt,
		&ch.Participants,
	)
	if err != nil {
		return nil, err
	}
	ch.StartDate = start.Format(challenge.DateLayout)
	ch.EndDate = end.Format(challenge.DateLayout)
	return ch, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id uuid.UUID) (*challenge.Challenge, error) {
	ch, err := scanChallenge(s.db.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return ch, nil
}

func (s *ChallengeService) listChallenges(ctx context.Context, query string, args ...any) ([]*challenge.Challenge, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []*challenge.Challenge{}
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}
	return challenges, nil
}

func (s *ChallengeService) GetPublicChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	return s.listChallenges(ctx,
		`SELECT `+challengeColumns+` FROM challenges c WHERE c.is_public ORDER BY c.created_at DESC`)
}

func (s *ChallengeService) GetChallengesByCreator(ctx context.Context, userID string) ([]*challenge.Challenge, error) {
	return s.listChallenges(ctx,
		`SELECT `+challengeColumns+` FROM challenges c WHERE c.created_by = $1 ORDER BY c.created_at DESC`,
		userID)
}

func (s *ChallengeService) GetChallengesByParticipant(ctx context.Context, userID string) ([]*challenge.Challenge, error) {
	return s.listChallenges(ctx, `
	SELECT `+challengeColumns+`
	FROM challenges c
	INNER JOIN challenge_participants p ON p.challenge_id = c.id AND p.user_id = $1
	ORDER BY c.created_at DESC
	`, userID)
}

// JoinChallenge adds the user to the participant set. The insert is atomic:
// two users joining at once both land, and a repeated join by the same user
// conflicts on the primary key instead of racing a read-modify-write of the
// full set.
func (s *ChallengeService) JoinChallenge(ctx context.Context, challengeID uuid.UUID, userID string) error {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM challenges WHERE id = $1)`, challengeID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check challenge: %w", err)
	}
	if !exists {
		return ErrChallengeNotFound
	}

	result, err := s.db.Exec(ctx, `
	INSERT INTO challenge_participants (challenge_id, user_id, joined_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (challenge_id, user_id) DO NOTHING
	`, challengeID, userID)
	if err != nil {
		return fmt.Errorf("failed to join challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyJoined
	}

	log.Printf("JoinChallenge: %s joined %s", userID, challengeID)
	return nil
}

// LeaveChallenge removes the user from the participant set. Leaving a
// challenge the user never joined is a no-op, not an error.
func (s *ChallengeService) LeaveChallenge(ctx context.Context, challengeID uuid.UUID, userID string) error {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM challenges WHERE id = $1)`, challengeID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check challenge: %w", err)
	}
	if !exists {
		return ErrChallengeNotFound
	}

	_, err = s.db.Exec(ctx, `
	DELETE FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2
	`, challengeID, userID)
	if err != nil {
		return fmt.Errorf("failed to leave challenge: %w", err)
	}
	return nil
}
