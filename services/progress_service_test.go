package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"habitLoopAPI/internal/types/progress"
)

func strPtr(s string) *string { return &s }

func TestLogProgressUpsertsByDate(t *testing.T) {
	db := setupTestDB(t)
	challenges := NewChallengeService(db)
	svc := NewProgressService(db)
	userID := testUserID()
	ctx := context.Background()

	ch := createTestChallenge(t, challenges, userID, "2024-01-01", "2024-01-30")

	first, err := svc.LogProgress(ctx, ch.ID, userID, &progress.LogProgressRequest{
		Date:   "2024-01-05",
		Status: progress.StatusPartial,
		Note:   strPtr("almost"),
	})
	if err != nil {
		t.Fatalf("First log failed: %v", err)
	}

	second, err := svc.LogProgress(ctx, ch.ID, userID, &progress.LogProgressRequest{
		Date:   "2024-01-05",
		Status: progress.StatusCompleted,
		Note:   strPtr("done after all"),
	})
	if err != nil {
		t.Fatalf("Second log failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Upsert created a second row: %s vs %s", first.ID, second.ID)
	}

	logs, err := svc.GetChallengeProgress(ctx, ch.ID, userID)
	if err != nil {
		t.Fatalf("Failed to list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected exactly one row for the date, got %d", len(logs))
	}
	if logs[0].Status != progress.StatusCompleted || logs[0].Note == nil || *logs[0].Note != "done after all" {
		t.Errorf("Row should reflect the latest call, got %+v", logs[0])
	}
}

func TestLogProgressValidation(t *testing.T) {
	db := setupTestDB(t)
	challenges := NewChallengeService(db)
	svc := NewProgressService(db)
	userID := testUserID()
	ctx := context.Background()

	ch := createTestChallenge(t, challenges, userID, "2024-01-01", "2024-01-30")

	if _, err := svc.LogProgress(ctx, ch.ID, userID, &progress.LogProgressRequest{
		Date:   "2024-01-05",
		Status: "done",
	}); err == nil {
		t.Error("Expected invalid status to be rejected")
	}

	if _, err := svc.LogProgress(ctx, ch.ID, userID, &progress.LogProgressRequest{
		Date:   "Jan 5 2024",
		Status: progress.StatusCompleted,
	}); err == nil {
		t.Error("Expected malformed date to be rejected")
	}

	if _, err := svc.LogProgress(ctx, ch.ID, testUserID(), &progress.LogProgressRequest{
		Date:   "2024-01-05",
		Status: progress.StatusCompleted,
	}); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("Expected ErrNotParticipant for a stranger, got %v", err)
	}

	if _, err := svc.LogProgress(ctx, uuid.New(), userID, &progress.LogProgressRequest{
		Date:   "2024-01-05",
		Status: progress.StatusCompleted,
	}); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("Expected ErrChallengeNotFound, got %v", err)
	}
}

func TestGetChallengeStatsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	challenges := NewChallengeService(db)
	svc := NewProgressService(db)
	userID := testUserID()
	ctx := context.Background()

	ch := createTestChallenge(t, challenges, userID, "2024-01-10", "2024-01-15")

	entries := []struct {
		date   string
		status progress.Status
	}{
		{"2024-01-10", progress.StatusCompleted},
		{"2024-01-11", progress.StatusCompleted},
		{"2024-01-12", progress.StatusMissed},
		{"2024-01-13", progress.StatusCompleted},
		{"2024-01-14", progress.StatusCompleted},
		{"2024-01-15", progress.StatusCompleted},
	}
	for _, e := range entries {
		if _, err := svc.LogProgress(ctx, ch.ID, userID, &progress.LogProgressRequest{
			Date:   e.date,
			Status: e.status,
		}); err != nil {
			t.Fatalf("Failed to log %s: %v", e.date, err)
		}
	}

	got, err := svc.GetChallengeStats(ctx, ch.ID, userID)
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}

	if got.TotalDays != 6 {
		t.Errorf("TotalDays = %d, want 6", got.TotalDays)
	}
	if got.CompletedDays != 5 {
		t.Errorf("CompletedDays = %d, want 5", got.CompletedDays)
	}
	if got.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3 (trailing run only)", got.CurrentStreak)
	}
	if len(got.Logs) != 6 {
		t.Errorf("Expected all 6 logs in the response, got %d", len(got.Logs))
	}
}

func TestGetChallengeStatsMissingChallenge(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProgressService(db)

	got, err := svc.GetChallengeStats(context.Background(), uuid.New(), testUserID())
	if err != nil {
		t.Fatalf("Missing challenge should degrade to zeroed stats, got error %v", err)
	}

	if got.TotalDays != 0 || got.CompletedDays != 0 || got.Percentage != 0 || got.CurrentStreak != 0 {
		t.Errorf("Expected zeroed stats, got %+v", got)
	}
	if got.Logs == nil || len(got.Logs) != 0 {
		t.Errorf("Expected empty log list, got %v", got.Logs)
	}
}

func TestGetDailyProgressAcrossChallenges(t *testing.T) {
	db := setupTestDB(t)
	challenges := NewChallengeService(db)
	svc := NewProgressService(db)
	userID := testUserID()
	ctx := context.Background()

	chA := createTestChallenge(t, challenges, userID, "2024-01-01", "2024-01-30")
	chB := createTestChallenge(t, challenges, userID, "2024-01-01", "2024-01-30")

	for _, id := range []uuid.UUID{chA.ID, chB.ID} {
		if _, err := svc.LogProgress(ctx, id, userID, &progress.LogProgressRequest{
			Date:   "2024-01-07",
			Status: progress.StatusCompleted,
		}); err != nil {
			t.Fatalf("Failed to log: %v", err)
		}
	}

	logs, err := svc.GetDailyProgress(ctx, userID, "2024-01-07")
	if err != nil {
		t.Fatalf("Failed to get daily progress: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("Expected logs from both challenges, got %d", len(logs))
	}
}
