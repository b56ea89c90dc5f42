package services

import (
	"context"
	"errors"
	"testing"

	"habitLoopAPI/internal/types/profile"
	"habitLoopAPI/internal/types/progress"
)

func TestUpsertProfilePreservesExistingFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	userID := testUserID()
	ctx := context.Background()

	t.Cleanup(func() {
		db.Exec(context.Background(), "DELETE FROM user_profiles WHERE user_id = $1", userID)
	})

	created, err := svc.UpsertProfile(ctx, userID, &profile.UpsertProfileRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
	})
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	if created.FirstName != "Ada" {
		t.Errorf("FirstName = %q, want Ada", created.FirstName)
	}

	// A sparse second call must not wipe fields it does not carry.
	updated, err := svc.UpsertProfile(ctx, userID, &profile.UpsertProfileRequest{
		ImageURL: "https://example.com/ada.png",
	})
	if err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}
	if updated.FirstName != "Ada" || updated.Email != "ada@example.com" {
		t.Errorf("Sparse upsert wiped identity fields: %+v", updated)
	}
	if updated.ImageURL != "https://example.com/ada.png" {
		t.Errorf("ImageURL not updated: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}

	got, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("UserID = %q, want %q", got.UserID, userID)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)

	_, err := svc.GetProfile(context.Background(), testUserID())
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestDashboardStatsDerivedOnRead(t *testing.T) {
	db := setupTestDB(t)
	challenges := NewChallengeService(db)
	progressSvc := NewProgressService(db)
	svc := NewProfileService(db)
	userID := testUserID()
	ctx := context.Background()

	// One past challenge (counts as completed) and one far-future one.
	past := createTestChallenge(t, challenges, userID, "2020-01-01", "2020-01-10")
	createTestChallenge(t, challenges, userID, "2099-01-01", "2099-01-10")

	for _, e := range []struct {
		date   string
		status progress.Status
	}{
		{"2020-01-01", progress.StatusCompleted},
		{"2020-01-02", progress.StatusCompleted},
		{"2020-01-03", progress.StatusMissed},
		{"2020-01-04", progress.StatusCompleted},
	} {
		if _, err := progressSvc.LogProgress(ctx, past.ID, userID, &progress.LogProgressRequest{
			Date:   e.date,
			Status: e.status,
		}); err != nil {
			t.Fatalf("Failed to log: %v", err)
		}
	}

	ds, err := svc.GetDashboardStats(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to get dashboard stats: %v", err)
	}

	if ds.TotalChallenges != 2 {
		t.Errorf("TotalChallenges = %d, want 2", ds.TotalChallenges)
	}
	if ds.CompletedChallenges != 1 {
		t.Errorf("CompletedChallenges = %d, want 1", ds.CompletedChallenges)
	}
	if ds.TotalDays != 3 {
		t.Errorf("TotalDays = %d, want 3 completed logs", ds.TotalDays)
	}
	if ds.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", ds.CurrentStreak)
	}
	if ds.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", ds.LongestStreak)
	}
	if ds.SuccessRate != 50 {
		t.Errorf("SuccessRate = %d, want 50", ds.SuccessRate)
	}
}
