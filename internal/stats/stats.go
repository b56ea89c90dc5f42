package stats

import (
	"math"
	"sort"
	"time"

	"habitLoopAPI/internal/types/progress"
)

// ChallengeStats is the derived view of one user's progress in one
// challenge. Nothing here is persisted; it is recomputed on every read.
type ChallengeStats struct {
	TotalDays     int            `json:"totalDays"`
	CompletedDays int            `json:"completedDays"`
	Percentage    float64        `json:"percentage"`
	CurrentStreak int            `json:"currentStreak"`
	Logs          []progress.Log `json:"logs"`
}

// Zero is what callers return when the challenge itself is missing:
// zeroed counters and an empty (non-nil) log list.
func Zero() ChallengeStats {
	return ChallengeStats{Logs: []progress.Log{}}
}

// Calculate derives the display statistics for a challenge date span and
// one user's log rows.
//
// startDate and endDate must be calendar dates (midnight, no time-of-day
// component); a timestamp with a partial day skews the inclusive day count.
// The date-range validity (start <= end) is enforced at challenge creation,
// not here.
//
// completedDays counts logged days only. Days in range with no log row do
// not count against it, and nothing caps it at totalDays if a caller
// supplies more completed logs than days in the range.
func Calculate(startDate, endDate time.Time, logs []progress.Log) ChallengeStats {
	totalDays := int(math.Ceil(endDate.Sub(startDate).Hours()/24)) + 1

	completed := 0
	for _, l := range logs {
		if l.Status == progress.StatusCompleted {
			completed++
		}
	}

	percentage := 0.0
	if totalDays > 0 {
		percentage = float64(completed) / float64(totalDays) * 100
	}

	sorted := make([]progress.Log, 0, len(logs))
	sorted = append(sorted, logs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	return ChallengeStats{
		TotalDays:     totalDays,
		CompletedDays: completed,
		Percentage:    percentage,
		CurrentStreak: CurrentStreak(sorted),
		Logs:          sorted,
	}
}

// CurrentStreak counts the trailing contiguous run of "completed" entries,
// scanning the date-ascending log list from the most recent entry backward.
// A calendar day with no log row at all does not break the run: the streak
// measures consecutive logged check-ins, not consecutive calendar days.
// "partial" ends the run the same way "missed" does.
func CurrentStreak(sortedLogs []progress.Log) int {
	streak := 0
	for i := len(sortedLogs) - 1; i >= 0; i-- {
		if sortedLogs[i].Status != progress.StatusCompleted {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive "completed" entries
// anywhere in the date-ascending log list, with the same logged-sequence
// semantics as CurrentStreak.
func LongestStreak(sortedLogs []progress.Log) int {
	longest, run := 0, 0
	for _, l := range sortedLogs {
		if l.Status == progress.StatusCompleted {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
