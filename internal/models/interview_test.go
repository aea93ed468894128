package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionHappyPath(t *testing.T) {
	assert.True(t, CanTransition(InterviewScheduled, InterviewInProgress))
	assert.True(t, CanTransition(InterviewInProgress, InterviewCompleted))
	assert.True(t, CanTransition(InterviewScheduled, InterviewCancelled))
	assert.True(t, CanTransition(InterviewInProgress, InterviewCancelled))
}

func TestCanTransitionRejectsTerminalMoves(t *testing.T) {
	assert.False(t, CanTransition(InterviewCompleted, InterviewScheduled))
	assert.False(t, CanTransition(InterviewCompleted, InterviewInProgress))
	assert.False(t, CanTransition(InterviewCancelled, InterviewScheduled))
	assert.False(t, CanTransition(InterviewScheduled, InterviewCompleted), "scheduled may not skip in_progress")
}

func TestCanTransitionIdempotent(t *testing.T) {
	for _, s := range []InterviewStatus{InterviewScheduled, InterviewInProgress, InterviewCompleted, InterviewCancelled} {
		assert.True(t, CanTransition(s, s))
	}
}

func TestInterviewOverlaps(t *testing.T) {
	base := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	a := Interview{StartTime: base, EndTime: base.Add(30 * time.Minute)}
	b := Interview{StartTime: base.Add(30 * time.Minute), EndTime: base.Add(60 * time.Minute)}
	c := Interview{StartTime: base.Add(15 * time.Minute), EndTime: base.Add(45 * time.Minute)}

	assert.False(t, a.Overlaps(b), "touching intervals do not overlap")
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}
