package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 9, hour, min, 0, 0, time.UTC)
}

func TestFindConflicts_OverlapDetected(t *testing.T) {
	existing := []Session{{ID: "s1", Label: "Yoga", StartTime: at(10, 0), DurationMinutes: 60}}
	res := FindConflicts(Candidate{Start: at(10, 30), DurationMinutes: 60}, existing)

	require.True(t, res.HasConflicts)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "s1", res.Conflicts[0].ID)
	assert.Equal(t, "Yoga", res.Conflicts[0].Label)
}

func TestFindConflicts_TouchingBoundariesDoNotConflict(t *testing.T) {
	existing := []Session{{ID: "s1", StartTime: at(10, 0), DurationMinutes: 60}}

	after := FindConflicts(Candidate{Start: at(11, 0), DurationMinutes: 60}, existing)
	assert.False(t, after.HasConflicts)

	before := FindConflicts(Candidate{Start: at(9, 0), DurationMinutes: 60}, existing)
	assert.False(t, before.HasConflicts)
}

func TestFindConflicts_ContainmentConflicts(t *testing.T) {
	existing := []Session{{ID: "s1", StartTime: at(10, 0), DurationMinutes: 120}}
	res := FindConflicts(Candidate{Start: at(10, 30), DurationMinutes: 30}, existing)
	assert.True(t, res.HasConflicts)
}

func TestFindConflicts_ExcludedSessionIgnored(t *testing.T) {
	existing := []Session{{ID: "s1", StartTime: at(10, 0), DurationMinutes: 60}}
	res := FindConflicts(Candidate{Start: at(10, 0), DurationMinutes: 60, ExcludeID: "s1"}, existing)
	assert.False(t, res.HasConflicts)
}

func TestFindConflicts_HostFilterApplies(t *testing.T) {
	existing := []Session{
		{ID: "s1", HostID: "coach-a", StartTime: at(10, 0), DurationMinutes: 60},
		{ID: "s2", HostID: "coach-b", StartTime: at(10, 0), DurationMinutes: 60},
	}
	res := FindConflicts(Candidate{Start: at(10, 0), DurationMinutes: 60, HostID: "coach-b"}, existing)
	require.True(t, res.HasConflicts)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "s2", res.Conflicts[0].ID)
}

func TestFindConflicts_CancelledSessionsSkipped(t *testing.T) {
	existing := []Session{{ID: "s1", StartTime: at(10, 0), DurationMinutes: 60, Cancelled: true}}
	res := FindConflicts(Candidate{Start: at(10, 0), DurationMinutes: 60}, existing)
	assert.False(t, res.HasConflicts)
	assert.NotNil(t, res.Conflicts)
}

func TestFindConflicts_MultipleConflictsReturned(t *testing.T) {
	existing := []Session{
		{ID: "s1", StartTime: at(9, 30), DurationMinutes: 60},
		{ID: "s2", StartTime: at(10, 30), DurationMinutes: 60},
		{ID: "s3", StartTime: at(12, 0), DurationMinutes: 60},
	}
	res := FindConflicts(Candidate{Start: at(10, 0), DurationMinutes: 60}, existing)
	require.True(t, res.HasConflicts)
	assert.Len(t, res.Conflicts, 2)
}
