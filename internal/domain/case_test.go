package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var filedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func deadline(days int) time.Time {
	return filedAt.Add(time.Duration(days) * 24 * time.Hour)
}

func TestDeriveTimingComplaintPastDeadline(t *testing.T) {
	now := filedAt.Add(16 * 24 * time.Hour)

	derived := DeriveTiming(CaseStatusInProgress, deadline(15), now, 3)

	assert.Equal(t, CaseStatusOverdue, derived.Status)
	assert.Equal(t, TrafficRed, derived.TrafficLight)
	assert.Equal(t, -1, derived.DaysRemaining)
}

func TestDeriveTimingSuggestionEarly(t *testing.T) {
	now := filedAt.Add(3 * 24 * time.Hour)

	derived := DeriveTiming(CaseStatusPending, deadline(30), now, 3)

	assert.Equal(t, CaseStatusPending, derived.Status)
	assert.Equal(t, TrafficGreen, derived.TrafficLight)
	assert.Equal(t, 27, derived.DaysRemaining)
}

func TestDeriveTimingPetitionNearDeadline(t *testing.T) {
	now := filedAt.Add(13 * 24 * time.Hour)

	derived := DeriveTiming(CaseStatusPending, deadline(15), now, 3)

	assert.Equal(t, CaseStatusPending, derived.Status)
	assert.Equal(t, TrafficYellow, derived.TrafficLight)
	assert.Equal(t, 2, derived.DaysRemaining)
}

func TestDeriveTimingAtDeadlineBoundary(t *testing.T) {
	derived := DeriveTiming(CaseStatusPending, deadline(15), deadline(15), 3)

	assert.Equal(t, CaseStatusPending, derived.Status)
	assert.Equal(t, TrafficYellow, derived.TrafficLight)
	assert.Equal(t, 0, derived.DaysRemaining)

	justPast := DeriveTiming(CaseStatusPending, deadline(15), deadline(15).Add(time.Hour), 3)
	assert.Equal(t, CaseStatusOverdue, justPast.Status)
	assert.Equal(t, TrafficRed, justPast.TrafficLight)
	assert.Equal(t, -1, justPast.DaysRemaining)
}

func TestDeriveTimingOverdueIsStable(t *testing.T) {
	now := filedAt.Add(20 * 24 * time.Hour)

	derived := DeriveTiming(CaseStatusOverdue, deadline(15), now, 3)

	assert.Equal(t, CaseStatusOverdue, derived.Status)
	assert.Equal(t, TrafficRed, derived.TrafficLight)
}

func TestDeriveTimingIdempotent(t *testing.T) {
	now := filedAt.Add(14 * 24 * time.Hour)

	first := DeriveTiming(CaseStatusInProgress, deadline(15), now, 3)
	second := DeriveTiming(first.Status, deadline(15), now, 3)

	assert.Equal(t, first, second)

	overdueNow := filedAt.Add(20 * 24 * time.Hour)
	first = DeriveTiming(CaseStatusInProgress, deadline(15), overdueNow, 3)
	second = DeriveTiming(first.Status, deadline(15), overdueNow, 3)
	assert.Equal(t, first, second)
}

func TestDeriveTimingTerminalFrozen(t *testing.T) {
	now := filedAt.Add(100 * 24 * time.Hour)

	for _, status := range []CaseStatus{CaseStatusResolved, CaseStatusClosed} {
		derived := DeriveTiming(status, deadline(15), now, 3)
		assert.Equal(t, status, derived.Status)
		assert.Equal(t, TrafficGreen, derived.TrafficLight)
		assert.True(t, derived.Frozen)
	}
}

func TestApplyDerivationFrozenKeepsDaysRemaining(t *testing.T) {
	c := &Case{Status: CaseStatusResolved, DaysRemaining: 4}

	c.ApplyDerivation(DeriveTiming(CaseStatusResolved, deadline(15), filedAt.Add(40*24*time.Hour), 3))

	assert.Equal(t, 4, c.DaysRemaining)
	assert.Equal(t, TrafficGreen, c.TrafficLight)
}

func TestCaseStatusTerminal(t *testing.T) {
	assert.True(t, CaseStatusResolved.Terminal())
	assert.True(t, CaseStatusClosed.Terminal())
	assert.False(t, CaseStatusPending.Terminal())
	assert.False(t, CaseStatusInProgress.Terminal())
	assert.False(t, CaseStatusOverdue.Terminal())
}

func TestCategoryValid(t *testing.T) {
	for _, category := range Categories() {
		assert.True(t, category.Valid())
	}
	assert.False(t, CaseCategory("inquiry").Valid())
}
