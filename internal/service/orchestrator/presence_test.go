package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

func TestArrivalAndAutoClockIn(t *testing.T) {
	ctx := context.Background()

	t.Run("arrival is recorded before clock-in dwell is met", func(t *testing.T) {
		h := newHarness()
		h.seedSession(session.StatusMonitoringActive, nil)
		h.placeAtSite(shiftStart.Add(-5 * time.Minute))
		h.at(shiftStart.Add(-5 * time.Minute))

		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.True(t, s.EmployeePresent)
		require.NotNil(t, s.ArrivalTime)
		assert.Equal(t, shiftStart.Add(-5*time.Minute), *s.ArrivalTime)
		assert.Equal(t, session.StatusMonitoringActive, s.Status)
		assert.False(t, s.ClockedIn)
		require.NotNil(t, s.LastLocationUpdate)
	})

	t.Run("clock-in fires once dwell and window conditions hold", func(t *testing.T) {
		h := newHarness()
		h.seedSession(session.StatusMonitoringActive, nil)
		h.placeAtSite(shiftStart.Add(-5 * time.Minute))

		// Arrived five minutes early; dwell not yet met.
		h.at(shiftStart.Add(-5 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		assert.False(t, h.sessions.get("sess-1").ClockedIn)

		// At the scheduled start, dwell reaches the five minute minimum.
		h.at(shiftStart)
		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.Equal(t, session.StatusClockedIn, s.Status)
		assert.True(t, s.ClockedIn)
		assert.True(t, s.AutoClockInTriggered)
		require.NotNil(t, s.ClockInTime)
		assert.Equal(t, shiftStart, *s.ClockInTime)

		require.Len(t, h.notifier.byType(notification.TypeAutoClockIn), 1)
	})

	t.Run("no clock-in before the buffer window opens", func(t *testing.T) {
		h := newHarness()
		h.seedSession(session.StatusMonitoringActive, nil)
		h.placeAtSite(shiftStart.Add(-30 * time.Minute))

		h.at(shiftStart.Add(-30 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		h.at(shiftStart.Add(-20 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		assert.False(t, h.sessions.get("sess-1").ClockedIn, "window opens 15 minutes before start")

		h.at(shiftStart.Add(-15 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		assert.True(t, h.sessions.get("sess-1").ClockedIn)
	})

	t.Run("no clock-in without tracking consent", func(t *testing.T) {
		h := newHarness()
		h.seedSession(session.StatusMonitoringActive, func(s *session.Session) {
			s.Policy.Consent.AutoTrackingConsent = false
		})
		h.placeAtSite(shiftStart.Add(-10 * time.Minute))

		h.at(shiftStart.Add(-10 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		h.at(shiftStart)
		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.True(t, s.EmployeePresent, "presence is still tracked")
		assert.False(t, s.ClockedIn)
	})

	t.Run("no location fix leaves the session untouched", func(t *testing.T) {
		h := newHarness()
		h.seedSession(session.StatusMonitoringActive, nil)
		h.at(shiftStart)

		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.False(t, s.EmployeePresent)
		assert.Nil(t, s.LastLocationUpdate)
	})
}

func TestExitGrace(t *testing.T) {
	ctx := context.Background()

	clockedInAt := func(h *harness, geofenceOut bool) {
		h.seedSession(session.StatusClockedIn, func(s *session.Session) {
			arrival, in := shiftStart, shiftStart
			s.EmployeePresent = true
			s.ArrivalTime = &arrival
			s.ClockedIn = true
			s.ClockInTime = &in
			s.AutoClockInTriggered = true
			s.Policy.GeofenceAutoClockOut = geofenceOut
		})
	}

	t.Run("first outside fix starts the grace period", func(t *testing.T) {
		h := newHarness()
		clockedInAt(h, true)
		exitAt := shiftStart.Add(4 * time.Hour)
		h.placeAwayFromSite(exitAt)
		h.at(exitAt)

		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		require.NotNil(t, s.ExitDetectedAt)
		assert.Equal(t, exitAt, *s.ExitDetectedAt)
		assert.True(t, s.EmployeePresent, "still present during grace")
		assert.True(t, s.ClockedIn)
		assert.Nil(t, s.DepartureTime)

		last := s.Events[len(s.Events)-1]
		assert.Equal(t, session.EventGeofenceExitPending, last.Type)
	})

	t.Run("departure confirmed after the grace period elapses", func(t *testing.T) {
		h := newHarness()
		clockedInAt(h, true)
		exitAt := shiftStart.Add(4 * time.Hour)
		h.placeAwayFromSite(exitAt)

		h.at(exitAt)
		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		// Three minutes in, still inside the five minute grace.
		h.at(exitAt.Add(3 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		assert.True(t, h.sessions.get("sess-1").ClockedIn)

		h.at(exitAt.Add(5 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.False(t, s.EmployeePresent)
		require.NotNil(t, s.DepartureTime)
		assert.Equal(t, exitAt.Add(5*time.Minute), *s.DepartureTime)
		assert.Nil(t, s.ExitDetectedAt)

		assert.Equal(t, session.StatusClockedOut, s.Status)
		assert.False(t, s.ClockedIn)
		require.NotNil(t, s.ClockOutTime)
		assert.Equal(t, exitAt.Add(5*time.Minute), *s.ClockOutTime)
		assert.True(t, s.AutoClockOutTriggered)
	})

	t.Run("re-entry during grace cancels the pending exit", func(t *testing.T) {
		h := newHarness()
		clockedInAt(h, true)
		exitAt := shiftStart.Add(4 * time.Hour)

		h.placeAwayFromSite(exitAt)
		h.at(exitAt)
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		require.NotNil(t, h.sessions.get("sess-1").ExitDetectedAt)

		h.placeAtSite(exitAt.Add(3 * time.Minute))
		h.at(exitAt.Add(3 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.Nil(t, s.ExitDetectedAt)
		assert.True(t, s.EmployeePresent)
		assert.True(t, s.ClockedIn)
		assert.Nil(t, s.DepartureTime)

		// A later exit starts a fresh grace period.
		h.placeAwayFromSite(exitAt.Add(10 * time.Minute))
		h.at(exitAt.Add(10 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		require.NotNil(t, h.sessions.get("sess-1").ExitDetectedAt)
		assert.Equal(t, exitAt.Add(10*time.Minute), *h.sessions.get("sess-1").ExitDetectedAt)
	})

	t.Run("departure without geofence clock-out keeps the clock running", func(t *testing.T) {
		h := newHarness()
		clockedInAt(h, false)
		exitAt := shiftStart.Add(4 * time.Hour)
		h.placeAwayFromSite(exitAt)

		h.at(exitAt)
		require.NoError(t, h.orch.advanceActiveSessions(ctx))
		h.at(exitAt.Add(5 * time.Minute))
		require.NoError(t, h.orch.advanceActiveSessions(ctx))

		s := h.sessions.get("sess-1")
		assert.False(t, s.EmployeePresent)
		assert.True(t, s.ClockedIn, "default policy never clocks out on exit")
		assert.Equal(t, session.StatusClockedIn, s.Status)
	})
}

func TestEndOfShiftClockOut(t *testing.T) {
	ctx := context.Background()

	h := newHarness()
	h.seedSession(session.StatusClockedIn, func(s *session.Session) {
		arrival, in := shiftStart, shiftStart
		s.EmployeePresent = true
		s.ArrivalTime = &arrival
		s.ClockedIn = true
		s.ClockInTime = &in
	})
	h.placeAtSite(shiftEnd)

	// Still on the clock at the scheduled end plus threshold.
	h.at(shiftEnd.Add(15 * time.Minute))
	require.NoError(t, h.orch.advanceActiveSessions(ctx))
	assert.True(t, h.sessions.get("sess-1").ClockedIn)

	h.at(shiftEnd.Add(16 * time.Minute))
	require.NoError(t, h.orch.advanceActiveSessions(ctx))

	s := h.sessions.get("sess-1")
	assert.Equal(t, session.StatusClockedOut, s.Status)
	assert.False(t, s.ClockedIn)
	require.NotNil(t, s.ClockOutTime)
	assert.Equal(t, shiftEnd.Add(16*time.Minute), *s.ClockOutTime)
	require.Len(t, h.notifier.byType(notification.TypeAutoClockOut), 1)
}
