package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearScorer(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	newSession := func() *Session {
		return &Session{
			ScheduledStart: start,
			ScheduledEnd:   end,
			Metrics:        Metrics{TotalScheduledMinutes: 480},
		}
	}

	t.Run("on time full shift", func(t *testing.T) {
		s := newSession()
		in, out := start, end
		s.ClockInTime, s.ClockOutTime = &in, &out

		m := LinearScorer(s, end.Add(30*time.Minute))
		assert.Equal(t, 480, m.WorkedMinutes)
		assert.Equal(t, 100.0, m.PunctualityScore)
		assert.Equal(t, 100.0, m.AttendanceRate)
		assert.Equal(t, 100.0, m.ComplianceScore)
	})

	t.Run("ten minutes late loses twenty points", func(t *testing.T) {
		s := newSession()
		in, out := start.Add(10*time.Minute), end
		s.ClockInTime, s.ClockOutTime = &in, &out

		m := LinearScorer(s, end)
		assert.Equal(t, 80.0, m.PunctualityScore)
	})

	t.Run("punctuality floors at zero", func(t *testing.T) {
		s := newSession()
		in := start.Add(90 * time.Minute)
		s.ClockInTime = &in

		m := LinearScorer(s, end)
		assert.Equal(t, 0.0, m.PunctualityScore)
	})

	t.Run("never clocked in scores zero punctuality", func(t *testing.T) {
		s := newSession()
		m := LinearScorer(s, end)
		assert.Equal(t, 0.0, m.PunctualityScore)
		assert.Equal(t, 0.0, m.AttendanceRate)
		assert.Equal(t, 0.0, m.ComplianceScore)
	})

	t.Run("attendance capped at one hundred", func(t *testing.T) {
		s := newSession()
		in, out := start, end.Add(2*time.Hour)
		s.ClockInTime, s.ClockOutTime = &in, &out

		m := LinearScorer(s, out)
		assert.Equal(t, 100.0, m.AttendanceRate)
	})

	t.Run("compliance is the mean", func(t *testing.T) {
		s := newSession()
		in, out := start.Add(10*time.Minute), start.Add(4*time.Hour+10*time.Minute)
		s.ClockInTime, s.ClockOutTime = &in, &out

		m := LinearScorer(s, out)
		assert.Equal(t, 80.0, m.PunctualityScore)
		assert.Equal(t, 50.0, m.AttendanceRate)
		assert.Equal(t, 65.0, m.ComplianceScore)
	})

	t.Run("scheduled minutes preserved", func(t *testing.T) {
		s := newSession()
		m := LinearScorer(s, end)
		assert.Equal(t, 480, m.TotalScheduledMinutes)
	})
}
