package session

import "time"

// Scorer computes the derived session metrics at completion time. The
// formulas are company policy, not a fixed algorithm; swapping the scorer
// never touches the state machine.
type Scorer func(s *Session, now time.Time) Metrics

// LinearScorer is the default scoring policy: punctuality loses 2 points per
// minute late (floor 0), attendance is worked over scheduled capped at 100,
// compliance is the mean of the two.
func LinearScorer(s *Session, now time.Time) Metrics {
	m := Metrics{
		TotalScheduledMinutes: s.Metrics.TotalScheduledMinutes,
		WorkedMinutes:         s.WorkedMinutes(now),
		BreakMinutes:          s.BreakMinutes(now),
		OvertimeMinutes:       s.OvertimeMinutes(now),
	}

	punctuality := 100.0 - 2.0*float64(s.LateMinutes(now))
	if punctuality < 0 {
		punctuality = 0
	}
	if s.ClockInTime == nil {
		punctuality = 0
	}
	m.PunctualityScore = punctuality

	if m.TotalScheduledMinutes > 0 {
		rate := float64(m.WorkedMinutes) / float64(m.TotalScheduledMinutes) * 100.0
		if rate > 100 {
			rate = 100
		}
		m.AttendanceRate = rate
	}

	m.ComplianceScore = (m.PunctualityScore + m.AttendanceRate) / 2.0

	return m
}
