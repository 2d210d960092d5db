package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/company"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/employee"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/jobsite"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/location"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/schedule"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

// Shared fixture coordinates. The test site sits at a fixed point; fixes a
// fraction of a degree away are well outside the 100 meter radius.
const (
	testCompanyID  = "co-1"
	testEmployeeID = "emp-1"
	testJobSiteID  = "site-1"
	testScheduleID = "shift-1"

	siteLat    = 40.0
	siteLon    = -74.0
	siteRadius = 100.0
)

var shiftStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
var shiftEnd = shiftStart.Add(8 * time.Hour)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]session.Session
	archived map[string]session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]session.Session),
		archived: make(map[string]session.Session),
	}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s session.Session) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// The store stamps creation timestamps on insert.
	s.CreatedAt = s.MonitoringStarted
	s.UpdatedAt = s.MonitoringStarted
	r.sessions[s.ID] = s
	return s, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string, companyID string) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.CompanyID != companyID {
		return session.Session{}, session.ErrSessionNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) GetByScheduleID(ctx context.Context, scheduleID string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ScheduleID == scheduleID {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) ListByStatuses(ctx context.Context, statuses ...session.Status) ([]session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []session.Session
	for _, s := range r.sessions {
		for _, st := range statuses {
			if s.Status == st {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []session.Session
	for _, s := range r.sessions {
		if s.Status == session.StatusCompleted && s.UpdatedAt.Before(cutoff) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// UpdateBatch applies each update only when the stored status still matches
// the guard, mirroring the store's conditional writes.
func (r *fakeSessionRepo) UpdateBatch(ctx context.Context, updates []session.GuardedUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied := 0
	for _, u := range updates {
		stored, ok := r.sessions[u.Session.ID]
		if !ok || stored.Status != u.Expected {
			continue
		}
		r.sessions[u.Session.ID] = u.Session
		applied++
	}
	return applied, nil
}

func (r *fakeSessionRepo) Archive(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	archived := 0
	for _, id := range ids {
		s, ok := r.sessions[id]
		if !ok {
			continue
		}
		r.archived[id] = s
		delete(r.sessions, id)
		archived++
	}
	return archived, nil
}

func (r *fakeSessionRepo) get(id string) session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

func (r *fakeSessionRepo) put(s session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakeScheduleRepo struct {
	shifts []schedule.Shift
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string) (schedule.Shift, error) {
	for _, sh := range r.shifts {
		if sh.ID == id {
			return sh, nil
		}
	}
	return schedule.Shift{}, schedule.ErrShiftNotFound
}

func (r *fakeScheduleRepo) ListDueWithoutSession(ctx context.Context, from, to time.Time) ([]schedule.Shift, error) {
	var out []schedule.Shift
	for _, sh := range r.shifts {
		if !sh.StartTime.Before(from) && sh.StartTime.Before(to) {
			out = append(out, sh)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type fakeJobSiteRepo struct {
	sites map[string]jobsite.JobSite
}

func (r *fakeJobSiteRepo) GetByID(ctx context.Context, id string) (jobsite.JobSite, error) {
	s, ok := r.sites[id]
	if !ok {
		return jobsite.JobSite{}, jobsite.ErrJobSiteNotFound
	}
	return s, nil
}

type fakeCompanyRepo struct {
	settings map[string]company.Settings
}

func (r *fakeCompanyRepo) GetSettings(ctx context.Context, companyID string) (company.Settings, error) {
	s, ok := r.settings[companyID]
	if !ok {
		return company.Settings{}, company.ErrSettingsNotFound
	}
	return s, nil
}

type fakeLocationRepo struct {
	fixes map[string]*location.Fix
}

func (r *fakeLocationRepo) GetLatest(ctx context.Context, employeeID string) (*location.Fix, error) {
	return r.fixes[employeeID], nil
}

type fakeConsentRepo struct {
	settings map[string]*notification.Settings
}

func (r *fakeConsentRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*notification.Settings, error) {
	return r.settings[employeeID], nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notification.Notification
	stops int
}

func (f *fakeNotifier) Queue(ctx context.Context, n notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeNotifier) byType(typ notification.Type) []notification.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification.Notification
	for _, n := range f.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// harness wires an orchestrator against in-memory fakes with a controllable
// clock.
type harness struct {
	sessions  *fakeSessionRepo
	schedules *fakeScheduleRepo
	employees *fakeEmployeeRepo
	sites     *fakeJobSiteRepo
	companies *fakeCompanyRepo
	locations *fakeLocationRepo
	consents  *fakeConsentRepo
	notifier  *fakeNotifier

	orch  *Orchestrator
	clock time.Time
}

func newHarness() *harness {
	h := &harness{
		sessions:  newFakeSessionRepo(),
		schedules: &fakeScheduleRepo{},
		employees: &fakeEmployeeRepo{employees: map[string]employee.Employee{
			testEmployeeID: {ID: testEmployeeID, CompanyID: testCompanyID, FullName: "Dewi Lestari", EmploymentStatus: "active"},
		}},
		sites: &fakeJobSiteRepo{sites: map[string]jobsite.JobSite{
			testJobSiteID: {
				ID: testJobSiteID, CompanyID: testCompanyID, Name: "North Warehouse",
				Latitude: siteLat, Longitude: siteLon, RadiusMeters: siteRadius, Timezone: "UTC",
			},
		}},
		companies: &fakeCompanyRepo{settings: map[string]company.Settings{}},
		locations: &fakeLocationRepo{fixes: map[string]*location.Fix{}},
		consents:  &fakeConsentRepo{settings: map[string]*notification.Settings{}},
		notifier:  &fakeNotifier{},
		clock:     shiftStart,
	}

	h.orch = NewOrchestrator(
		h.sessions, h.schedules, h.employees, h.sites,
		h.companies, h.locations, h.consents, h.notifier,
		nil, Config{},
	)
	h.orch.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) at(t time.Time) *harness {
	h.clock = t
	return h
}

func (h *harness) addShift() {
	h.schedules.shifts = append(h.schedules.shifts, schedule.Shift{
		ID:         testScheduleID,
		CompanyID:  testCompanyID,
		EmployeeID: testEmployeeID,
		JobSiteID:  testJobSiteID,
		StartTime:  shiftStart,
		EndTime:    shiftEnd,
		Timezone:   "UTC",
	})
}

func (h *harness) placeAtSite(at time.Time) {
	h.locations.fixes[testEmployeeID] = &location.Fix{
		EmployeeID: testEmployeeID,
		Latitude:   siteLat,
		Longitude:  siteLon,
		Accuracy:   10,
		Timestamp:  at,
	}
}

func (h *harness) placeAwayFromSite(at time.Time) {
	h.locations.fixes[testEmployeeID] = &location.Fix{
		EmployeeID: testEmployeeID,
		Latitude:   siteLat + 0.01,
		Longitude:  siteLon,
		Accuracy:   10,
		Timestamp:  at,
	}
}

// seedSession stores a session for the fixture shift in the given status,
// with the default policy snapshot already frozen in.
func (h *harness) seedSession(status session.Status, mutate func(*session.Session)) session.Session {
	s := session.Session{
		ID:                "sess-1",
		ScheduleID:        testScheduleID,
		EmployeeID:        testEmployeeID,
		JobSiteID:         testJobSiteID,
		CompanyID:         testCompanyID,
		ScheduledStart:    shiftStart,
		ScheduledEnd:      shiftEnd,
		Timezone:          "UTC",
		MonitoringStarted: shiftStart.Add(-10 * time.Minute),
		Status:            status,
		Policy: snapshotPolicy(
			company.DefaultSettings(testCompanyID),
			notification.DefaultSettings(testEmployeeID),
		),
		Metrics:      session.Metrics{TotalScheduledMinutes: 480},
		HealthStatus: session.HealthHealthy,
		CreatedAt:    shiftStart.Add(-10 * time.Minute),
		UpdatedAt:    shiftStart.Add(-10 * time.Minute),
		UpdatedBy:    session.ActorSystem,
	}
	if mutate != nil {
		mutate(&s)
	}
	h.sessions.put(s)
	return s
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
