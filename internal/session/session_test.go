package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testDay() domain.Day {
	return domain.Day{
		ID:    "day-1",
		Title: "Push Day",
		Exercises: []domain.Exercise{
			{
				Name: "Bench Press",
				Sets: []domain.PlannedSet{
					{Reps: 10, Weight: 60},
					{Reps: 8, Weight: 70},
				},
			},
			{
				Name: "Overhead Press",
				Sets: []domain.PlannedSet{
					{Reps: 12, Weight: 30},
				},
			},
		},
	}
}

func testSession(clock *fakeClock) *Session {
	return newSession(primitive.NewObjectID(), "Dana", "plan_day-1", "Strength: Push Day", testDay(), clock.Now)
}

func TestStartCopiesDayTemplate(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	snap := s.Snapshot()
	if snap.State != StateRunning {
		t.Fatalf("state = %q, want %q", snap.State, StateRunning)
	}
	if len(snap.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(snap.Exercises))
	}
	for _, ex := range snap.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				t.Errorf("%s set %d starts completed", ex.Name, set.Index)
			}
		}
	}

	// A snapshot is a copy: mutating it must not leak into the session.
	snap.Exercises[0].Sets[0].Completed = true
	if s.Snapshot().Exercises[0].Sets[0].Completed {
		t.Error("snapshot mutation reached the live session")
	}
}

func TestElapsedFollowsClock(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	clock.Advance(95 * time.Second)
	if got := s.Snapshot().ElapsedSeconds; got != 95 {
		t.Errorf("elapsed = %d, want 95", got)
	}
}

func TestCompletingSetArmsRest(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Resting {
		t.Fatal("not resting after completing a set")
	}
	if snap.RestRemaining != 60 {
		t.Errorf("rest remaining = %d, want 60", snap.RestRemaining)
	}

	// A newer completion replaces the countdown instead of stacking on it.
	clock.Advance(40 * time.Second)
	if err := s.ToggleSet(0, 1); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	if got := s.Snapshot().RestRemaining; got != 60 {
		t.Errorf("rest remaining after replacement = %d, want 60", got)
	}
}

func TestUncompletingSetLeavesRestAlone(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	clock.Advance(20 * time.Second)
	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}

	snap := s.Snapshot()
	if snap.Exercises[0].Sets[0].Completed {
		t.Error("set still completed after second toggle")
	}
	if !snap.Resting || snap.RestRemaining != 40 {
		t.Errorf("resting=%v remaining=%d, want resting with 40s left", snap.Resting, snap.RestRemaining)
	}
}

func TestRestExpiresOnItsOwn(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	clock.Advance(61 * time.Second)

	snap := s.Snapshot()
	if snap.Resting || snap.RestRemaining != 0 {
		t.Errorf("resting=%v remaining=%d after deadline, want idle", snap.Resting, snap.RestRemaining)
	}
}

func TestExtendAndSkipRest(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	// Both are no-ops with no countdown running.
	s.ExtendRest()
	s.SkipRest()
	if s.Snapshot().Resting {
		t.Fatal("resting with no countdown armed")
	}

	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	s.ExtendRest()
	if got := s.Snapshot().RestRemaining; got != 90 {
		t.Errorf("rest remaining after extend = %d, want 90", got)
	}

	s.SkipRest()
	if s.Snapshot().Resting {
		t.Error("still resting after skip")
	}
	// Skipping an already dismissed countdown changes nothing.
	s.SkipRest()
	if s.Snapshot().Resting {
		t.Error("resting reappeared after second skip")
	}
}

func TestEditSetCoercesFreeText(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	cases := []struct {
		name       string
		field      string
		raw        string
		wantReps   int
		wantWeight float64
	}{
		{"weight decimal", FieldWeight, "82.5", 10, 82.5},
		{"weight garbage", FieldWeight, "heavy", 10, 0},
		{"reps padded", FieldReps, " 12 ", 12, 0},
		{"reps decimal truncates", FieldReps, "7.9", 7, 0},
		{"reps empty", FieldReps, "", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.EditSet(0, 0, tc.field, tc.raw); err != nil {
				t.Fatalf("EditSet: %v", err)
			}
			set := s.Snapshot().Exercises[0].Sets[0]
			if set.Reps != tc.wantReps || set.Weight != tc.wantWeight {
				t.Errorf("set = %d reps @ %v, want %d reps @ %v", set.Reps, set.Weight, tc.wantReps, tc.wantWeight)
			}
		})
	}

	if err := s.EditSet(0, 0, "tempo", "3"); err != ErrBadField {
		t.Errorf("unknown field error = %v, want ErrBadField", err)
	}
	if err := s.EditSet(5, 0, FieldReps, "1"); err != ErrNoSuchSet {
		t.Errorf("out of range error = %v, want ErrNoSuchSet", err)
	}
}

func TestFinishKeepsOnlyCompletedSets(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	if err := s.EditSet(0, 0, FieldWeight, "65"); err != nil {
		t.Fatalf("EditSet: %v", err)
	}
	if err := s.ToggleSet(0, 1); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	clock.Advance(30 * time.Minute)

	log, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if log.DurationSeconds != 1800 {
		t.Errorf("duration = %d, want 1800", log.DurationSeconds)
	}
	if len(log.Exercises) != 2 {
		t.Fatalf("logged exercises = %d, want 2", len(log.Exercises))
	}
	if got := len(log.Exercises[0].Sets); got != 2 {
		t.Errorf("bench sets logged = %d, want 2", got)
	}
	if got := len(log.Exercises[1].Sets); got != 0 {
		t.Errorf("press sets logged = %d, want 0", got)
	}
	// 10 reps @ 65 plus 8 reps @ 70.
	if want := 10*65.0 + 8*70.0; log.TotalVolume != want {
		t.Errorf("total volume = %v, want %v", log.TotalVolume, want)
	}

	if _, err := s.Finish(); err != ErrSessionOver {
		t.Errorf("second Finish error = %v, want ErrSessionOver", err)
	}
	if err := s.ToggleSet(0, 0); err != ErrSessionOver {
		t.Errorf("ToggleSet after finish = %v, want ErrSessionOver", err)
	}
}

func TestCloseDiscards(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	s.Close()
	s.Close()

	if got := s.Snapshot().State; got != StateDiscarded {
		t.Errorf("state = %q, want %q", got, StateDiscarded)
	}
	if _, err := s.Finish(); err != ErrSessionOver {
		t.Errorf("Finish after close = %v, want ErrSessionOver", err)
	}
}

func TestWatchDeliversTransitions(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock)

	ch, cancel := s.Watch()
	defer cancel()

	first, ok := <-ch
	if !ok {
		t.Fatal("watch channel closed immediately")
	}
	if first.State != StateRunning {
		t.Fatalf("initial snapshot state = %q", first.State)
	}

	if err := s.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	select {
	case snap := <-ch:
		if !snap.Resting {
			t.Error("transition snapshot not resting")
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after transition")
	}

	s.Close()
	select {
	case _, ok := <-ch:
		if ok {
			// Drain the final buffered snapshot, then expect close.
			if _, still := <-ch; still {
				t.Error("channel still open after session ended")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after session ended")
	}
}

type captureLogRepo struct {
	mu   sync.Mutex
	logs []*domain.WorkoutLog
	done chan struct{}
}

func (r *captureLogRepo) Create(_ context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	r.mu.Lock()
	r.logs = append(r.logs, log)
	r.mu.Unlock()
	close(r.done)
	return primitive.NewObjectID(), nil
}

func (r *captureLogRepo) GetByPatient(context.Context, primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return nil, nil
}

func (r *captureLogRepo) GetRecent(context.Context, int64) ([]domain.WorkoutLog, error) {
	return nil, nil
}

func TestManagerOneSessionPerPatient(t *testing.T) {
	repo := &captureLogRepo{done: make(chan struct{})}
	m := NewManager(repo, logger.Nop())

	patient := &domain.User{ID: primitive.NewObjectID(), Name: "Dana"}
	plan := &domain.WorkoutPlan{
		ID:    primitive.NewObjectID(),
		Title: "Strength",
		Days:  []domain.Day{testDay()},
	}

	if _, err := m.Start(patient, plan, "day-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first, err := m.Get(patient.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Starting again replaces and discards the first session.
	if _, err := m.Start(patient, plan, "day-1"); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := first.Snapshot().State; got != StateDiscarded {
		t.Errorf("replaced session state = %q, want %q", got, StateDiscarded)
	}

	if _, err := m.Start(patient, plan, "nope"); err != ErrNoSuchDay {
		t.Errorf("unknown day error = %v, want ErrNoSuchDay", err)
	}

	second, err := m.Get(patient.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := second.ToggleSet(0, 0); err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}

	log, err := m.Finish(patient.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if log.PatientID != patient.ID || log.PatientName != "Dana" {
		t.Errorf("log owner = %s/%s", log.PatientID.Hex(), log.PatientName)
	}

	select {
	case <-repo.done:
	case <-time.After(time.Second):
		t.Fatal("workout log never persisted")
	}

	if _, err := m.Get(patient.ID); err != ErrNoActiveSession {
		t.Errorf("Get after finish = %v, want ErrNoActiveSession", err)
	}
	if err := m.Close(patient.ID); err != ErrNoActiveSession {
		t.Errorf("Close after finish = %v, want ErrNoActiveSession", err)
	}
}
