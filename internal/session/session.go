// Package session holds the live workout session state machine: a mutable
// copy of one training day, an elapsed-time clock, and a rest countdown.
// A session exists only in memory; finishing reduces it to a WorkoutLog,
// closing discards it.
package session

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"fridman/health-hub/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State of a session. Resting is not a separate state: it is derived from
// the rest deadline and overlays Running.
type State string

const (
	StateRunning   State = "running"
	StateFinished  State = "finished"
	StateDiscarded State = "discarded"
)

const (
	// RestDuration is armed whenever a set flips to completed.
	RestDuration = 60 * time.Second
	// RestExtension is added per explicit "+30s" action.
	RestExtension = 30 * time.Second
)

// Editable set fields.
const (
	FieldWeight = "weight"
	FieldReps   = "reps"
)

var (
	ErrSessionOver = errors.New("session already finished or discarded")
	ErrNoSuchSet   = errors.New("no set at that position")
	ErrBadField    = errors.New("unknown set field")
)

// SetState is one set of the live session: the planned numbers plus a
// completion flag. Index is assigned at start and stable for the
// session's lifetime.
type SetState struct {
	Index     int     `json:"index"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	Completed bool    `json:"completed"`
}

// ExerciseState is one exercise of the live session.
type ExerciseState struct {
	Name string     `json:"name"`
	Sets []SetState `json:"sets"`
}

// Snapshot is an immutable copy of the session handed to callers and
// watchers. Nested slices are never shared with the live session.
type Snapshot struct {
	PlanID         string          `json:"planId"`
	Title          string          `json:"title"`
	State          State           `json:"state"`
	ElapsedSeconds int             `json:"elapsedSeconds"`
	Resting        bool            `json:"resting"`
	RestRemaining  int             `json:"restRemaining"`
	Exercises      []ExerciseState `json:"exercises"`
}

// Session is the live execution of one training day. All transitions go
// through the mutex; watchers only ever see snapshots.
type Session struct {
	mu sync.Mutex

	patientID   primitive.ObjectID
	patientName string
	planID      string
	title       string

	state     State
	startedAt time.Time
	now       func() time.Time
	exercises []ExerciseState

	restUntil time.Time
	restTimer *time.Timer // fires when the countdown hits zero, to wake watchers

	ticker     *time.Ticker
	tickerDone chan struct{}

	subs    map[int]chan Snapshot
	nextSub int
}

// Start builds a live session from a day template and begins the 1-second
// elapsed clock. Every planned set starts incomplete.
func Start(patientID primitive.ObjectID, patientName, planID, title string, day domain.Day) *Session {
	s := newSession(patientID, patientName, planID, title, day, time.Now)
	s.startTicker()
	return s
}

// newSession is Start without the real ticker; tests inject their own clock.
func newSession(patientID primitive.ObjectID, patientName, planID, title string, day domain.Day, now func() time.Time) *Session {
	exercises := make([]ExerciseState, len(day.Exercises))
	for i, ex := range day.Exercises {
		sets := make([]SetState, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = SetState{
				Index:     j,
				Reps:      set.Reps,
				Weight:    set.Weight,
				Completed: false,
			}
		}
		exercises[i] = ExerciseState{Name: ex.Name, Sets: sets}
	}

	return &Session{
		patientID:   patientID,
		patientName: patientName,
		planID:      planID,
		title:       title,
		state:       StateRunning,
		startedAt:   now(),
		now:         now,
		exercises:   exercises,
		subs:        make(map[int]chan Snapshot),
	}
}

func (s *Session) startTicker() {
	s.ticker = time.NewTicker(time.Second)
	s.tickerDone = make(chan struct{})
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if s.state == StateRunning {
					s.notifyLocked()
				}
				s.mu.Unlock()
			case <-s.tickerDone:
				return
			}
		}
	}()
}

// PatientID identifies the session's owner.
func (s *Session) PatientID() primitive.ObjectID {
	return s.patientID
}

// Snapshot returns a deep copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	now := s.now()
	exercises := make([]ExerciseState, len(s.exercises))
	for i, ex := range s.exercises {
		sets := make([]SetState, len(ex.Sets))
		copy(sets, ex.Sets)
		exercises[i] = ExerciseState{Name: ex.Name, Sets: sets}
	}

	snap := Snapshot{
		PlanID:         s.planID,
		Title:          s.title,
		State:          s.state,
		ElapsedSeconds: int(now.Sub(s.startedAt) / time.Second),
		Exercises:      exercises,
	}
	if s.restingLocked(now) {
		snap.Resting = true
		snap.RestRemaining = int(s.restUntil.Sub(now) / time.Second)
	}
	return snap
}

func (s *Session) restingLocked(now time.Time) bool {
	return !s.restUntil.IsZero() && now.Before(s.restUntil)
}

// ToggleSet flips the completed flag of exactly one set. Completing a set
// (false to true) arms a fresh 60-second rest countdown, replacing any
// countdown already in progress. Un-completing a set has no countdown
// side effect.
func (s *Session) ToggleSet(exerciseIndex, setIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrSessionOver
	}
	set, err := s.setAtLocked(exerciseIndex, setIndex)
	if err != nil {
		return err
	}

	set.Completed = !set.Completed
	if set.Completed {
		s.armRestLocked(RestDuration)
	}
	s.notifyLocked()
	return nil
}

// EditSet overwrites the weight or rep count of a set, completed or not.
// The surrounding inputs are free text, so malformed values coerce to zero
// instead of failing.
func (s *Session) EditSet(exerciseIndex, setIndex int, field, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrSessionOver
	}
	set, err := s.setAtLocked(exerciseIndex, setIndex)
	if err != nil {
		return err
	}

	switch field {
	case FieldWeight:
		set.Weight = coerceFloat(raw)
	case FieldReps:
		set.Reps = coerceInt(raw)
	default:
		return ErrBadField
	}
	s.notifyLocked()
	return nil
}

// ExtendRest adds 30 seconds to the active countdown. No-op when no
// countdown is running.
func (s *Session) ExtendRest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.state != StateRunning || !s.restingLocked(now) {
		return
	}
	s.armRestDeadlineLocked(s.restUntil.Add(RestExtension))
	s.notifyLocked()
}

// SkipRest dismisses the active countdown early. No-op when no countdown
// is running.
func (s *Session) SkipRest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || !s.restingLocked(s.now()) {
		return
	}
	s.clearRestLocked()
	s.notifyLocked()
}

// Finish is the terminal transition producing the session's one and only
// WorkoutLog: completed sets are retained per exercise (exercises with no
// completed set keep an empty list) and total volume sums reps times
// weight over retained sets. The session is unusable afterwards.
func (s *Session) Finish() (*domain.WorkoutLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return nil, ErrSessionOver
	}

	now := s.now()
	log := &domain.WorkoutLog{
		PatientID:       s.patientID,
		PatientName:     s.patientName,
		PlanID:          s.planID,
		Title:           s.title,
		DurationSeconds: int(now.Sub(s.startedAt) / time.Second),
		CompletedAt:     now.UTC(),
	}

	var volume float64
	for _, ex := range s.exercises {
		logged := domain.LoggedExercise{Name: ex.Name, Sets: []domain.LoggedSet{}}
		for _, set := range ex.Sets {
			if !set.Completed {
				continue
			}
			logged.Sets = append(logged.Sets, domain.LoggedSet{
				Index:  set.Index,
				Reps:   set.Reps,
				Weight: set.Weight,
			})
			volume += float64(set.Reps) * set.Weight
		}
		log.Exercises = append(log.Exercises, logged)
	}
	log.TotalVolume = volume

	s.terminateLocked(StateFinished)
	return log, nil
}

// Close discards the session and everything in it. Valid from any
// non-terminal state; a second call is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return
	}
	s.terminateLocked(StateDiscarded)
}

// Watch registers a watcher receiving a snapshot on every transition and
// every elapsed-clock tick. The returned cancel must be called on
// teardown; it is safe to call more than once.
func (s *Session) Watch() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.state != StateRunning {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// --- internals ---

func (s *Session) setAtLocked(exerciseIndex, setIndex int) (*SetState, error) {
	if exerciseIndex < 0 || exerciseIndex >= len(s.exercises) {
		return nil, ErrNoSuchSet
	}
	ex := &s.exercises[exerciseIndex]
	if setIndex < 0 || setIndex >= len(ex.Sets) {
		return nil, ErrNoSuchSet
	}
	return &ex.Sets[setIndex], nil
}

func (s *Session) armRestLocked(d time.Duration) {
	s.armRestDeadlineLocked(s.now().Add(d))
}

// armRestDeadlineLocked replaces the countdown wholesale: the old timer
// handle is released before the new one is armed.
func (s *Session) armRestDeadlineLocked(deadline time.Time) {
	if s.restTimer != nil {
		s.restTimer.Stop()
	}
	s.restUntil = deadline
	remaining := deadline.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	s.restTimer = time.AfterFunc(remaining, s.onRestExpired)
}

func (s *Session) onRestExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning || s.restUntil.IsZero() {
		return
	}
	// The countdown reaching zero clears the resting indicator on its own.
	if !s.now().Before(s.restUntil) {
		s.restUntil = time.Time{}
		s.restTimer = nil
		s.notifyLocked()
	}
}

func (s *Session) clearRestLocked() {
	if s.restTimer != nil {
		s.restTimer.Stop()
		s.restTimer = nil
	}
	s.restUntil = time.Time{}
}

// terminateLocked releases both timers and drops every watcher. Runs on
// every terminal path so no recurring callback outlives the session.
func (s *Session) terminateLocked(final State) {
	s.state = final
	s.clearRestLocked()
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.tickerDone)
		s.ticker = nil
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		// Latest snapshot wins; a slow watcher never blocks a transition.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func coerceFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceInt(raw string) int {
	trimmed := strings.TrimSpace(raw)
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		if f, ferr := strconv.ParseFloat(trimmed, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return v
}
