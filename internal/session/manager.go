package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/platform/logger"
	"fridman/health-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoActiveSession = errors.New("no active session for this patient")
	ErrNoSuchDay       = errors.New("plan has no day with that id")
)

// Manager owns at most one live session per patient. Starting a new
// session while one is running discards the old one, the same as closing
// it by hand.
type Manager struct {
	mu     sync.Mutex
	active map[primitive.ObjectID]*Session

	logs repository.WorkoutLogRepository
	log  *logger.Logger
}

func NewManager(logs repository.WorkoutLogRepository, log *logger.Logger) *Manager {
	return &Manager{
		active: make(map[primitive.ObjectID]*Session),
		logs:   logs,
		log:    log,
	}
}

// Start launches a session for one day of a plan, replacing any session
// the patient already has running.
func (m *Manager) Start(patient *domain.User, plan *domain.WorkoutPlan, dayID string) (Snapshot, error) {
	var day *domain.Day
	for i := range plan.Days {
		if plan.Days[i].ID == dayID {
			day = &plan.Days[i]
			break
		}
	}
	if day == nil {
		return Snapshot{}, ErrNoSuchDay
	}

	// The log keyed off this session points at the plan and the day.
	planRef := plan.ID.Hex() + "_" + day.ID
	title := plan.Title + ": " + day.Title

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.active[patient.ID]; ok {
		old.Close()
	}
	sess := Start(patient.ID, patient.Name, planRef, title, *day)
	m.active[patient.ID] = sess
	return sess.Snapshot(), nil
}

// Get returns the patient's live session.
func (m *Manager) Get(patientID primitive.ObjectID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.active[patientID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

// Finish ends the patient's session and persists the resulting log. The
// write happens off the caller's path; a storage failure is logged and
// the finished log is still returned, so a flaky database never blocks
// the patient from leaving a workout.
func (m *Manager) Finish(patientID primitive.ObjectID) (*domain.WorkoutLog, error) {
	m.mu.Lock()
	sess, ok := m.active[patientID]
	if ok {
		delete(m.active, patientID)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNoActiveSession
	}

	log, err := sess.Finish()
	if err != nil {
		return nil, err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := m.logs.Create(ctx, log); err != nil {
			m.log.Error("failed to persist workout log", "patientID", patientID.Hex(), "error", err)
		}
	}()

	return log, nil
}

// Close discards the patient's session without producing a log.
func (m *Manager) Close(patientID primitive.ObjectID) error {
	m.mu.Lock()
	sess, ok := m.active[patientID]
	if ok {
		delete(m.active, patientID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNoActiveSession
	}
	sess.Close()
	return nil
}
