// Package planner implements the plan-building workbench: a professional
// accumulates exercises into days and days into a draft, then commits the
// draft as one immutable WorkoutPlan.
package planner

import (
	"errors"
	"fmt"
	"sync"

	"fridman/health-hub/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUntitledPlan = errors.New("plan needs a title before it can be created")
	ErrNoSuchDay    = errors.New("draft has no day with that id")
	ErrNoSuchEntry  = errors.New("no exercise at that position")
)

// Draft is a read-only copy of the builder state for rendering.
type Draft struct {
	Title     string     `json:"title"`
	ActiveDay string     `json:"activeDay"`
	Days      []DraftDay `json:"days"`
}

type DraftDay struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Exercises []domain.Exercise `json:"exercises"`
}

// Builder holds exactly one in-progress plan. Two invariants hold for the
// whole edit: there is always at least one day, and the active pointer
// always refers to an existing day.
type Builder struct {
	mu     sync.Mutex
	title  string
	days   []DraftDay
	active int
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.resetLocked()
	return b
}

func (b *Builder) resetLocked() {
	b.title = ""
	b.days = []DraftDay{newDay(1)}
	b.active = 0
}

func newDay(n int) DraftDay {
	return DraftDay{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("Day %d", n),
		Exercises: []domain.Exercise{},
	}
}

func (b *Builder) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

// AddDay appends an auto-numbered day and makes it the active one.
func (b *Builder) AddDay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.days = append(b.days, newDay(len(b.days)+1))
	b.active = len(b.days) - 1
}

// SetActiveDay moves the active pointer. New exercises land on the
// active day.
func (b *Builder) SetActiveDay(dayID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.dayIndexLocked(dayID)
	if err != nil {
		return err
	}
	b.active = i
	return nil
}

// RenameDay overwrites a day's auto-numbered title.
func (b *Builder) RenameDay(dayID, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.dayIndexLocked(dayID)
	if err != nil {
		return err
	}
	if title != "" {
		b.days[i].Title = title
	}
	return nil
}

// AddExercise appends an exercise to the active day with setCount
// identical planned sets. An empty name makes this a no-op.
func (b *Builder) AddExercise(name string, setCount, reps int, weight float64) {
	if name == "" {
		return
	}
	if setCount < 1 {
		setCount = 1
	}

	sets := make([]domain.PlannedSet, setCount)
	for i := range sets {
		sets[i] = domain.PlannedSet{Reps: reps, Weight: weight}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	day := &b.days[b.active]
	day.Exercises = append(day.Exercises, domain.Exercise{Name: name, Sets: sets})
}

// RemoveExercise drops one exercise from one day by position.
func (b *Builder) RemoveExercise(dayID string, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.dayIndexLocked(dayID)
	if err != nil {
		return err
	}
	day := &b.days[i]
	if index < 0 || index >= len(day.Exercises) {
		return ErrNoSuchEntry
	}
	day.Exercises = append(day.Exercises[:index], day.Exercises[index+1:]...)
	return nil
}

// Draft returns a deep copy of the builder state.
func (b *Builder) Draft() Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Draft{
		Title:     b.title,
		ActiveDay: b.days[b.active].ID,
		Days:      copyDays(b.days),
	}
}

// Create commits the draft as one plan record and resets the builder back
// to its initial one-day state. Fails without a title.
func (b *Builder) Create(createdBy primitive.ObjectID, assignedTo *primitive.ObjectID) (*domain.WorkoutPlan, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.title == "" {
		return nil, ErrUntitledPlan
	}

	plan := &domain.WorkoutPlan{
		Title:      b.title,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
		Days:       make([]domain.Day, len(b.days)),
	}
	for i, d := range b.days {
		plan.Days[i] = domain.Day{
			ID:        d.ID,
			Title:     d.Title,
			Exercises: copyExercises(d.Exercises),
		}
	}

	b.resetLocked()
	return plan, nil
}

func (b *Builder) dayIndexLocked(dayID string) (int, error) {
	for i := range b.days {
		if b.days[i].ID == dayID {
			return i, nil
		}
	}
	return 0, ErrNoSuchDay
}

func copyDays(days []DraftDay) []DraftDay {
	out := make([]DraftDay, len(days))
	for i, d := range days {
		out[i] = DraftDay{ID: d.ID, Title: d.Title, Exercises: copyExercises(d.Exercises)}
	}
	return out
}

func copyExercises(src []domain.Exercise) []domain.Exercise {
	out := make([]domain.Exercise, len(src))
	for i, ex := range src {
		sets := make([]domain.PlannedSet, len(ex.Sets))
		copy(sets, ex.Sets)
		out[i] = domain.Exercise{Name: ex.Name, Sets: sets}
	}
	return out
}

// Workbench hands each professional their own builder, created lazily on
// first use.
type Workbench struct {
	mu       sync.Mutex
	builders map[primitive.ObjectID]*Builder
}

func NewWorkbench() *Workbench {
	return &Workbench{builders: make(map[primitive.ObjectID]*Builder)}
}

func (w *Workbench) For(professionalID primitive.ObjectID) *Builder {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.builders[professionalID]
	if !ok {
		b = NewBuilder()
		w.builders[professionalID] = b
	}
	return b
}
