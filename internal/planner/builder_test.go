package planner

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuilderStartsWithOneDay(t *testing.T) {
	b := NewBuilder()
	draft := b.Draft()

	if len(draft.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(draft.Days))
	}
	if draft.Days[0].Title != "Day 1" {
		t.Errorf("title = %q, want %q", draft.Days[0].Title, "Day 1")
	}
	if draft.ActiveDay != draft.Days[0].ID {
		t.Error("active pointer not on the only day")
	}
}

func TestAddDayNumbersAndActivates(t *testing.T) {
	b := NewBuilder()
	b.AddDay()
	b.AddDay()

	draft := b.Draft()
	if len(draft.Days) != 3 {
		t.Fatalf("days = %d, want 3", len(draft.Days))
	}
	for i, want := range []string{"Day 1", "Day 2", "Day 3"} {
		if draft.Days[i].Title != want {
			t.Errorf("day %d title = %q, want %q", i, draft.Days[i].Title, want)
		}
	}
	if draft.ActiveDay != draft.Days[2].ID {
		t.Error("newest day is not active")
	}
}

func TestAddExerciseFansOutSets(t *testing.T) {
	b := NewBuilder()
	b.SetTitle("Leg Day")
	b.AddExercise("Squat", 3, 5, 100)

	plan, err := b.Create(primitive.NewObjectID(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(plan.Days) != 1 || len(plan.Days[0].Exercises) != 1 {
		t.Fatalf("plan shape = %d days / %d exercises, want 1/1", len(plan.Days), len(plan.Days[0].Exercises))
	}
	sets := plan.Days[0].Exercises[0].Sets
	if len(sets) != 3 {
		t.Fatalf("sets = %d, want 3", len(sets))
	}
	for i, set := range sets {
		if set.Reps != 5 || set.Weight != 100 {
			t.Errorf("set %d = %d reps @ %v, want 5 @ 100", i, set.Reps, set.Weight)
		}
	}
}

func TestAddExerciseEmptyNameIsNoOp(t *testing.T) {
	b := NewBuilder()
	b.AddExercise("", 3, 10, 0)

	if got := len(b.Draft().Days[0].Exercises); got != 0 {
		t.Errorf("exercises = %d after empty-name add, want 0", got)
	}
}

func TestExercisesLandOnActiveDay(t *testing.T) {
	b := NewBuilder()
	b.AddExercise("Squat", 3, 5, 100)
	b.AddDay()
	b.AddExercise("Deadlift", 1, 5, 140)

	draft := b.Draft()
	if got := len(draft.Days[0].Exercises); got != 1 {
		t.Errorf("day 1 exercises = %d, want 1", got)
	}
	if got := len(draft.Days[1].Exercises); got != 1 {
		t.Errorf("day 2 exercises = %d, want 1", got)
	}

	if err := b.SetActiveDay(draft.Days[0].ID); err != nil {
		t.Fatalf("SetActiveDay: %v", err)
	}
	b.AddExercise("Lunge", 2, 12, 20)
	if got := len(b.Draft().Days[0].Exercises); got != 2 {
		t.Errorf("day 1 exercises after switch = %d, want 2", got)
	}
}

func TestRemoveExercise(t *testing.T) {
	b := NewBuilder()
	b.AddExercise("Squat", 3, 5, 100)
	b.AddExercise("Lunge", 2, 12, 20)
	dayID := b.Draft().Days[0].ID

	if err := b.RemoveExercise(dayID, 0); err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	remaining := b.Draft().Days[0].Exercises
	if len(remaining) != 1 || remaining[0].Name != "Lunge" {
		t.Errorf("remaining = %+v, want only Lunge", remaining)
	}

	if err := b.RemoveExercise(dayID, 5); err != ErrNoSuchEntry {
		t.Errorf("out of range error = %v, want ErrNoSuchEntry", err)
	}
	if err := b.RemoveExercise("nope", 0); err != ErrNoSuchDay {
		t.Errorf("unknown day error = %v, want ErrNoSuchDay", err)
	}
}

func TestRenameDay(t *testing.T) {
	b := NewBuilder()
	dayID := b.Draft().Days[0].ID

	if err := b.RenameDay(dayID, "Heavy Lower"); err != nil {
		t.Fatalf("RenameDay: %v", err)
	}
	if got := b.Draft().Days[0].Title; got != "Heavy Lower" {
		t.Errorf("title = %q, want %q", got, "Heavy Lower")
	}

	// An empty rename keeps the current title.
	if err := b.RenameDay(dayID, ""); err != nil {
		t.Fatalf("RenameDay: %v", err)
	}
	if got := b.Draft().Days[0].Title; got != "Heavy Lower" {
		t.Errorf("title after empty rename = %q, want %q", got, "Heavy Lower")
	}
}

func TestCreateRequiresTitleAndResets(t *testing.T) {
	b := NewBuilder()
	creator := primitive.NewObjectID()

	if _, err := b.Create(creator, nil); err != ErrUntitledPlan {
		t.Fatalf("untitled Create error = %v, want ErrUntitledPlan", err)
	}

	b.SetTitle("Strength Block")
	b.AddExercise("Squat", 3, 5, 100)
	b.AddDay()
	b.AddExercise("Bench", 3, 8, 60)

	patient := primitive.NewObjectID()
	plan, err := b.Create(creator, &patient)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plan.Title != "Strength Block" || plan.CreatedBy != creator {
		t.Errorf("plan header = %q by %s", plan.Title, plan.CreatedBy.Hex())
	}
	if plan.AssignedTo == nil || *plan.AssignedTo != patient {
		t.Error("assignment lost on Create")
	}
	if len(plan.Days) != 2 {
		t.Errorf("plan days = %d, want 2", len(plan.Days))
	}

	// The builder is back to its initial one-day empty state.
	draft := b.Draft()
	if draft.Title != "" || len(draft.Days) != 1 || len(draft.Days[0].Exercises) != 0 {
		t.Errorf("draft after Create = %+v, want pristine", draft)
	}
}

func TestWorkbenchIsolatesProfessionals(t *testing.T) {
	w := NewWorkbench()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	w.For(a).SetTitle("A's plan")
	if got := w.For(b).Draft().Title; got != "" {
		t.Errorf("professional b sees title %q", got)
	}
	if got := w.For(a).Draft().Title; got != "A's plan" {
		t.Errorf("professional a lost title, got %q", got)
	}
}
