package domain

import "testing"

func TestNextDayIsAlwaysTheFirst(t *testing.T) {
	plan := WorkoutPlan{Days: []Day{
		{ID: "a", Title: "Push"},
		{ID: "b", Title: "Pull"},
	}}

	if next := plan.NextDay(); next == nil || next.ID != "a" {
		t.Errorf("NextDay = %+v, want day a", next)
	}

	empty := WorkoutPlan{}
	if next := empty.NextDay(); next != nil {
		t.Errorf("NextDay on empty plan = %+v, want nil", next)
	}
}
