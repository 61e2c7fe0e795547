package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannedSet is one prescribed set within an exercise template.
type PlannedSet struct {
	Reps   int     `bson:"reps" json:"reps"`
	Weight float64 `bson:"weight" json:"weight"`
}

// Exercise is a named movement with its planned sets. Owned by a Day.
type Exercise struct {
	Name string       `bson:"name" json:"name"`
	Sets []PlannedSet `bson:"sets" json:"sets"`
}

// Day is one training day within a plan. Insertion order is significant:
// it drives both display order and "next day" selection.
type Day struct {
	ID        string     `bson:"id" json:"id"`
	Title     string     `bson:"title" json:"title"`
	Exercises []Exercise `bson:"exercises" json:"exercises"`
}

// WorkoutPlan is a named multi-day training program built by a professional.
// It is immutable once saved; patients reference it, never own it.
type WorkoutPlan struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title      string              `bson:"title" json:"title"`
	CreatedBy  primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	AssignedTo *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Days       []Day               `bson:"days" json:"days"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}

// NextDay returns the day a patient should do next. Deliberately the first
// day of the plan, matching the current product behavior; rotation is not
// implemented.
func (p *WorkoutPlan) NextDay() *Day {
	if len(p.Days) == 0 {
		return nil
	}
	return &p.Days[0]
}
