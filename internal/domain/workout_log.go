package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoggedSet is a set the patient actually completed during a session.
type LoggedSet struct {
	Index  int     `bson:"index" json:"index"`
	Reps   int     `bson:"reps" json:"reps"`
	Weight float64 `bson:"weight" json:"weight"`
}

// LoggedExercise keeps every exercise of the session, even ones where no
// set was completed (those carry an empty set list).
type LoggedExercise struct {
	Name string      `bson:"name" json:"name"`
	Sets []LoggedSet `bson:"sets" json:"sets"`
}

// WorkoutLog is the immutable record produced when a session finishes.
// It is appended to the patient's history exactly once and never mutated.
type WorkoutLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID       primitive.ObjectID `bson:"patientId" json:"patientId"`
	PatientName     string             `bson:"patientName" json:"patientName"` // Denormalized for activity feeds
	PlanID          string             `bson:"planId" json:"planId"`
	Title           string             `bson:"title" json:"title"`
	DurationSeconds int                `bson:"durationSeconds" json:"durationSeconds"`
	Exercises       []LoggedExercise   `bson:"exercises" json:"exercises"`
	TotalVolume     float64            `bson:"totalVolume" json:"totalVolume"`
	CompletedAt     time.Time          `bson:"completedAt" json:"completedAt"`
}
