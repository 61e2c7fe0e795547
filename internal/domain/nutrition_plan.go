package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meal is one timed entry within a nutrition plan.
type Meal struct {
	Time  string   `bson:"time" json:"time"` // "15:04" clock string
	Name  string   `bson:"name" json:"name"`
	Items []string `bson:"items" json:"items"`
}

// NutritionPlan is the diet a professional assigns to a patient. The most
// recently created plan for a patient is the active one.
type NutritionPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Title     string             `bson:"title" json:"title"`
	Calories  int                `bson:"calories" json:"calories"`
	Goal      string             `bson:"goal,omitempty" json:"goal,omitempty"` // e.g. "cutting", "bulking"
	Meals     []Meal             `bson:"meals" json:"meals"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
