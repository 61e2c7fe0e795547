package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus type for the appointment lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
)

// Appointment types offered in the scheduling form.
const (
	AppointmentTypeConsultation = "consultation"
	AppointmentTypeAssessment   = "assessment"
	AppointmentTypePersonal     = "personal_training"
	AppointmentTypeFollowUp     = "follow_up"
)

// Appointment is a scheduled meeting between a professional and a patient.
// Date is a calendar day string ("2006-01-02"), Time an "15:04" clock string;
// both are required at creation. There is no conflict detection: two
// appointments on the same slot are both kept.
type Appointment struct {
	ID             string             `bson:"_id" json:"id"` // Generated uuid
	ProfessionalID primitive.ObjectID `bson:"professionalId" json:"professionalId"`
	PatientID      primitive.ObjectID `bson:"patientId" json:"patientId"`
	Date           string             `bson:"date" json:"date"`
	Time           string             `bson:"time" json:"time"`
	Type           string             `bson:"type" json:"type"`
	Status         AppointmentStatus  `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// DateLayout is the calendar-day format used everywhere an Appointment
// date travels (storage, filtering, grid cells).
const DateLayout = "2006-01-02"
