package mongo

import (
	"context"
	"errors"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const appointmentCollectionName = "appointments"

// mongoAppointmentRepository implements repository.AppointmentRepository
type mongoAppointmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAppointmentRepository creates a new Appointment repository.
func NewMongoAppointmentRepository(db *mongo.Database) repository.AppointmentRepository {
	return &mongoAppointmentRepository{
		collection: db.Collection(appointmentCollectionName),
	}
}

// Create inserts a new appointment. Double-booking the same date and time
// is allowed: there is no uniqueness constraint on the slot.
func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	if appt.ID == "" || appt.Date == "" || appt.Time == "" {
		return errors.New("appointment requires id, date, and time")
	}
	_, err := r.collection.InsertOne(ctx, appt)
	return err
}

// GetByProfessional retrieves every appointment owned by a professional,
// ordered by date then time.
func (r *mongoAppointmentRepository) GetByProfessional(ctx context.Context, professionalID primitive.ObjectID) ([]domain.Appointment, error) {
	return r.findAppointments(ctx, bson.M{"professionalId": professionalID})
}

// GetByProfessionalAndDate retrieves the appointments for one calendar day,
// ordered by time ascending.
func (r *mongoAppointmentRepository) GetByProfessionalAndDate(ctx context.Context, professionalID primitive.ObjectID, date string) ([]domain.Appointment, error) {
	return r.findAppointments(ctx, bson.M{"professionalId": professionalID, "date": date})
}

func (r *mongoAppointmentRepository) findAppointments(ctx context.Context, filter bson.M) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	return appts, nil
}

// EnsureAppointmentIndexes creates indexes for the appointments collection.
func EnsureAppointmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Not unique: the same slot may be booked twice.
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
