package repository

import (
	"context"

	"fridman/health-hub/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	GetByRoleAndStatus(ctx context.Context, role domain.Role, status domain.Status) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.Status) error
	CountAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// WorkoutPlanRepository defines the interface for workout plan records.
// Plans are immutable once created; there is no update method.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error)
	GetByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	GetForPatient(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	CountAll(ctx context.Context) (int64, error)
}

// WorkoutLogRepository stores finished-session records. Append-only.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByPatient(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutLog, error)
	GetRecent(ctx context.Context, limit int64) ([]domain.WorkoutLog, error)
}

// AppointmentRepository defines the interface for appointment records.
// No update or delete: rescheduling is out of scope.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByProfessional(ctx context.Context, professionalID primitive.ObjectID) ([]domain.Appointment, error)
	GetByProfessionalAndDate(ctx context.Context, professionalID primitive.ObjectID, date string) ([]domain.Appointment, error)
}

// MessageRepository stores chat turns. ListByConversation returns messages
// ordered by sentAt ascending.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (primitive.ObjectID, error)
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}

// NutritionPlanRepository keeps one active diet per patient (latest wins).
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error)
	GetLatestForPatient(ctx context.Context, patientID primitive.ObjectID) (*domain.NutritionPlan, error)
}
