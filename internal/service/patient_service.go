package service

import (
	"context"
	"errors"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"
	"fridman/health-hub/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPlanNotAvailable = errors.New("plan is not available to this patient")
	ErrUserNotFound     = errors.New("user not found")
)

// HomeView is the patient's landing screen in one payload: visible plans,
// the suggested next workout, recent history and the current diet.
type HomeView struct {
	Plans      []domain.WorkoutPlan  `json:"plans"`
	NextPlanID string                `json:"nextPlanId,omitempty"`
	NextDay    *domain.Day           `json:"nextDay,omitempty"`
	RecentLogs []domain.WorkoutLog   `json:"recentLogs"`
	Nutrition  *domain.NutritionPlan `json:"nutrition,omitempty"`
}

// PatientService backs the patient's home screen: assigned plans, the live
// workout session, the current diet and past workout history.
type PatientService interface {
	Home(ctx context.Context, patientID primitive.ObjectID) (*HomeView, error)
	Plans(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	Nutrition(ctx context.Context, patientID primitive.ObjectID) (*domain.NutritionPlan, error)
	Logs(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutLog, error)
	Professionals(ctx context.Context) ([]domain.User, error)

	StartSession(ctx context.Context, patientID, planID primitive.ObjectID, dayID string) (session.Snapshot, error)
	Session(patientID primitive.ObjectID) (*session.Session, error)
	FinishSession(patientID primitive.ObjectID) (*domain.WorkoutLog, error)
	CloseSession(patientID primitive.ObjectID) error
}

type patientService struct {
	userRepo      repository.UserRepository
	planRepo      repository.WorkoutPlanRepository
	logRepo       repository.WorkoutLogRepository
	nutritionRepo repository.NutritionPlanRepository
	sessions      *session.Manager
}

func NewPatientService(
	userRepo repository.UserRepository,
	planRepo repository.WorkoutPlanRepository,
	logRepo repository.WorkoutLogRepository,
	nutritionRepo repository.NutritionPlanRepository,
	sessions *session.Manager,
) PatientService {
	return &patientService{
		userRepo:      userRepo,
		planRepo:      planRepo,
		logRepo:       logRepo,
		nutritionRepo: nutritionRepo,
		sessions:      sessions,
	}
}

// Home assembles the landing screen. The suggested next workout is the
// first day of the newest visible plan.
func (s *patientService) Home(ctx context.Context, patientID primitive.ObjectID) (*HomeView, error) {
	plans, err := s.planRepo.GetForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(logs) > 5 {
		logs = logs[:5]
	}

	view := &HomeView{Plans: plans, RecentLogs: logs}
	if len(plans) > 0 {
		if next := plans[0].NextDay(); next != nil {
			view.NextPlanID = plans[0].ID.Hex()
			view.NextDay = next
		}
	}

	nutrition, err := s.nutritionRepo.GetLatestForPatient(ctx, patientID)
	switch {
	case err == nil:
		view.Nutrition = nutrition
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}
	return view, nil
}

// Plans lists the programs visible to the patient: assigned directly or
// published without an assignment.
func (s *patientService) Plans(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	return s.planRepo.GetForPatient(ctx, patientID)
}

// Nutrition returns the patient's current diet, the most recently
// assigned one winning.
func (s *patientService) Nutrition(ctx context.Context, patientID primitive.ObjectID) (*domain.NutritionPlan, error) {
	return s.nutritionRepo.GetLatestForPatient(ctx, patientID)
}

func (s *patientService) Logs(ctx context.Context, patientID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return s.logRepo.GetByPatient(ctx, patientID)
}

// Professionals lists the active coaches a patient can message.
func (s *patientService) Professionals(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetByRoleAndStatus(ctx, domain.RoleProfessional, domain.StatusActive)
}

// StartSession begins a live workout from one day of a visible plan,
// replacing any session the patient already has running.
func (s *patientService) StartSession(ctx context.Context, patientID, planID primitive.ObjectID, dayID string) (session.Snapshot, error) {
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Snapshot{}, ErrUserNotFound
		}
		return session.Snapshot{}, err
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Snapshot{}, ErrPlanNotAvailable
		}
		return session.Snapshot{}, err
	}
	if plan.AssignedTo != nil && *plan.AssignedTo != patientID {
		return session.Snapshot{}, ErrPlanNotAvailable
	}

	// An omitted day means "start my next workout".
	if dayID == "" {
		next := plan.NextDay()
		if next == nil {
			return session.Snapshot{}, session.ErrNoSuchDay
		}
		dayID = next.ID
	}

	return s.sessions.Start(patient, plan, dayID)
}

func (s *patientService) Session(patientID primitive.ObjectID) (*session.Session, error) {
	return s.sessions.Get(patientID)
}

func (s *patientService) FinishSession(patientID primitive.ObjectID) (*domain.WorkoutLog, error) {
	return s.sessions.Finish(patientID)
}

func (s *patientService) CloseSession(patientID primitive.ObjectID) error {
	return s.sessions.Close(patientID)
}
