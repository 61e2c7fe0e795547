package service

import (
	"context"
	"errors"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotAProfessional = errors.New("target user is not a professional")

// PlatformCounts is the admin dashboard's headline numbers.
type PlatformCounts struct {
	Users         int64 `json:"users"`
	Patients      int64 `json:"patients"`
	Professionals int64 `json:"professionals"`
	Plans         int64 `json:"plans"`
}

// AdminService handles platform oversight: approving pending
// professionals, deactivating accounts and the activity dashboard.
type AdminService interface {
	PendingProfessionals(ctx context.Context) ([]domain.User, error)
	Professionals(ctx context.Context) ([]domain.User, error)
	Approve(ctx context.Context, userID primitive.ObjectID) error
	Deactivate(ctx context.Context, userID primitive.ObjectID) error
	Counts(ctx context.Context) (*PlatformCounts, error)
	RecentActivity(ctx context.Context, limit int64) ([]domain.WorkoutLog, error)
}

type adminService struct {
	userRepo repository.UserRepository
	planRepo repository.WorkoutPlanRepository
	logRepo  repository.WorkoutLogRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	planRepo repository.WorkoutPlanRepository,
	logRepo repository.WorkoutLogRepository,
) AdminService {
	return &adminService{
		userRepo: userRepo,
		planRepo: planRepo,
		logRepo:  logRepo,
	}
}

// PendingProfessionals lists the approval queue.
func (s *adminService) PendingProfessionals(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetByRoleAndStatus(ctx, domain.RoleProfessional, domain.StatusPending)
}

func (s *adminService) Professionals(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetByRole(ctx, domain.RoleProfessional)
}

// Approve flips a pending professional to active. The professional passes
// the pending gate on their next request; no re-login is needed.
func (s *adminService) Approve(ctx context.Context, userID primitive.ObjectID) error {
	return s.setProfessionalStatus(ctx, userID, domain.StatusActive)
}

// Deactivate shuts a professional's account off.
func (s *adminService) Deactivate(ctx context.Context, userID primitive.ObjectID) error {
	return s.setProfessionalStatus(ctx, userID, domain.StatusInactive)
}

func (s *adminService) setProfessionalStatus(ctx context.Context, userID primitive.ObjectID, status domain.Status) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsProfessional() {
		return ErrNotAProfessional
	}
	return s.userRepo.UpdateStatus(ctx, userID, status)
}

// Counts aggregates the dashboard headline numbers.
func (s *adminService) Counts(ctx context.Context) (*PlatformCounts, error) {
	users, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	patients, err := s.userRepo.CountByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	professionals, err := s.userRepo.CountByRole(ctx, domain.RoleProfessional)
	if err != nil {
		return nil, err
	}
	plans, err := s.planRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	return &PlatformCounts{
		Users:         users,
		Patients:      patients,
		Professionals: professionals,
		Plans:         plans,
	}, nil
}

// RecentActivity feeds the dashboard's latest-workouts list.
func (s *adminService) RecentActivity(ctx context.Context, limit int64) ([]domain.WorkoutLog, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.logRepo.GetRecent(ctx, limit)
}
