package service

import (
	"context"
	"errors"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/planner"
	"fridman/health-hub/internal/repository"
	"fridman/health-hub/internal/scheduler"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAppointmentFields = errors.New("appointment date and time are required")
	ErrNotAPatient       = errors.New("target user is not a patient")
)

// PatientOverview is one roster entry enriched with recent activity.
type PatientOverview struct {
	Patient   domain.User           `json:"patient"`
	Logs      []domain.WorkoutLog   `json:"logs"`
	Nutrition *domain.NutritionPlan `json:"nutrition,omitempty"`
}

// Dashboard is the professional's landing view: headline numbers, the
// current day's schedule and the latest workouts across the platform.
type Dashboard struct {
	PatientCount       int64                `json:"patientCount"`
	PlanCount          int                  `json:"planCount"`
	TodaysAppointments []domain.Appointment `json:"todaysAppointments"`
	RecentActivity     []domain.WorkoutLog  `json:"recentActivity"`
}

// DayDetail lists a date's appointments with patient names resolved.
type DayDetail struct {
	Date         string               `json:"date"`
	Appointments []domain.Appointment `json:"appointments"`
	PatientNames map[string]string    `json:"patientNames"`
}

// ProfessionalService covers the coaching side: the patient roster, plan
// authoring through the workbench, diet assignment and the appointment
// calendar.
type ProfessionalService interface {
	Dashboard(ctx context.Context, professionalID primitive.ObjectID) (*Dashboard, error)
	Patients(ctx context.Context) ([]domain.User, error)
	PatientDetail(ctx context.Context, patientID primitive.ObjectID) (*PatientOverview, error)

	PlanBuilder(professionalID primitive.ObjectID) *planner.Builder
	CommitPlan(ctx context.Context, professionalID primitive.ObjectID, assignedTo *primitive.ObjectID) (*domain.WorkoutPlan, error)
	Plans(ctx context.Context, professionalID primitive.ObjectID) ([]domain.WorkoutPlan, error)

	AssignNutrition(ctx context.Context, professionalID, patientID primitive.ObjectID, plan domain.NutritionPlan) (*domain.NutritionPlan, error)

	Schedule(ctx context.Context, professionalID, patientID primitive.ObjectID, date, at, apptType string) (*domain.Appointment, error)
	Calendar(ctx context.Context, professionalID primitive.ObjectID, year int, month time.Month) (scheduler.MonthView, error)
	Day(ctx context.Context, professionalID primitive.ObjectID, date string) (*DayDetail, error)
}

type professionalService struct {
	userRepo        repository.UserRepository
	planRepo        repository.WorkoutPlanRepository
	logRepo         repository.WorkoutLogRepository
	appointmentRepo repository.AppointmentRepository
	nutritionRepo   repository.NutritionPlanRepository
	workbench       *planner.Workbench
}

func NewProfessionalService(
	userRepo repository.UserRepository,
	planRepo repository.WorkoutPlanRepository,
	logRepo repository.WorkoutLogRepository,
	appointmentRepo repository.AppointmentRepository,
	nutritionRepo repository.NutritionPlanRepository,
	workbench *planner.Workbench,
) ProfessionalService {
	return &professionalService{
		userRepo:        userRepo,
		planRepo:        planRepo,
		logRepo:         logRepo,
		appointmentRepo: appointmentRepo,
		nutritionRepo:   nutritionRepo,
		workbench:       workbench,
	}
}

// Dashboard assembles the landing view in one call.
func (s *professionalService) Dashboard(ctx context.Context, professionalID primitive.ObjectID) (*Dashboard, error) {
	patientCount, err := s.userRepo.CountByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}

	plans, err := s.planRepo.GetByCreator(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	today := time.Now().Format(domain.DateLayout)
	appts, err := s.appointmentRepo.GetByProfessionalAndDate(ctx, professionalID, today)
	if err != nil {
		return nil, err
	}

	recent, err := s.logRepo.GetRecent(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		PatientCount:       patientCount,
		PlanCount:          len(plans),
		TodaysAppointments: appts,
		RecentActivity:     recent,
	}, nil
}

// Patients lists every patient profile for the roster view.
func (s *professionalService) Patients(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetByRole(ctx, domain.RolePatient)
}

// PatientDetail resolves one roster entry: profile, workout history and
// the currently assigned diet. A patient with no diet yet still resolves.
func (s *professionalService) PatientDetail(ctx context.Context, patientID primitive.ObjectID) (*PatientOverview, error) {
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !patient.IsPatient() {
		return nil, ErrNotAPatient
	}

	logs, err := s.logRepo.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	overview := &PatientOverview{Patient: *patient, Logs: logs}
	nutrition, err := s.nutritionRepo.GetLatestForPatient(ctx, patientID)
	switch {
	case err == nil:
		overview.Nutrition = nutrition
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}
	return overview, nil
}

// PlanBuilder returns the professional's own draft workbench.
func (s *professionalService) PlanBuilder(professionalID primitive.ObjectID) *planner.Builder {
	return s.workbench.For(professionalID)
}

// CommitPlan turns the professional's draft into a stored plan, optionally
// assigned to one patient, and resets the workbench.
func (s *professionalService) CommitPlan(ctx context.Context, professionalID primitive.ObjectID, assignedTo *primitive.ObjectID) (*domain.WorkoutPlan, error) {
	if assignedTo != nil {
		target, err := s.userRepo.GetByID(ctx, *assignedTo)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if !target.IsPatient() {
			return nil, ErrNotAPatient
		}
	}

	plan, err := s.workbench.For(professionalID).Create(professionalID, assignedTo)
	if err != nil {
		return nil, err
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

func (s *professionalService) Plans(ctx context.Context, professionalID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	return s.planRepo.GetByCreator(ctx, professionalID)
}

// AssignNutrition stores a new diet for the patient. The newest assignment
// is the one the patient sees; older ones stay as history.
func (s *professionalService) AssignNutrition(ctx context.Context, professionalID, patientID primitive.ObjectID, plan domain.NutritionPlan) (*domain.NutritionPlan, error) {
	target, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !target.IsPatient() {
		return nil, ErrNotAPatient
	}

	plan.PatientID = patientID
	plan.CreatedBy = professionalID
	id, err := s.nutritionRepo.Create(ctx, &plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return &plan, nil
}

// Schedule books an appointment. Date and time are required; the slot is
// not checked for collisions, so double-booking goes through.
func (s *professionalService) Schedule(ctx context.Context, professionalID, patientID primitive.ObjectID, date, at, apptType string) (*domain.Appointment, error) {
	if date == "" || at == "" {
		return nil, ErrAppointmentFields
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, ErrAppointmentFields
	}
	if apptType == "" {
		apptType = domain.AppointmentTypeConsultation
	}

	target, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !target.IsPatient() {
		return nil, ErrNotAPatient
	}

	appt := &domain.Appointment{
		ID:             uuid.NewString(),
		ProfessionalID: professionalID,
		PatientID:      patientID,
		Date:           date,
		Time:           at,
		Type:           apptType,
		Status:         domain.AppointmentScheduled,
	}
	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Calendar renders one month of the professional's appointments.
func (s *professionalService) Calendar(ctx context.Context, professionalID primitive.ObjectID, year int, month time.Month) (scheduler.MonthView, error) {
	appts, err := s.appointmentRepo.GetByProfessional(ctx, professionalID)
	if err != nil {
		return scheduler.MonthView{}, err
	}
	return scheduler.MonthGrid(year, month, appts, time.Now()), nil
}

// Day lists one date in full, resolving each patient id to a name for
// display. A deleted or unknown patient falls back to the raw id.
func (s *professionalService) Day(ctx context.Context, professionalID primitive.ObjectID, date string) (*DayDetail, error) {
	appts, err := s.appointmentRepo.GetByProfessionalAndDate(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, a := range appts {
		key := a.PatientID.Hex()
		if _, ok := names[key]; ok {
			continue
		}
		patient, err := s.userRepo.GetByID(ctx, a.PatientID)
		if err != nil {
			names[key] = key
			continue
		}
		names[key] = patient.Name
	}

	return &DayDetail{Date: date, Appointments: appts, PatientNames: names}, nil
}
