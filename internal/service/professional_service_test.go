package service

import (
	"context"
	"sync"
	"testing"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/planner"
	"fridman/health-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// rosterUserRepo serves a fixed set of users keyed by id.
type rosterUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func (r *rosterUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (r *rosterUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *rosterUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *rosterUserRepo) GetByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *rosterUserRepo) GetByRoleAndStatus(_ context.Context, _ domain.Role, _ domain.Status) ([]domain.User, error) {
	return nil, nil
}

func (r *rosterUserRepo) UpdateStatus(_ context.Context, _ primitive.ObjectID, _ domain.Status) error {
	return nil
}

func (r *rosterUserRepo) CountAll(_ context.Context) (int64, error) { return 0, nil }

func (r *rosterUserRepo) CountByRole(_ context.Context, _ domain.Role) (int64, error) {
	return 0, nil
}

// recordingAppointmentRepo keeps every booking it is handed, collisions
// included.
type recordingAppointmentRepo struct {
	mu    sync.Mutex
	appts []domain.Appointment
}

func (r *recordingAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts = append(r.appts, *appt)
	return nil
}

func (r *recordingAppointmentRepo) GetByProfessional(_ context.Context, professionalID primitive.ObjectID) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Appointment
	for _, a := range r.appts {
		if a.ProfessionalID == professionalID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *recordingAppointmentRepo) GetByProfessionalAndDate(_ context.Context, professionalID primitive.ObjectID, date string) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Appointment
	for _, a := range r.appts {
		if a.ProfessionalID == professionalID && a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func scheduleFixture() (ProfessionalService, *recordingAppointmentRepo, primitive.ObjectID, primitive.ObjectID) {
	pro := primitive.NewObjectID()
	patient := primitive.NewObjectID()
	users := &rosterUserRepo{users: map[primitive.ObjectID]domain.User{
		pro:     {ID: pro, Name: "Dana Reyes", Role: domain.RoleProfessional, Status: domain.StatusActive},
		patient: {ID: patient, Name: "Ira Holt", Role: domain.RolePatient, Status: domain.StatusActive},
	}}
	appts := &recordingAppointmentRepo{}
	svc := NewProfessionalService(users, nil, nil, appts, nil, planner.NewWorkbench())
	return svc, appts, pro, patient
}

func TestScheduleRequiresDateAndTime(t *testing.T) {
	svc, appts, pro, patient := scheduleFixture()

	cases := []struct {
		name string
		date string
		at   string
	}{
		{"empty date", "", "10:00"},
		{"empty time", "2025-03-10", ""},
		{"both empty", "", ""},
		{"malformed date", "10/03/2025", "10:00"},
	}
	for _, tc := range cases {
		if _, err := svc.Schedule(context.Background(), pro, patient, tc.date, tc.at, ""); err != ErrAppointmentFields {
			t.Errorf("%s: Schedule error = %v, want ErrAppointmentFields", tc.name, err)
		}
	}
	if len(appts.appts) != 0 {
		t.Errorf("repo holds %d appointments after rejected bookings, want 0", len(appts.appts))
	}
}

func TestScheduleDefaultsToConsultation(t *testing.T) {
	svc, _, pro, patient := scheduleFixture()

	appt, err := svc.Schedule(context.Background(), pro, patient, "2025-03-10", "10:00", "")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if appt.Type != domain.AppointmentTypeConsultation {
		t.Errorf("type = %q, want %q", appt.Type, domain.AppointmentTypeConsultation)
	}
	if appt.Status != domain.AppointmentScheduled {
		t.Errorf("status = %q, want %q", appt.Status, domain.AppointmentScheduled)
	}
	if appt.ID == "" {
		t.Error("appointment id not assigned")
	}

	followUp, err := svc.Schedule(context.Background(), pro, patient, "2025-03-11", "11:00", domain.AppointmentTypeFollowUp)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if followUp.Type != domain.AppointmentTypeFollowUp {
		t.Errorf("explicit type = %q, want %q", followUp.Type, domain.AppointmentTypeFollowUp)
	}
}

func TestScheduleKeepsDoubleBookings(t *testing.T) {
	svc, appts, pro, patient := scheduleFixture()

	first, err := svc.Schedule(context.Background(), pro, patient, "2025-03-10", "10:00", "")
	if err != nil {
		t.Fatalf("first Schedule: %v", err)
	}
	second, err := svc.Schedule(context.Background(), pro, patient, "2025-03-10", "10:00", "")
	if err != nil {
		t.Fatalf("same-slot Schedule: %v", err)
	}
	if first.ID == second.ID {
		t.Error("same-slot bookings share an id")
	}

	stored, err := appts.GetByProfessionalAndDate(context.Background(), pro, "2025-03-10")
	if err != nil {
		t.Fatalf("GetByProfessionalAndDate: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored = %d appointments on the slot's date, want 2", len(stored))
	}
}

func TestScheduleRejectsNonPatientTarget(t *testing.T) {
	svc, appts, pro, _ := scheduleFixture()

	if _, err := svc.Schedule(context.Background(), pro, pro, "2025-03-10", "10:00", ""); err != ErrNotAPatient {
		t.Errorf("Schedule(professional target) error = %v, want ErrNotAPatient", err)
	}
	if _, err := svc.Schedule(context.Background(), pro, primitive.NewObjectID(), "2025-03-10", "10:00", ""); err != ErrUserNotFound {
		t.Errorf("Schedule(unknown target) error = %v, want ErrUserNotFound", err)
	}
	if len(appts.appts) != 0 {
		t.Errorf("repo holds %d appointments, want 0", len(appts.appts))
	}
}
