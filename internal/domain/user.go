package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Status reflects the account lifecycle. Professionals start out pending
// and are switched to active by an admin approval.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusInactive Status = "inactive"
)

// Plan tiers mirrored into the profile at registration time.
const (
	PlanTierFree         = "free"
	PlanTierProfessional = "professional_tier"
	PlanTierAdmin        = "admin_tier"
)

// User represents an authenticated principal (patient, professional or admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	PlanTier     string             `bson:"planTier" json:"planTier"`
	Status       Status             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

func (u *User) IsProfessional() bool {
	return u.Role == RoleProfessional
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DefaultPlanTier returns the plan tier a freshly registered account gets.
func DefaultPlanTier(role Role) string {
	switch role {
	case RoleProfessional:
		return PlanTierProfessional
	case RoleAdmin:
		return PlanTierAdmin
	default:
		return PlanTierFree
	}
}

// InitialStatus returns the account status at registration. Professionals
// wait for admin approval; everyone else is active immediately.
func InitialStatus(role Role) Status {
	if role == RoleProfessional {
		return StatusPending
	}
	return StatusActive
}

// RoutePrefixForRole computes the only top-level route prefix the role may
// reach. Requests outside the prefix are bounced back to it.
func RoutePrefixForRole(role Role) string {
	switch role {
	case RoleProfessional:
		return "/pro"
	case RoleAdmin:
		return "/admin"
	default:
		return "/patient"
	}
}

// DefaultPathForRole is the landing path after login or a principal switch.
func DefaultPathForRole(role Role) string {
	switch role {
	case RoleProfessional:
		return "/pro/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/patient/home"
	}
}
