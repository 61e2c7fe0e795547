package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubUserRepo serves a single mutable user, enough for the gate to
// re-read live status.
type stubUserRepo struct {
	mu   sync.Mutex
	user domain.User
}

func (r *stubUserRepo) setStatus(status domain.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user.Status = status
}

func (r *stubUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.user.ID {
		return nil, repository.ErrNotFound
	}
	u := r.user
	return &u, nil
}

func (r *stubUserRepo) Create(context.Context, *domain.User) (primitive.ObjectID, error) {
	return primitive.NilObjectID, repository.ErrUpdateFailed
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByRole(context.Context, domain.Role) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) GetByRoleAndStatus(context.Context, domain.Role, domain.Status) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) UpdateStatus(context.Context, primitive.ObjectID, domain.Status) error {
	return nil
}

func (r *stubUserRepo) CountAll(context.Context) (int64, error) { return 0, nil }

func (r *stubUserRepo) CountByRole(context.Context, domain.Role) (int64, error) { return 0, nil }

const testSecret = "test-secret"

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func gateRouter(userRepo repository.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	pro := router.Group("/api/v1/pro")
	pro.Use(AuthMiddleware(testSecret), RoleMiddleware(domain.RoleProfessional), PendingGate(userRepo))
	pro.GET("/patients", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"patients": []string{}})
	})
	return router
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPendingGateBlocksUntilApproval(t *testing.T) {
	proID := primitive.NewObjectID()
	repo := &stubUserRepo{user: domain.User{
		ID:     proID,
		Role:   domain.RoleProfessional,
		Status: domain.StatusPending,
	}}
	router := gateRouter(repo)
	token := signToken(t, proID, domain.RoleProfessional)

	// Pending: the URL answers, but with the gate instead of the resource.
	rec := doGet(router, "/api/v1/pro/patients", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["gate"] != "awaiting_approval" {
		t.Errorf("body = %v, want the approval gate", body)
	}

	// The same token reaches the real view once the status flips; no
	// re-login required.
	repo.setStatus(domain.StatusActive)
	rec = doGet(router, "/api/v1/pro/patients", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status after approval = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "awaiting_approval") {
		t.Error("gate still rendered after approval")
	}

	repo.setStatus(domain.StatusInactive)
	if rec := doGet(router, "/api/v1/pro/patients", token); rec.Code != http.StatusForbidden {
		t.Errorf("status when inactive = %d, want 403", rec.Code)
	}
}

func TestRoleMiddlewareRedirectsForeignRoles(t *testing.T) {
	proID := primitive.NewObjectID()
	repo := &stubUserRepo{user: domain.User{
		ID:     proID,
		Role:   domain.RoleProfessional,
		Status: domain.StatusActive,
	}}
	router := gateRouter(repo)

	patientToken := signToken(t, primitive.NewObjectID(), domain.RolePatient)
	rec := doGet(router, "/api/v1/pro/patients", patientToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["redirectTo"] != "/patient/home" {
		t.Errorf("redirectTo = %v, want /patient/home", body["redirectTo"])
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	repo := &stubUserRepo{}
	router := gateRouter(repo)

	if rec := doGet(router, "/api/v1/pro/patients", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}
	if rec := doGet(router, "/api/v1/pro/patients", "not-a-jwt"); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}
}
