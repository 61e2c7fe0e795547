package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"fridman/health-hub/internal/repository"
	"fridman/health-hub/internal/service"
	"fridman/health-hub/internal/session"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientHandler serves the patient's own data and drives the live
// workout session.
type PatientHandler struct {
	patientService service.PatientService
}

func NewPatientHandler(patientService service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// StartSessionRequest picks a plan and optionally a day; omitting the day
// starts the plan's next workout.
type StartSessionRequest struct {
	PlanID string `json:"planId" binding:"required"`
	DayID  string `json:"dayId,omitempty"`
}

type SetPositionRequest struct {
	ExerciseIndex int `json:"exerciseIndex"`
	SetIndex      int `json:"setIndex"`
}

type EditSetRequest struct {
	ExerciseIndex int    `json:"exerciseIndex"`
	SetIndex      int    `json:"setIndex"`
	Field         string `json:"field" binding:"required,oneof=reps weight"`
	Value         string `json:"value"`
}

// GetHome godoc
// @Summary Landing screen: plans, next workout, recent logs and diet
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.HomeView
// @Router /patient/home [get]
func (h *PatientHandler) GetHome(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	home, err := h.patientService.Home(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load home view")
		return
	}
	c.JSON(http.StatusOK, home)
}

// GetPlans godoc
// @Summary List the patient's workout plans
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutPlan
// @Router /patient/plans [get]
func (h *PatientHandler) GetPlans(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	plans, err := h.patientService.Plans(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetNutrition godoc
// @Summary Get the patient's current diet
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.NutritionPlan
// @Failure 404 {object} gin.H "No diet assigned yet"
// @Router /patient/nutrition [get]
func (h *PatientHandler) GetNutrition(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	plan, err := h.patientService.Nutrition(c.Request.Context(), patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No nutrition plan assigned yet")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve nutrition plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetLogs godoc
// @Summary List the patient's workout history
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutLog
// @Router /patient/logs [get]
func (h *PatientHandler) GetLogs(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	logs, err := h.patientService.Logs(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetProfessionals godoc
// @Summary List active professionals available for messaging
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /patient/professionals [get]
func (h *PatientHandler) GetProfessionals(c *gin.Context) {
	pros, err := h.patientService.Professionals(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve professionals")
		return
	}

	resp := make([]UserResponse, len(pros))
	for i := range pros {
		resp[i] = MapUserToResponse(&pros[i])
	}
	c.JSON(http.StatusOK, resp)
}

// StartSession godoc
// @Summary Start a live workout session from one day of a plan
// @Description Replaces any session already running for this patient.
// @Tags Patient
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartSessionRequest true "Plan and day"
// @Success 201 {object} session.Snapshot
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Plan or day not found"
// @Router /patient/session [post]
func (h *PatientHandler) StartSession(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	snap, err := h.patientService.StartSession(c.Request.Context(), patientID, planID, req.DayID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotAvailable), errors.Is(err, session.ErrNoSuchDay):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to start session")
		}
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetSession godoc
// @Summary Get the current session state
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.Snapshot
// @Failure 404 {object} gin.H "No active session"
// @Router /patient/session [get]
func (h *PatientHandler) GetSession(c *gin.Context) {
	sess, ok := h.activeSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ToggleSet godoc
// @Summary Toggle one set's completed flag
// @Description Completing a set arms a fresh 60-second rest countdown.
// @Tags Patient
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetPositionRequest true "Set position"
// @Success 200 {object} session.Snapshot
// @Failure 404 {object} gin.H "No active session or no such set"
// @Router /patient/session/toggle [post]
func (h *PatientHandler) ToggleSet(c *gin.Context) {
	sess, ok := h.activeSession(c)
	if !ok {
		return
	}

	var req SetPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := sess.ToggleSet(req.ExerciseIndex, req.SetIndex); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// EditSet godoc
// @Summary Overwrite a set's reps or weight
// @Description The value is free text; anything non-numeric becomes zero.
// @Tags Patient
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EditSetRequest true "Set edit"
// @Success 200 {object} session.Snapshot
// @Router /patient/session/set [post]
func (h *PatientHandler) EditSet(c *gin.Context) {
	sess, ok := h.activeSession(c)
	if !ok {
		return
	}

	var req EditSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := sess.EditSet(req.ExerciseIndex, req.SetIndex, req.Field, req.Value); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ExtendRest godoc
// @Summary Add 30 seconds to the rest countdown
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.Snapshot
// @Router /patient/session/rest/extend [post]
func (h *PatientHandler) ExtendRest(c *gin.Context) {
	sess, ok := h.activeSession(c)
	if !ok {
		return
	}
	sess.ExtendRest()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// SkipRest godoc
// @Summary Dismiss the rest countdown early
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.Snapshot
// @Router /patient/session/rest/skip [post]
func (h *PatientHandler) SkipRest(c *gin.Context) {
	sess, ok := h.activeSession(c)
	if !ok {
		return
	}
	sess.SkipRest()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// FinishSession godoc
// @Summary Finish the session and record the workout
// @Description Only completed sets make it into the log.
// @Tags Patient
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.WorkoutLog
// @Failure 404 {object} gin.H "No active session"
// @Router /patient/session/finish [post]
func (h *PatientHandler) FinishSession(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	log, err := h.patientService.FinishSession(patientID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// CloseSession godoc
// @Summary Discard the session without recording anything
// @Tags Patient
// @Security BearerAuth
// @Success 204 "Session discarded"
// @Failure 404 {object} gin.H "No active session"
// @Router /patient/session [delete]
func (h *PatientHandler) CloseSession(c *gin.Context) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	if err := h.patientService.CloseSession(patientID); err != nil {
		h.sessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamSession godoc
// @Summary Stream live session snapshots over SSE
// @Description Emits a snapshot on every transition and every clock tick until the session ends or the client disconnects.
// @Tags Patient
// @Produce text/event-stream
// @Security BearerAuth
// @Failure 404 {object} gin.H "No active session"
// @Router /patient/session/stream [get]
func (h *PatientHandler) StreamSession(c *gin.Context) {
	sess, ok := h.activeSession(c)
	if !ok {
		return
	}

	updates, cancel := sess.Watch()
	defer cancel()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("session", snap)
			return true
		case <-clientGone:
			return false
		}
	})
}

func (h *PatientHandler) activeSession(c *gin.Context) (*session.Session, bool) {
	patientID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return nil, false
	}

	sess, err := h.patientService.Session(patientID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "No active workout session")
		return nil, false
	}
	return sess, true
}

func (h *PatientHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveSession), errors.Is(err, session.ErrSessionOver):
		abortWithError(c, http.StatusNotFound, "No active workout session")
	case errors.Is(err, session.ErrNoSuchSet):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrBadField):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Session operation failed")
	}
}
