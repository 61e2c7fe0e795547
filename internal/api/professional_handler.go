package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/planner"
	"fridman/health-hub/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfessionalHandler serves the coaching surface: roster, plan
// workbench, diets and the appointment calendar.
type ProfessionalHandler struct {
	professionalService service.ProfessionalService
}

func NewProfessionalHandler(professionalService service.ProfessionalService) *ProfessionalHandler {
	return &ProfessionalHandler{professionalService: professionalService}
}

type SetPlanTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

type RenameDayRequest struct {
	Title string `json:"title" binding:"required"`
}

type AddExerciseRequest struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type CommitPlanRequest struct {
	AssignedTo string `json:"assignedTo,omitempty"`
}

type ScheduleRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Type      string `json:"type,omitempty"`
}

type AssignNutritionRequest struct {
	Title    string        `json:"title" binding:"required"`
	Calories int           `json:"calories"`
	Goal     string        `json:"goal"`
	Meals    []domain.Meal `json:"meals"`
}

// GetDashboard godoc
// @Summary Landing view: headline numbers, today's schedule, latest workouts
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /pro/dashboard [get]
func (h *ProfessionalHandler) GetDashboard(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	dashboard, err := h.professionalService.Dashboard(c.Request.Context(), professionalID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetPatients godoc
// @Summary List the patient roster
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /pro/patients [get]
func (h *ProfessionalHandler) GetPatients(c *gin.Context) {
	patients, err := h.professionalService.Patients(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve patients")
		return
	}

	resp := make([]UserResponse, len(patients))
	for i := range patients {
		resp[i] = MapUserToResponse(&patients[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetPatientDetail godoc
// @Summary Get one patient with workout history and current diet
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 200 {object} service.PatientOverview
// @Failure 404 {object} gin.H "Patient not found"
// @Router /pro/patients/{id} [get]
func (h *ProfessionalHandler) GetPatientDetail(c *gin.Context) {
	patientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	overview, err := h.professionalService.PatientDetail(c.Request.Context(), patientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotAPatient):
			abortWithError(c, http.StatusNotFound, "Patient not found")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve patient")
		}
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetDraft godoc
// @Summary Get the in-progress plan draft
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Success 200 {object} planner.Draft
// @Router /pro/plan-builder [get]
func (h *ProfessionalHandler) GetDraft(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.professionalService.PlanBuilder(professionalID).Draft())
}

// SetPlanTitle godoc
// @Summary Set the draft plan's title
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetPlanTitleRequest true "Title"
// @Success 200 {object} planner.Draft
// @Router /pro/plan-builder/title [put]
func (h *ProfessionalHandler) SetPlanTitle(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	var req SetPlanTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	builder := h.professionalService.PlanBuilder(professionalID)
	builder.SetTitle(req.Title)
	c.JSON(http.StatusOK, builder.Draft())
}

// AddDay godoc
// @Summary Append a new day to the draft and make it active
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Success 200 {object} planner.Draft
// @Router /pro/plan-builder/days [post]
func (h *ProfessionalHandler) AddDay(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	builder := h.professionalService.PlanBuilder(professionalID)
	builder.AddDay()
	c.JSON(http.StatusOK, builder.Draft())
}

// RenameDay godoc
// @Summary Rename one draft day
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param body body RenameDayRequest true "New title"
// @Success 200 {object} planner.Draft
// @Failure 404 {object} gin.H "Day not found"
// @Router /pro/plan-builder/days/{dayId} [put]
func (h *ProfessionalHandler) RenameDay(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	var req RenameDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	builder := h.professionalService.PlanBuilder(professionalID)
	if err := builder.RenameDay(c.Param("dayId"), req.Title); err != nil {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, builder.Draft())
}

// ActivateDay godoc
// @Summary Point the draft's active-day cursor at one day
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 200 {object} planner.Draft
// @Failure 404 {object} gin.H "Day not found"
// @Router /pro/plan-builder/days/{dayId}/activate [post]
func (h *ProfessionalHandler) ActivateDay(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	builder := h.professionalService.PlanBuilder(professionalID)
	if err := builder.SetActiveDay(c.Param("dayId")); err != nil {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, builder.Draft())
}

// AddExercise godoc
// @Summary Add an exercise to the active draft day
// @Description All sets share the given reps and weight. An empty name is silently ignored.
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddExerciseRequest true "Exercise"
// @Success 200 {object} planner.Draft
// @Router /pro/plan-builder/exercises [post]
func (h *ProfessionalHandler) AddExercise(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	builder := h.professionalService.PlanBuilder(professionalID)
	builder.AddExercise(req.Name, req.Sets, req.Reps, req.Weight)
	c.JSON(http.StatusOK, builder.Draft())
}

// RemoveExercise godoc
// @Summary Remove one exercise from a draft day
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param index path int true "Exercise position"
// @Success 200 {object} planner.Draft
// @Failure 404 {object} gin.H "Day or exercise not found"
// @Router /pro/plan-builder/days/{dayId}/exercises/{index} [delete]
func (h *ProfessionalHandler) RemoveExercise(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise index")
		return
	}

	builder := h.professionalService.PlanBuilder(professionalID)
	if err := builder.RemoveExercise(c.Param("dayId"), index); err != nil {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, builder.Draft())
}

// CommitPlan godoc
// @Summary Save the draft as a plan and reset the workbench
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CommitPlanRequest true "Optional patient assignment"
// @Success 201 {object} domain.WorkoutPlan
// @Failure 422 {object} gin.H "Draft has no title"
// @Router /pro/plans [post]
func (h *ProfessionalHandler) CommitPlan(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	var req CommitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	var assignedTo *primitive.ObjectID
	if req.AssignedTo != "" {
		id, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid patient ID format")
			return
		}
		assignedTo = &id
	}

	plan, err := h.professionalService.CommitPlan(c.Request.Context(), professionalID, assignedTo)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrUntitledPlan):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotAPatient):
			abortWithError(c, http.StatusNotFound, "Assigned patient not found")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create plan")
		}
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlans godoc
// @Summary List the plans this professional created
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutPlan
// @Router /pro/plans [get]
func (h *ProfessionalHandler) GetPlans(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	plans, err := h.professionalService.Plans(c.Request.Context(), professionalID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// AssignNutrition godoc
// @Summary Assign a diet to a patient
// @Description The newest assignment becomes the patient's current diet.
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Param body body AssignNutritionRequest true "Diet"
// @Success 201 {object} domain.NutritionPlan
// @Failure 404 {object} gin.H "Patient not found"
// @Router /pro/patients/{id}/nutrition [post]
func (h *ProfessionalHandler) AssignNutrition(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}
	patientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req AssignNutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.professionalService.AssignNutrition(c.Request.Context(), professionalID, patientID, domain.NutritionPlan{
		Title:    req.Title,
		Calories: req.Calories,
		Goal:     req.Goal,
		Meals:    req.Meals,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotAPatient):
			abortWithError(c, http.StatusNotFound, "Patient not found")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign nutrition plan")
		}
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// Schedule godoc
// @Summary Book an appointment
// @Description No conflict detection: the same slot can be booked twice.
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScheduleRequest true "Appointment"
// @Success 201 {object} domain.Appointment
// @Failure 400 {object} gin.H "Missing date or time"
// @Failure 404 {object} gin.H "Patient not found"
// @Router /pro/appointments [post]
func (h *ProfessionalHandler) Schedule(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient ID format")
		return
	}

	appt, err := h.professionalService.Schedule(c.Request.Context(), professionalID, patientID, req.Date, req.Time, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentFields):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotAPatient):
			abortWithError(c, http.StatusNotFound, "Patient not found")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		}
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// GetCalendar godoc
// @Summary Render one month of appointments as a grid
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Success 200 {object} scheduler.MonthView
// @Router /pro/calendar [get]
func (h *ProfessionalHandler) GetCalendar(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	now := time.Now()
	year := now.Year()
	month := now.Month()
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid year")
			return
		}
		year = v
	}
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			abortWithError(c, http.StatusBadRequest, "Invalid month")
			return
		}
		month = time.Month(v)
	}

	view, err := h.professionalService.Calendar(c.Request.Context(), professionalID, year, month)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load calendar")
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetDay godoc
// @Summary List every appointment on one date
// @Tags Professional
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (2006-01-02)"
// @Success 200 {object} service.DayDetail
// @Router /pro/calendar/{date} [get]
func (h *ProfessionalHandler) GetDay(c *gin.Context) {
	professionalID, ok := principalID(c)
	if !ok {
		return
	}

	date := c.Param("date")
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected 2006-01-02")
		return
	}

	detail, err := h.professionalService.Day(c.Request.Context(), professionalID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load day")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func principalID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return primitive.NilObjectID, false
	}
	return id, true
}

func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
		return primitive.NilObjectID, false
	}
	return id, true
}
