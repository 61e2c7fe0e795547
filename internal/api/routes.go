package api

import (
	"net/http"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"
	"fridman/health-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every endpoint under /api/v1. Each role's surface
// lives behind its own prefix; stepping outside it answers 403 with the
// caller's own landing path. Professionals additionally pass through the
// approval gate on every request.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	userRepo repository.UserRepository,
	authService service.AuthService,
	patientService service.PatientService,
	professionalService service.ProfessionalService,
	adminService service.AdminService,
	chatService service.ChatService,
) {
	authHandler := NewAuthHandler(authService)
	patientHandler := NewPatientHandler(patientService)
	professionalHandler := NewProfessionalHandler(professionalService)
	adminHandler := NewAdminHandler(adminService)
	chatHandler := NewChatHandler(chatService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{
				"userId":      userID,
				"role":        role,
				"routePrefix": domain.RoutePrefixForRole(role),
				"defaultPath": domain.DefaultPathForRole(role),
			})
		})

		// Any authenticated role can chat; the pair of ids determines
		// the conversation.
		chatGroup := protected.Group("/chat")
		{
			chatGroup.GET("/:userId", chatHandler.GetHistory)
			chatGroup.POST("/:userId", chatHandler.Send)
			chatGroup.GET("/:userId/stream", chatHandler.Stream)
		}

		patientGroup := protected.Group("/patient")
		patientGroup.Use(RoleMiddleware(domain.RolePatient))
		{
			patientGroup.GET("/home", patientHandler.GetHome)
			patientGroup.GET("/plans", patientHandler.GetPlans)
			patientGroup.GET("/nutrition", patientHandler.GetNutrition)
			patientGroup.GET("/logs", patientHandler.GetLogs)
			patientGroup.GET("/professionals", patientHandler.GetProfessionals)

			patientGroup.POST("/session", patientHandler.StartSession)
			patientGroup.GET("/session", patientHandler.GetSession)
			patientGroup.DELETE("/session", patientHandler.CloseSession)
			patientGroup.GET("/session/stream", patientHandler.StreamSession)
			patientGroup.POST("/session/toggle", patientHandler.ToggleSet)
			patientGroup.POST("/session/set", patientHandler.EditSet)
			patientGroup.POST("/session/rest/extend", patientHandler.ExtendRest)
			patientGroup.POST("/session/rest/skip", patientHandler.SkipRest)
			patientGroup.POST("/session/finish", patientHandler.FinishSession)
		}

		proGroup := protected.Group("/pro")
		proGroup.Use(RoleMiddleware(domain.RoleProfessional), PendingGate(userRepo))
		{
			proGroup.GET("/dashboard", professionalHandler.GetDashboard)
			proGroup.GET("/patients", professionalHandler.GetPatients)
			proGroup.GET("/patients/:id", professionalHandler.GetPatientDetail)
			proGroup.POST("/patients/:id/nutrition", professionalHandler.AssignNutrition)

			proGroup.GET("/plan-builder", professionalHandler.GetDraft)
			proGroup.PUT("/plan-builder/title", professionalHandler.SetPlanTitle)
			proGroup.POST("/plan-builder/days", professionalHandler.AddDay)
			proGroup.PUT("/plan-builder/days/:dayId", professionalHandler.RenameDay)
			proGroup.POST("/plan-builder/days/:dayId/activate", professionalHandler.ActivateDay)
			proGroup.POST("/plan-builder/exercises", professionalHandler.AddExercise)
			proGroup.DELETE("/plan-builder/days/:dayId/exercises/:index", professionalHandler.RemoveExercise)

			proGroup.GET("/plans", professionalHandler.GetPlans)
			proGroup.POST("/plans", professionalHandler.CommitPlan)

			proGroup.POST("/appointments", professionalHandler.Schedule)
			proGroup.GET("/calendar", professionalHandler.GetCalendar)
			proGroup.GET("/calendar/:date", professionalHandler.GetDay)
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/professionals", adminHandler.GetProfessionals)
			adminGroup.GET("/professionals/pending", adminHandler.GetPendingProfessionals)
			adminGroup.POST("/professionals/:id/approve", adminHandler.Approve)
			adminGroup.POST("/professionals/:id/deactivate", adminHandler.Deactivate)
			adminGroup.GET("/counts", adminHandler.GetCounts)
			adminGroup.GET("/activity", adminHandler.GetActivity)
		}
	}
}
