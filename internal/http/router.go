package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/masterok/backend/internal/config"
	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/http/handlers"
	"github.com/masterok/backend/internal/http/middleware"
	"github.com/masterok/backend/internal/knowledge"
	"github.com/masterok/backend/internal/service"

	_ "github.com/masterok/backend/docs"
)

func Router(cfg config.Config, store db.Store, orchestrator *service.Orchestrator, terminal *service.Terminal, kb *knowledge.Base, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Orchestrator: orchestrator,
		Terminal:     terminal,
		Knowledge:    kb,
		Store:        store,
		Validator:    validator.New(),
		Logger:       logger,
		AdminKey:     cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		ai := api.Group("/ai")
		{
			ai.POST("/messages", h.ProcessMessage)
			ai.POST("/web-form", h.WebForm)
			ai.GET("/conversations/active", h.ActiveConversations)
			ai.GET("/conversations/:client_id", h.ConversationStatus)
		}

		kbGroup := api.Group("/knowledge")
		{
			kbGroup.GET("/solutions", h.Solutions)
			kbGroup.GET("/solutions/:problem_id", h.SolutionByID)
		}

		masters := api.Group("/masters")
		{
			masters.POST("/register", h.RegisterMaster)
			masters.GET("", h.ListMasters)
			masters.GET("/available/by-category/:category", h.AvailableMasters)
			masters.GET("/:master_id", h.MasterProfile)
			masters.PATCH("/:master_id/profile", h.UpdateMasterProfile)
			masters.PUT("/:master_id/schedule", h.UpdateMasterSchedule)
			masters.POST("/:master_id/activate-terminal", h.ActivateTerminal)
			masters.POST("/:master_id/availability/confirm", h.ConfirmAvailability)
		}

		terminalGroup := api.Group("/terminal")
		{
			terminalGroup.GET("/jobs/:master_id", h.MasterJobs)
			terminalGroup.GET("/jobs/:master_id/active", h.ActiveJob)
			terminalGroup.POST("/jobs/:master_id/accept/:job_id", h.AcceptJob)
			terminalGroup.POST("/jobs/:master_id/reject/:job_id", h.RejectJob)
			terminalGroup.PATCH("/jobs/:master_id/status/:job_id", h.UpdateJobStatus)
			terminalGroup.POST("/payment/process", h.ProcessPayment)
			terminalGroup.POST("/payment/confirm/:transaction_id", h.ConfirmPayment)
			terminalGroup.GET("/earnings/:master_id", h.Earnings)
		}
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/terminal/internal/reassign-job/:job_id", h.ReassignJob)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
