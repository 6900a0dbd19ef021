package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/knowledge"
	"github.com/masterok/backend/internal/models"
	"github.com/masterok/backend/internal/service"
)

type Handler struct {
	Orchestrator *service.Orchestrator
	Terminal     *service.Terminal
	Knowledge    *knowledge.Base
	Store        db.Store
	Validator    *validator.Validate
	Logger       zerolog.Logger
	AdminKey     string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeServiceError maps service and store errors onto the error envelope.
func writeServiceError(c *gin.Context, err error) {
	var transition *models.InvalidTransitionError
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
	case errors.Is(err, db.ErrConflict):
		writeError(c, http.StatusConflict, "CONFLICT", "Record already exists", nil)
	case errors.Is(err, service.ErrPhoneRegistered):
		writeError(c, http.StatusBadRequest, "PHONE_REGISTERED", "Phone already registered", nil)
	case errors.Is(err, service.ErrNotOwner):
		writeError(c, http.StatusForbidden, "NOT_OWNER", "Job not assigned to this master", nil)
	case errors.Is(err, service.ErrNotCompleted):
		writeError(c, http.StatusBadRequest, "JOB_NOT_COMPLETED", "Job must be completed before payment", nil)
	case errors.As(err, &transition):
		writeError(c, http.StatusBadRequest, "INVALID_TRANSITION", transition.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Internal error", err.Error())
	}
}
