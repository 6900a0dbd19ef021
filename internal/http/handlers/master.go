package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/masterok/backend/internal/models"
)

type MasterRegistrationRequest struct {
	FullName         string   `json:"full_name" validate:"required"`
	Phone            string   `json:"phone" validate:"required"`
	Email            string   `json:"email" validate:"omitempty,email"`
	City             string   `json:"city" validate:"required"`
	Specializations  []string `json:"specializations" validate:"required,min=1"`
	ExperienceYears  float64  `json:"experience_years" validate:"gte=0"`
	PreferredChannel string   `json:"preferred_channel"`
}

// @Summary Register a master
// @Description Entry point for master onboarding; the profile stays pending until schedule and terminal are set up
// @Tags masters
// @Accept json
// @Produce json
// @Param request body MasterRegistrationRequest true "registration"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/masters/register [post]
func (h *Handler) RegisterMaster(c *gin.Context) {
	var req MasterRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}

	master, err := h.Terminal.RegisterMaster(c.Request.Context(), models.Master{
		FullName:         req.FullName,
		Phone:            req.Phone,
		Email:            req.Email,
		City:             req.City,
		Specializations:  req.Specializations,
		ExperienceYears:  req.ExperienceYears,
		PreferredChannel: req.PreferredChannel,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"master_id": master.ID,
		"status":    master.Status,
		"message":   "Регистрация принята. Пожалуйста, настройте расписание и активируйте терминал.",
		"next_steps": []string{
			"1. Укажите ваше расписание работы",
			"2. Добавьте зоны обслуживания",
			"3. Активируйте терминал для приема оплаты",
		},
	})
}

// @Summary Get master profile
// @Tags masters
// @Produce json
// @Param master_id path string true "master id"
// @Success 200 {object} models.Master
// @Failure 404 {object} map[string]any
// @Router /api/masters/{master_id} [get]
func (h *Handler) MasterProfile(c *gin.Context) {
	master, err := h.Terminal.GetMaster(c.Request.Context(), c.Param("master_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, master)
}

type MasterProfileUpdate struct {
	ServiceZones []models.ServiceZone `json:"service_zones"`
	Tools        []string             `json:"tools"`
	City         string               `json:"city"`
}

// @Summary Update master profile
// @Tags masters
// @Accept json
// @Produce json
// @Param master_id path string true "master id"
// @Param request body MasterProfileUpdate true "profile"
// @Success 200 {object} map[string]any
// @Router /api/masters/{master_id}/profile [patch]
func (h *Handler) UpdateMasterProfile(c *gin.Context) {
	var req MasterProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	master, err := h.Terminal.GetMaster(c.Request.Context(), c.Param("master_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if req.ServiceZones != nil {
		master.ServiceZones = req.ServiceZones
	}
	if req.Tools != nil {
		master.Tools = req.Tools
	}
	if req.City != "" {
		master.City = req.City
	}
	master, err = h.Terminal.UpdateProfile(c.Request.Context(), master)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Профиль обновлен", "master": master})
}

type MasterScheduleUpdate struct {
	Schedule map[string]models.DaySchedule `json:"schedule" validate:"required"`
}

// @Summary Update master schedule
// @Description Replaces the weekly schedule; activates the master once schedule and terminal are both in place
// @Tags masters
// @Accept json
// @Produce json
// @Param master_id path string true "master id"
// @Param request body MasterScheduleUpdate true "schedule"
// @Success 200 {object} map[string]any
// @Router /api/masters/{master_id}/schedule [put]
func (h *Handler) UpdateMasterSchedule(c *gin.Context) {
	var req MasterScheduleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}
	master, err := h.Terminal.UpdateSchedule(c.Request.Context(), c.Param("master_id"), req.Schedule)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Расписание обновлено",
		"schedule": master.Schedule,
		"status":   master.Status,
	})
}

type TerminalActivationRequest struct {
	TerminalType string `json:"terminal_type" validate:"required,oneof=mobile physical"`
}

// @Summary Activate payment terminal
// @Tags masters
// @Accept json
// @Produce json
// @Param master_id path string true "master id"
// @Param request body TerminalActivationRequest true "terminal"
// @Success 200 {object} map[string]any
// @Router /api/masters/{master_id}/activate-terminal [post]
func (h *Handler) ActivateTerminal(c *gin.Context) {
	var req TerminalActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}
	masterID := c.Param("master_id")
	master, err := h.Terminal.ActivateTerminal(c.Request.Context(), masterID, req.TerminalType)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if req.TerminalType == "mobile" {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Мобильный терминал активирован",
			"terminal_type": "mobile",
			"terminal_url":  "/master/terminal/" + masterID,
			"master_status": master.Status,
		})
		return
	}
	pickupCode := masterID
	if len(pickupCode) > 8 {
		pickupCode = pickupCode[:8]
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Физический терминал назначен",
		"terminal_type": "physical",
		"pickup_location": gin.H{
			"address":       "ул. Примерная, д. 1",
			"working_hours": "Пн-Пт 9:00-18:00",
			"pickup_code":   "TERM-" + strings.ToUpper(pickupCode),
		},
		"master_status": master.Status,
	})
}

// @Summary Confirm today's availability
// @Tags masters
// @Produce json
// @Param master_id path string true "master id"
// @Param available query bool true "available"
// @Param start_hour query int false "start hour"
// @Param end_hour query int false "end hour"
// @Success 200 {object} map[string]any
// @Router /api/masters/{master_id}/availability/confirm [post]
func (h *Handler) ConfirmAvailability(c *gin.Context) {
	available := c.Query("available") == "true"
	startHour, _ := strconv.Atoi(c.DefaultQuery("start_hour", "8"))
	endHour, _ := strconv.Atoi(c.DefaultQuery("end_hour", "20"))

	master, err := h.Terminal.ConfirmAvailability(c.Request.Context(), c.Param("master_id"), available, startHour, endHour)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": master.Status, "schedule": master.Schedule})
}

// @Summary List available masters for a category
// @Description Active masters with the specialization, best first
// @Tags masters
// @Produce json
// @Param category path string true "category"
// @Param city query string false "city filter"
// @Success 200 {object} map[string]any
// @Router /api/masters/available/by-category/{category} [get]
func (h *Handler) AvailableMasters(c *gin.Context) {
	masters, err := h.Terminal.AvailableMasters(c.Request.Context(), c.Param("category"), c.Query("city"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(masters), "masters": masters})
}

// @Summary List masters
// @Tags masters
// @Produce json
// @Param status query string false "status filter"
// @Success 200 {object} map[string]any
// @Router /api/masters [get]
func (h *Handler) ListMasters(c *gin.Context) {
	masters, err := h.Terminal.ListMasters(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(masters), "masters": masters})
}
