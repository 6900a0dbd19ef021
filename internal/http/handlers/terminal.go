package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/masterok/backend/internal/models"
	"github.com/masterok/backend/internal/service"
)

// @Summary List a master's jobs
// @Tags terminal
// @Produce json
// @Param master_id path string true "master id"
// @Param status query string false "status filter"
// @Success 200 {object} map[string]any
// @Router /api/terminal/jobs/{master_id} [get]
func (h *Handler) MasterJobs(c *gin.Context) {
	jobs, err := h.Terminal.MasterJobs(c.Request.Context(), c.Param("master_id"), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(jobs), "jobs": jobs})
}

// @Summary Get a master's active job
// @Tags terminal
// @Produce json
// @Param master_id path string true "master id"
// @Success 200 {object} map[string]any
// @Router /api/terminal/jobs/{master_id}/active [get]
func (h *Handler) ActiveJob(c *gin.Context) {
	job, err := h.Terminal.ActiveJob(c.Request.Context(), c.Param("master_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_active_job": job != nil, "job": job})
}

// @Summary Accept an assigned job
// @Tags terminal
// @Produce json
// @Param master_id path string true "master id"
// @Param job_id path string true "job id"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /api/terminal/jobs/{master_id}/accept/{job_id} [post]
func (h *Handler) AcceptJob(c *gin.Context) {
	job, err := h.Terminal.AcceptJob(c.Request.Context(), c.Param("master_id"), c.Param("job_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Заказ принят", "job": job})
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// @Summary Reject an assigned job
// @Description Returns the job to the created state for reassignment
// @Tags terminal
// @Accept json
// @Produce json
// @Param master_id path string true "master id"
// @Param job_id path string true "job id"
// @Param request body RejectRequest false "reason"
// @Success 200 {object} map[string]any
// @Router /api/terminal/jobs/{master_id}/reject/{job_id} [post]
func (h *Handler) RejectJob(c *gin.Context) {
	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	job, err := h.Terminal.RejectJob(c.Request.Context(), c.Param("master_id"), c.Param("job_id"), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Заказ отклонен, будет переназначен другому мастеру",
		"job_id":  job.ID,
	})
}

type JobStatusUpdate struct {
	Status   string           `json:"status" validate:"required,oneof=in_transit in_progress completed"`
	Note     string           `json:"note"`
	Location *models.GeoPoint `json:"location"`
}

var statusMessages = map[string]string{
	models.JobInTransit:  "Статус обновлен: В пути к клиенту",
	models.JobInProgress: "Статус обновлен: Работы начаты",
	models.JobCompleted:  "Работа завершена. Теперь примите оплату.",
}

// @Summary Update job status
// @Tags terminal
// @Accept json
// @Produce json
// @Param master_id path string true "master id"
// @Param job_id path string true "job id"
// @Param request body JobStatusUpdate true "status"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/terminal/jobs/{master_id}/status/{job_id} [patch]
func (h *Handler) UpdateJobStatus(c *gin.Context) {
	var req JobStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}

	job, err := h.Terminal.UpdateJobStatus(c.Request.Context(), c.Param("master_id"), c.Param("job_id"), req.Status, req.Note, req.Location)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	message, ok := statusMessages[req.Status]
	if !ok {
		message = "Статус обновлен"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "job": job})
}

type PaymentProcessRequest struct {
	JobID         string          `json:"job_id" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card sbp"`
	Amount        decimal.Decimal `json:"amount"`
}

// @Summary Process payment for a completed job
// @Description Cash settles immediately; card and SBP return a payment link pending confirmation
// @Tags terminal
// @Accept json
// @Produce json
// @Param request body PaymentProcessRequest true "payment"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/terminal/payment/process [post]
func (h *Handler) ProcessPayment(c *gin.Context) {
	var req PaymentProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}

	result, err := h.Terminal.ProcessPayment(c.Request.Context(), req.JobID, req.PaymentMethod, req.Amount)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if req.PaymentMethod == service.PaymentCash {
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"message":         "Наличная оплата принята",
			"transaction":     result.Transaction,
			"master_earnings": result.Job.MasterEarnings,
			"payout_status":   "Будет перечислено на ваш счет",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Ссылка на оплату создана",
		"transaction":  result.Transaction,
		"payment_url":  result.PaymentURL,
		"qr_code_url":  result.QRCodeURL,
		"instructions": "Покажите QR-код клиенту или отправьте ссылку",
	})
}

// @Summary Confirm a pending payment
// @Tags terminal
// @Produce json
// @Param transaction_id path string true "transaction id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/terminal/payment/confirm/{transaction_id} [post]
func (h *Handler) ConfirmPayment(c *gin.Context) {
	tx, err := h.Terminal.ConfirmPayment(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Оплата подтверждена", "transaction": tx})
}

// @Summary Get a master's earnings summary
// @Tags terminal
// @Produce json
// @Param master_id path string true "master id"
// @Param period query string false "period"
// @Success 200 {object} service.EarningsSummary
// @Router /api/terminal/earnings/{master_id} [get]
func (h *Handler) Earnings(c *gin.Context) {
	summary, err := h.Terminal.Earnings(c.Request.Context(), c.Param("master_id"), c.DefaultQuery("period", "today"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type ReassignRequest struct {
	ExcludedMasterIDs []string `json:"excluded_master_ids"`
}

// @Summary Reassign a rejected job
// @Description Finds an alternative master excluding those who already declined
// @Tags terminal
// @Accept json
// @Produce json
// @Param job_id path string true "job id"
// @Param request body ReassignRequest false "exclusions"
// @Success 200 {object} map[string]any
// @Router /api/terminal/internal/reassign-job/{job_id} [post]
func (h *Handler) ReassignJob(c *gin.Context) {
	var req ReassignRequest
	_ = c.ShouldBindJSON(&req)

	job, assigned, err := h.Terminal.Reassign(c.Request.Context(), c.Param("job_id"), req.ExcludedMasterIDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": assigned, "job": job})
}
