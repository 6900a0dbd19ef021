package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/masterok/backend/internal/service"
)

type MessageRequest struct {
	ClientID  string   `json:"client_id" validate:"required"`
	Message   string   `json:"message" validate:"required"`
	Channel   string   `json:"channel" validate:"required"`
	MediaURLs []string `json:"media_urls"`
	Metadata  struct {
		ClientName  string `json:"client_name"`
		ClientPhone string `json:"client_phone"`
	} `json:"metadata"`
}

// @Summary Process a client message
// @Description Runs the conversation pipeline: intent extraction, optional vision analysis, quoting and job creation
// @Tags ai
// @Accept json
// @Produce json
// @Param request body MessageRequest true "message"
// @Success 200 {object} service.MessageResult
// @Failure 400 {object} map[string]any
// @Router /api/ai/messages [post]
func (h *Handler) ProcessMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}

	result, err := h.Orchestrator.ProcessMessage(c.Request.Context(), req.ClientID, req.Message, req.Channel, req.MediaURLs, service.Metadata{
		ClientName:  req.Metadata.ClientName,
		ClientPhone: req.Metadata.ClientPhone,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type WebFormRequest struct {
	Name        string   `json:"name" validate:"required"`
	Phone       string   `json:"phone" validate:"required"`
	Email       string   `json:"email"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"problem_description" validate:"required"`
	Address     string   `json:"address" validate:"required"`
	PreferredAt string   `json:"preferred_time"`
	Photos      []string `json:"photos"`
}

// @Summary Handle a web form submission
// @Description Folds the form fields into a synthetic message and runs the conversation pipeline
// @Tags ai
// @Accept json
// @Produce json
// @Param request body WebFormRequest true "form"
// @Success 200 {object} service.MessageResult
// @Failure 400 {object} map[string]any
// @Router /api/ai/web-form [post]
func (h *Handler) WebForm(c *gin.Context) {
	var req WebFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", err.Error())
		return
	}

	clientID := "web_" + req.Email
	if req.Email == "" {
		clientID = "web_" + uuid.NewString()
	}
	message := fmt.Sprintf("Проблема: %s\nКатегория: %s\nАдрес: %s\nПредпочтительное время: %s",
		req.Description, req.Category, req.Address, req.PreferredAt)

	result, err := h.Orchestrator.ProcessMessage(c.Request.Context(), clientID, message, "web_form", req.Photos, service.Metadata{
		ClientName:  req.Name,
		ClientPhone: req.Phone,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Get conversation status
// @Tags ai
// @Produce json
// @Param client_id path string true "client id"
// @Success 200 {object} conversation.Summary
// @Failure 404 {object} map[string]any
// @Router /api/ai/conversations/{client_id} [get]
func (h *Handler) ConversationStatus(c *gin.Context) {
	summary := h.Orchestrator.ConversationStatus(c.Param("client_id"))
	if summary == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Conversation not found", nil)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Count active conversations
// @Tags ai
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/ai/conversations/active [get]
func (h *Handler) ActiveConversations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_conversations": h.Orchestrator.ActiveConversationCount(),
		"timestamp":            time.Now().UTC(),
	})
}

// @Summary List knowledge-base solutions
// @Tags knowledge
// @Produce json
// @Param category query string false "category filter"
// @Success 200 {object} map[string]any
// @Router /api/knowledge/solutions [get]
func (h *Handler) Solutions(c *gin.Context) {
	category := c.Query("category")
	solutions := h.Knowledge.ByCategory(category)
	c.JSON(http.StatusOK, gin.H{
		"total":     len(solutions),
		"solutions": solutions,
	})
}

// @Summary Get a knowledge-base solution
// @Tags knowledge
// @Produce json
// @Param problem_id path string true "problem id"
// @Success 200 {object} knowledge.Solution
// @Failure 404 {object} map[string]any
// @Router /api/knowledge/solutions/{problem_id} [get]
func (h *Handler) SolutionByID(c *gin.Context) {
	solution, ok := h.Knowledge.ByID(c.Param("problem_id"))
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Solution not found", nil)
		return
	}
	c.JSON(http.StatusOK, solution)
}
