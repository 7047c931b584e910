package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ChatRequest is a customer question for the help assistant
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type AssistantController struct {
	service services.AssistantService
}

func NewAssistantController(service services.AssistantService) *AssistantController {
	return &AssistantController{service: service}
}

// Chat godoc
// @Summary Ask the help assistant
// @Description Short answers about the menu and delivery times
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Customer prompt"
// @Success 200 {object} services.ChatReply
// @Failure 400 {object} models.APIError
// @Failure 503 {object} models.APIError
// @Router /api/v1/ai-help/chat [post]
func (ac *AssistantController) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reply, err := ac.service.Chat(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
