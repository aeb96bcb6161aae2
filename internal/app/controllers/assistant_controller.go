package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/middleware"
	"github.com/yigit/abiturient/internal/pkg/assistant"
)

type AssistantController struct {
	respond func(string) assistant.Reply
}

// NewAssistantController creates a new AssistantController
func NewAssistantController(respond func(string) assistant.Reply) *AssistantController {
	return &AssistantController{respond: respond}
}

// Chat answers one message
// @Summary Ask the assistant
// @Description Returns the scripted reply for the message. Replies depend only on the message text.
// @Tags assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChatRequest true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.ChatResponse}
// @Failure 400 {object} dto.ErrorResponse "Empty message"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /assistant/chat [post]
func (c *AssistantController) Chat(ctx *gin.Context) {
	var req dto.ChatRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	reply := c.respond(req.Message)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ChatResponse{
		Content:  reply.Content,
		Category: string(reply.Category),
	}))
}

// Greeting returns the opening message of a conversation
// @Summary Assistant greeting
// @Tags assistant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ChatResponse}
// @Router /assistant/greeting [get]
func (c *AssistantController) Greeting(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ChatResponse{
		Content:  assistant.Greeting.Content,
		Category: string(assistant.Greeting.Category),
	}))
}
