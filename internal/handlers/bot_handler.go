package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Accounts/internal/middlewares"
	"github.com/Gopher0727/Accounts/internal/services"
	logger "github.com/Gopher0727/Accounts/middleware/log"
)

type BotHandler struct {
	BotService *services.BotService
	log        *logger.Logger
}

func NewBotHandler(botService *services.BotService, log *logger.Logger) *BotHandler {
	return &BotHandler{BotService: botService, log: log}
}

// CreateBot POST /api/v1/bots
func (h *BotHandler) CreateBot(c *gin.Context) {
	var payload services.CreateBotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	resp, err := h.BotService.CreateBot(c.Request.Context(), middlewares.UserID(c), payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteBot DELETE /api/v1/bots/:bot_id
func (h *BotHandler) DeleteBot(c *gin.Context) {
	botID, ok := idParam(c, "bot_id")
	if !ok {
		return
	}
	var payload services.DeleteBotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	if err := h.BotService.DeleteBot(c.Request.Context(), middlewares.UserID(c), botID, payload); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BotHandler) GetBot(c *gin.Context) {
	botID, ok := idParam(c, "bot_id")
	if !ok {
		return
	}
	bot, err := h.BotService.GetBot(c.Request.Context(), botID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bot)
}

// ListMyBots GET /api/v1/users/me/bots
func (h *BotHandler) ListMyBots(c *gin.Context) {
	bots, err := h.BotService.ListBots(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bots)
}
