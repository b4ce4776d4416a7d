package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Accounts/internal/middlewares"
	"github.com/Gopher0727/Accounts/internal/services"
	logger "github.com/Gopher0727/Accounts/middleware/log"
)

type GuildHandler struct {
	GuildService *services.GuildService
	log          *logger.Logger
}

func NewGuildHandler(guildService *services.GuildService, log *logger.Logger) *GuildHandler {
	return &GuildHandler{GuildService: guildService, log: log}
}

func (h *GuildHandler) CreateGuild(c *gin.Context) {
	var req services.CreateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}
	guild, err := h.GuildService.CreateGuild(c.Request.Context(), middlewares.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, guild)
}

// CreateInvite 生成邀请码；请求体可以为空
func (h *GuildHandler) CreateInvite(c *gin.Context) {
	guildID, ok := idParam(c, "guild_id")
	if !ok {
		return
	}
	var req services.CreateInviteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
	}
	invite, err := h.GuildService.CreateInvite(c.Request.Context(), middlewares.UserID(c), guildID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

func (h *GuildHandler) ListInvites(c *gin.Context) {
	guildID, ok := idParam(c, "guild_id")
	if !ok {
		return
	}
	invites, err := h.GuildService.ListInvites(c.Request.Context(), middlewares.UserID(c), guildID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

func (h *GuildHandler) GetInvite(c *gin.Context) {
	invite, err := h.GuildService.GetInvite(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invite)
}

// UseInvite 通过邀请码加入 Guild
func (h *GuildHandler) UseInvite(c *gin.Context) {
	invite, err := h.GuildService.UseInvite(c.Request.Context(), middlewares.UserID(c), c.Param("code"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invite)
}

// RevokeInvite DELETE /api/v1/invites/:code
func (h *GuildHandler) RevokeInvite(c *gin.Context) {
	if err := h.GuildService.RevokeInvite(c.Request.Context(), middlewares.UserID(c), c.Param("code")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
