package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Accounts/internal/handlers"
	"github.com/Gopher0727/Accounts/internal/middlewares"
	"github.com/Gopher0727/Accounts/middleware/jwt"
	logger "github.com/Gopher0727/Accounts/middleware/log"
)

// Handlers groups everything the router needs. Bot is nil when bot creation
// is disabled, in which case the bot routes are not registered at all.
type Handlers struct {
	User  *handlers.UserHandler
	Bot   *handlers.BotHandler
	Guild *handlers.GuildHandler
}

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, log *logger.Logger, tokens *jwt.TokenManager, exists middlewares.AccountChecker, h Handlers) {
	r.Use(logger.Middleware(log), logger.Recovery(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	auth := middlewares.AuthMiddleware(tokens, exists)
	RegisterUserRoutes(r, auth, h.User, h.Bot)
	if h.Bot != nil {
		RegisterBotRoutes(r, auth, h.Bot)
	}
	RegisterGuildRoutes(r, auth, h.Guild)
}

func RegisterUserRoutes(r *gin.Engine, auth gin.HandlerFunc, userHandler *handlers.UserHandler, botHandler *handlers.BotHandler) {
	userGroup := r.Group("/api/v1/users")
	{
		userGroup.POST("/register", userHandler.Register)
		userGroup.POST("/login", userHandler.Login)
	}
	userGroup.Use(auth)
	{
		if botHandler != nil {
			userGroup.GET("/me/bots", middlewares.RequireHuman(), botHandler.ListMyBots)
		}
		userGroup.GET("/:user_id", userHandler.GetUser)
	}
}

func RegisterBotRoutes(r *gin.Engine, auth gin.HandlerFunc, botHandler *handlers.BotHandler) {
	botGroup := r.Group("/api/v1/bots", auth)
	{
		botGroup.GET("/:bot_id", botHandler.GetBot)
	}
	manage := botGroup.Group("", middlewares.RequireHuman())
	{
		manage.POST("", botHandler.CreateBot)
		manage.DELETE("/:bot_id", botHandler.DeleteBot)
	}
}

func RegisterGuildRoutes(r *gin.Engine, auth gin.HandlerFunc, guildHandler *handlers.GuildHandler) {
	guildGroup := r.Group("/api/v1/guilds", auth)
	{
		guildGroup.POST("", guildHandler.CreateGuild)
		guildGroup.POST("/:guild_id/invites", guildHandler.CreateInvite)
		guildGroup.GET("/:guild_id/invites", guildHandler.ListInvites)
	}

	inviteGroup := r.Group("/api/v1/invites")
	{
		inviteGroup.GET("/:code", guildHandler.GetInvite)
		inviteGroup.POST("/:code/use", auth, guildHandler.UseInvite)
		inviteGroup.DELETE("/:code", auth, guildHandler.RevokeInvite)
	}
}
