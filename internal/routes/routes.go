package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "teamjoin/docs"

	"teamjoin/internal/handlers"
	"teamjoin/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	adminHandler *handlers.AdminHandler,
	authHandler *handlers.AuthHandler, // nil: админка выключена
	integrationsHandler *handlers.IntegrationsHandler, // nil: режим polling
	jwtSecret []byte,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", adminHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if integrationsHandler != nil {
		r.POST("/integrations/telegram/webhook", integrationsHandler.Webhook)
	}

	if authHandler == nil {
		return r
	}
	r.POST("/login", authHandler.Login)

	// ---- protected
	admin := r.Group("/", middleware.AuthMiddleware(jwtSecret))
	{
		admin.GET("/members", adminHandler.ListMembers)
		admin.GET("/invites", adminHandler.ListInvites)
		admin.POST("/invites", adminHandler.CreateInvite)
		admin.GET("/reports/members.pdf", adminHandler.MembersReport)
	}
	return r
}
