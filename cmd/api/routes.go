package main

import (
	"database/sql"
	"net/http"
	"time"

	"summers-phone/internal/auth"
	"summers-phone/internal/httpapi"
	"summers-phone/internal/telephony"
	"summers-phone/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(
	r *gin.Engine,
	h httpapi.Handlers,
	webhook telephony.SMSWebhookHandler,
	authManager *auth.Manager,
	db *sql.DB,
	rdb *redis.Client,
) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public). Authenticated by Twilio signature, not JWT.
	r.POST("/api/webhooks/twilio/sms", webhook.HandleInboundSMS)

	// Dashboard session endpoints.
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(authManager))
	{
		v1.GET("/contacts", h.ListContacts)
		v1.POST("/contacts", h.CreateContact)

		v1.GET("/conversations", h.ListConversations)

		v1.GET("/messages", h.ListMessages)
		v1.POST("/messages", h.SendMessage)

		v1.GET("/calls", h.ListCalls)
		v1.POST("/calls", h.InitiateCall)
	}
}
