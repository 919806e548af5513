// Package router wires the operational HTTP endpoints.
package router

import (
	"time"

	"bridge-syncer/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// requestLogger logs each request with structured fields
func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Info("request handled")
	}
}

// New builds the gin engine with health, metrics and admin routes
func New(handler *handlers.SyncerHandler, log *logrus.Entry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log.WithField("component", "http")))

	engine.GET("/health", handler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := engine.Group("/admin")
	{
		admin.GET("/tickets/:ticket_id", handler.GetTicket)
		admin.GET("/chains", handler.ListChains)
		admin.GET("/tokens", handler.ListTokens)
		admin.POST("/sync", handler.TriggerSync)
		admin.POST("/tickets", handler.SendTicket)
	}

	return engine
}
