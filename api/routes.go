package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paper_binder/config"
	"paper_binder/paper"
)

// Config holds what the handlers share across requests. Everything in it is
// read-only after start-up.
type Config struct {
	Server    config.ServerConfig
	Generator *paper.Generator
	Logger    *logrus.Logger
}

func SetupRoutes(r *gin.Engine, config *Config) {
	apiGroup := r.Group("/api/papers")
	apiGroup.Use(RequestID())
	{
		apiGroup.POST("/pdf", func(c *gin.Context) { HandleGeneratePDF(c, config) })
		apiGroup.POST("/zip", func(c *gin.Context) { HandleGenerateZip(c, config) })
		apiGroup.POST("/layout", func(c *gin.Context) { HandleLayout(c, config) })
	}
}

// RequestID tags every request with a fresh id, echoed in HeaderRequestID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
