package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	C "crmetrics/config"
	U "crmetrics/util"
)

// scope constants.
const SCOPE_REQ_ID = "reqId"

// RequestIdGenerator - Tags every request with an id for log correlation.
func RequestIdGenerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		U.SetScope(c, SCOPE_REQ_ID, U.GetUUID())
		c.Next()
	}
}

// CustomCors - Permissive cors for the dashboard frontend in development.
func CustomCors() gin.HandlerFunc {
	return func(c *gin.Context) {
		corsConfig := cors.DefaultConfig()

		if C.IsDevelopment() {
			log.Info("Running in development..")
			corsConfig.AllowOrigins = []string{"http://localhost:8080", "http://localhost:3000", "http://localhost:8501"}
		} else {
			corsConfig.AllowAllOrigins = true
		}

		cors.New(corsConfig)(c)
		c.Next()
	}
}
