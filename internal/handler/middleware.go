package handler

import (
	"strings"
	"time"

	"shopledger/internal/auth"
	"shopledger/internal/config"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const actorKey = "actor"

// GinLogger routes request logs through the shared logrus instance.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		config.Logger().WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Info("request")
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				config.Logger().WithFields(logrus.Fields{
					"path":  c.Request.URL.Path,
					"panic": r,
				}).Error("panic recovered")
				response.FailKind(c, response.KindInternal, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// Auth validates the bearer token and stores the actor on the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.FailKind(c, response.KindUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		actor, err := auth.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.FailKind(c, response.KindUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequirePermission gates a route group on the RBAC table.
func RequirePermission(perm auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if !auth.Can(actor, perm) {
			response.FailKind(c, response.KindForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) auth.Actor {
	return c.MustGet(actorKey).(auth.Actor)
}
