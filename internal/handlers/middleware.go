package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	callerKey = "caller"
)

// Identity reads the caller resolved by the upstream auth layer. Who decides
// the effective role (base profile, demo flag, override) is not this
// service's business; it trusts the headers.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(callerKey, services.Caller{
			ID:   c.GetHeader(headerUserID),
			Role: c.GetHeader(headerUserRole),
		})
		c.Next()
	}
}

// RequireUser rejects requests that arrived without an identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller(c).ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing user identity",
				"code":  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) services.Caller {
	if v, ok := c.Get(callerKey); ok {
		if cl, ok := v.(services.Caller); ok {
			return cl
		}
	}
	return services.Caller{}
}
