package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smuct-dev/studentbase-backend/internal/response"
)

// RequireAdmin checks the admin privilege flag on the verified claims.
// It consumes only what RequireJWT attached to the context, so it must be
// registered after RequireJWT in the chain; absent claims mean the chain was
// misconfigured and the request is rejected outright.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !claims.IsAdmin {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}

		c.Next()
	}
}
