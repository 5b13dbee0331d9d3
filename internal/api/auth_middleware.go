package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
)

// contextUserKey is where the authenticated user id lives in the gin
// context.
const contextUserKey = "userID"

// AuthRequired resolves the caller's identity from the bearer token and
// injects it into the request context. Session issuance and verification
// live outside this service; by the time a request lands here the token's
// subject is the user id.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, constants.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		userID := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// sessionUserID returns the authenticated user id for the request.
func sessionUserID(c *gin.Context) string {
	v, _ := c.Get(contextUserKey)
	s, _ := v.(string)
	return s
}
