package auth

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user_context"

// Middleware authenticates the bearer token and stores the caller in the gin
// context under "user_context", with the id also under "user_id".
func Middleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		user, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		SetUserContext(c, user)
		c.Next()
	}
}

func SetUserContext(c *gin.Context, user *models.UserContext) {
	c.Set(userContextKey, user)
	c.Set("user_id", user.UserID)
}

// GetUserContext returns the authenticated caller, if any
func GetUserContext(c *gin.Context) (*models.UserContext, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.UserContext)
	return user, ok && user != nil
}
