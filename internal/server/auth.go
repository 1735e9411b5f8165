package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/docflow/internal/authorization"
)

const contextRoleKey = "auth_role"

// APIKeyRequired resolves the caller role from a bearer API key.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			parts := strings.Fields(header)
			if len(parts) != 2 || parts[0] != "Bearer" {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			key = parts[1]
		}

		role, err := s.authzSvc.Authenticate(c.Request.Context(), key)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextRoleKey, role)
		c.Next()
	}
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func roleFromContext(c *gin.Context) (authorization.Role, bool) {
	value, ok := c.Get(contextRoleKey)
	if !ok {
		return "", false
	}
	role, ok := value.(authorization.Role)
	return role, ok && role != ""
}
