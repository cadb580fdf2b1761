package middleware

import (
	"net/http"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/domain"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is a local interface so any package with a matching
// Enforce method satisfies it.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		role := c.GetString("role")

		if userID == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			UserID:   userID,
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
