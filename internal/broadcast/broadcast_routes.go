package broadcast

import (
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/middleware"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	broadcasts := r.Group("/broadcasts")
	broadcasts.Use(middleware.AuthMiddleware())
	{
		broadcasts.GET("", middleware.RBACAuthorize(rbacService, "broadcast", "read"), h.ListActive)
		broadcasts.POST("", middleware.RBACAuthorize(rbacService, "broadcast", "manage"), h.Create)
		broadcasts.POST("/:id/read", middleware.RBACAuthorize(rbacService, "broadcast", "read"), h.MarkRead)
	}
}
