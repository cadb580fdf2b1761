package breakwindow

import (
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/middleware"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	windows := r.Group("/break-windows")
	windows.Use(middleware.AuthMiddleware())
	{
		windows.GET("", middleware.RBACAuthorize(rbacService, "break_window", "read"), h.GetAll)
		windows.POST("", middleware.RBACAuthorize(rbacService, "break_window", "manage"), h.Create)
		windows.PATCH("/:id", middleware.RBACAuthorize(rbacService, "break_window", "manage"), h.Update)
	}
}
