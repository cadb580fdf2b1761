package attendance

import (
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/middleware"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAll)
		attendances.POST("/clock-in",
			middleware.RBACAuthorize(rbacService, "attendance", "clock"),
			middleware.Idempotency(rdb),
			h.ClockIn,
		)
		attendances.POST("/clock-out",
			middleware.RBACAuthorize(rbacService, "attendance", "clock"),
			middleware.Idempotency(rdb),
			h.ClockOut,
		)

		admin := attendances.Group("")
		admin.Use(middleware.RBACAuthorize(rbacService, "attendance", "edit"))
		{
			admin.POST("/admin/clock-in", h.AdminClockIn)
			admin.POST("/admin/clock-out", h.AdminClockOut)
			admin.PATCH("/:id", h.Update)
		}
	}
}
