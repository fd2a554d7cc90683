package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

type setBlockedRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

func SetStudentBlocked(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/students/:pid/block"
		var req setBlockedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		status, err := svc.SetBlocked(ctx, c.Param("pid"), *req.Blocked)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func ReconcileStudent(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/students/:pid/reconcile"
		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.ReconcileStudent(ctx, c.Param("pid"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
