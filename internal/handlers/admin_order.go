package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/middleware"
	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

type verifyPaymentRequest struct {
	Code string `json:"code" binding:"required"`
}

type advanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func SearchOrders(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := svc.SearchOrders(ctx, ordering.SearchQuery{
			PID:    c.Query("pid"),
			Status: c.Query("status"),
			Limit:  limit,
		})
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.GetOrder(ctx, c.Param("id"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func VerifyPayment(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/payments/verify"
		defer handlePanic(c, route)

		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := svc.VerifyPaymentCode(ctx, req.Code)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		message := "payment verified"
		if res.AlreadyVerified {
			message = "payment already verified"
		}
		c.JSON(http.StatusOK, gin.H{
			"message":         message,
			"pid":             res.PID,
			"alreadyVerified": res.AlreadyVerified,
			"order":           res.Order,
			"verifiedBy":      middleware.StaffEmail(c),
		})
	}
}

func AdvanceOrderStatus(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/status"
		var req advanceStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		target, err := ordering.ParseStatus(req.Status)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.AdvanceStatus(ctx, c.Param("id"), target)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func StaffCancelOrder(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/cancel"
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.StaffCancelOrder(ctx, c.Param("id"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled", "order": order})
	}
}

func DeleteOrder(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.DeleteOrder(ctx, c.Param("id")); err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
