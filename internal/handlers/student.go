package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

type cartItemsRequest struct {
	Items map[string]int `json:"items" binding:"required"`
}

type addCartItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

type changeCartItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func cartResponse(c *gin.Context, pid string, items map[string]int) {
	count := 0
	for _, q := range items {
		count += q
	}
	canonical, _ := ordering.CanonicalPID(pid)
	c.JSON(http.StatusOK, gin.H{"pid": canonical, "items": items, "count": count})
}

func GetStudentStatus(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /students/:pid"
		ctx, cancel := requestContext(c)
		defer cancel()

		status, err := svc.GetStudent(ctx, c.Param("pid"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func GetCart(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /students/:pid/cart"
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := svc.GetCart(ctx, c.Param("pid"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), items)
	}
}

func PutCart(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /students/:pid/cart"
		var req cartItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := svc.SetCart(ctx, c.Param("pid"), req.Items)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), items)
	}
}

func ClearCart(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /students/:pid/cart"
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.ClearCart(ctx, c.Param("pid")); err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), map[string]int{})
	}
}

func MergeCart(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /students/:pid/cart/merge"
		var req cartItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := svc.MergeCart(ctx, c.Param("pid"), req.Items)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), items)
	}
}

func AddCartItem(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /students/:pid/cart/items"
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := svc.UpdateCart(ctx, c.Param("pid"), func(cart *ordering.Cart) error {
			return cart.Add(ctx, req.ItemID)
		})
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), items)
	}
}

func ChangeCartItem(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /students/:pid/cart/items/:itemId"
		var req changeCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		itemID := c.Param("itemId")
		items, err := svc.UpdateCart(ctx, c.Param("pid"), func(cart *ordering.Cart) error {
			cart.ChangeQty(itemID, req.Delta)
			return nil
		})
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), items)
	}
}

func RemoveCartItem(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /students/:pid/cart/items/:itemId"
		ctx, cancel := requestContext(c)
		defer cancel()

		itemID := c.Param("itemId")
		items, err := svc.UpdateCart(ctx, c.Param("pid"), func(cart *ordering.Cart) error {
			cart.Remove(itemID)
			return nil
		})
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		cartResponse(c, c.Param("pid"), items)
	}
}

func ListStudentOrders(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /students/:pid/orders"
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := svc.ListOrdersForStudent(ctx, c.Param("pid"), limit)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func CancelStudentOrder(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /students/:pid/orders/:id/cancel"
		defer handlePanic(c, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := svc.CancelOrder(ctx, c.Param("pid"), c.Param("id"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		message := "order cancelled"
		if res.Blocked {
			message = "order cancelled; ordering is now blocked after repeated cancellations"
		}
		c.JSON(http.StatusOK, gin.H{
			"message": message,
			"blocked": res.Blocked,
			"order":   res.Order,
		})
	}
}
