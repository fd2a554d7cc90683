package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

// GetMenu lists the menu sorted by name. ?available=true hides items that
// cannot be ordered right now.
func GetMenu(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu"
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := svc.ListMenu(ctx, parseBoolQuery(c.Query("available")))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
