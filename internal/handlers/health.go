package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/store"
)

func Healthz(pinger store.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /healthz", "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
