package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Error().Str("component", "http").Str("route", route).Interface("panic", r).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Warn().Str("component", "http").Str("route", route).Int("status", status).Msg(message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

var kindStatus = map[ordering.Kind]int{
	ordering.KindValidation:        http.StatusBadRequest,
	ordering.KindEmptyCart:         http.StatusBadRequest,
	ordering.KindItemUnavailable:   http.StatusBadRequest,
	ordering.KindBlocked:           http.StatusForbidden,
	ordering.KindNotFound:          http.StatusNotFound,
	ordering.KindInvalidCode:       http.StatusNotFound,
	ordering.KindNotCancellable:    http.StatusConflict,
	ordering.KindExhausted:         http.StatusServiceUnavailable,
	ordering.KindInvalidTransition: http.StatusConflict,
}

// respondWithOrderingError maps typed ordering failures to their HTTP status
// and hides everything else behind a 500.
func respondWithOrderingError(c *gin.Context, route string, err error) {
	kind := ordering.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Error().Str("component", "http").Str("route", route).Err(err).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	log.Info().Str("component", "http").Str("route", route).Str("code", string(kind)).Msg(err.Error())
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": kind})
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"code":    ordering.KindValidation,
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "invalid body",
		"code":    ordering.KindValidation,
		"details": err.Error(),
	})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
