package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

type createMenuItemRequest struct {
	Name      string        `json:"name" binding:"required"`
	Price     *models.Money `json:"price" binding:"required"`
	ImageURL  string        `json:"imageUrl"`
	Available *bool         `json:"available"`
}

type updateMenuItemRequest struct {
	Name      *string       `json:"name"`
	Price     *models.Money `json:"price"`
	ImageURL  *string       `json:"imageUrl"`
	Available *bool         `json:"available"`
}

func AdminListMenu(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/menu"
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := svc.ListMenu(ctx, false)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func CreateMenuItem(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menu"
		var req createMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		available := true
		if req.Available != nil {
			available = *req.Available
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := svc.CreateMenuItem(ctx, ordering.NewMenuItem{
			Name:      req.Name,
			Price:     *req.Price,
			ImageURL:  req.ImageURL,
			Available: available,
		})
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateMenuItem(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/menu/:id"
		var req updateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := svc.UpdateMenuItem(ctx, c.Param("id"), ordering.MenuItemChanges{
			Name:      req.Name,
			Price:     req.Price,
			ImageURL:  req.ImageURL,
			Available: req.Available,
		})
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func ToggleMenuItem(svc *ordering.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menu/:id/toggle"
		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := svc.ToggleAvailability(ctx, c.Param("id"))
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func DeleteMenuItem(svc *ordering.Service, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/menu/:id"
		ctx, cancel := requestContext(c)
		defer cancel()

		id := c.Param("id")
		item, err := svc.GetMenuItem(ctx, id)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		if err := svc.DeleteMenuItem(ctx, id); err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		removeImage(images, item.ImageURL)
		c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
	}
}
