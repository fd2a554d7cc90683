package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vrjatclg/Time2Eat/internal/ordering"
	"github.com/vrjatclg/Time2Eat/internal/storage"
)

// ImageStore keeps menu images and hands out their public URLs.
type ImageStore interface {
	SaveMenuImage(itemID, filename string, size int64, r io.Reader, now time.Time) (string, error)
	Delete(url string) error
}

func removeImage(images ImageStore, url string) {
	if images == nil || url == "" {
		return
	}
	if err := images.Delete(url); err != nil {
		log.Warn().Str("component", "upload").Err(err).Str("url", url).Msg("old image not removed")
	}
}

func UploadMenuImage(svc *ordering.Service, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menu/:id/image"
		defer handlePanic(c, route)

		if err := c.Request.ParseMultipartForm(storage.MaxImageSize + (1 << 20)); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid multipart body")
			return
		}
		file, err := c.FormFile("image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				respondWithError(c, http.StatusBadRequest, route, "image is required")
				return
			}
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if _, err := storage.ValidateImage(file.Filename, file.Size); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		id := c.Param("id")
		if _, err := svc.GetMenuItem(ctx, id); err != nil {
			respondWithOrderingError(c, route, err)
			return
		}

		in, err := file.Open()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "could not read image")
			return
		}
		defer in.Close()

		url, err := images.SaveMenuImage(id, file.Filename, file.Size, in, time.Now())
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrUnsupportedType) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "image could not be stored")
			return
		}

		item, previous, err := svc.SetMenuImage(ctx, id, url)
		if err != nil {
			removeImage(images, url)
			respondWithOrderingError(c, route, err)
			return
		}
		if previous != url {
			removeImage(images, previous)
		}
		c.JSON(http.StatusOK, item)
	}
}
