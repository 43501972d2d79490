package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/render"
	"github.com/gogpu/artboard/store"
	"github.com/gogpu/artboard/text"
)

type envelope struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error,omitempty"`
	Project *artboard.Project `json:"project,omitempty"`
	Family  string            `json:"family,omitempty"`
}

func statusOf(err error) int {
	var layerErr *render.LayerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, artboard.ErrInvalidProject),
		errors.Is(err, artboard.ErrLayerNotFound),
		errors.Is(err, store.ErrNoGeneration),
		errors.Is(err, render.ErrInvalidSize),
		errors.Is(err, render.ErrUnsupportedFormat),
		errors.Is(err, text.ErrEmptyFontData):
		return http.StatusBadRequest
	case errors.As(err, &layerErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Error: msg})
}

// failErr reports err with the status it maps to. The message is passed
// through verbatim so creation errors reach the client unchanged.
func failErr(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		artboard.Logger().Warn("http: request failed",
			"id", RequestID(c.Request.Context()),
			"path", c.Request.URL.Path,
			"err", err)
	}
	fail(c, status, err.Error())
}
