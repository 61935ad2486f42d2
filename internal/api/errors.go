package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
)

var errBodyTooLarge = errors.New("request body too large")

// respondError writes err as a JSON error body. Errors without a client
// message become a 500 carrying fallback, and are attached to the context
// so the request logger records them.
func respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, errBodyTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, middleware.ErrorResponse{Message: "Upload exceeds the size limit"})
		return
	}

	status := middleware.StatusFor(err)
	msg := service.Message(err)
	if status == http.StatusInternalServerError || msg == "" {
		_ = c.Error(err)
		status, msg = http.StatusInternalServerError, fallback
	}
	c.JSON(status, middleware.ErrorResponse{Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Message: msg})
}

// requireIdentity returns the authenticated caller, writing a 401 when
// none is present.
func requireIdentity(c *gin.Context) (model.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Message: "No token, authorization denied"})
	}
	return identity, ok
}
