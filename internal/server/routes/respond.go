package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

// fail maps domain errors to HTTP statuses. Anything unrecognized is a 500
// and gets logged; domain rejections are the caller's problem and are not.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, jtbd.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	case errors.Is(err, jtbd.ErrInvalidHierarchy):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Message: err.Error()})
	case errors.Is(err, jtbd.ErrLimitExceeded):
		return c.JSON(http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, jtbd.ErrCorruptRecord):
		logger.Error("corrupt record", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	default:
		logger.Error("request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
}
