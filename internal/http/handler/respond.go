package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/service"
)

// respondError maps service sentinels to status codes. Anything unclassified
// is logged and reported as a generic 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	var status int
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.Fail("not found"))
		return
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, dto.Fail(fallback))
		return
	}
	c.JSON(status, dto.Fail(publicMessage(err)))
}

// publicMessage drops the sentinel prefix, "invalid input: title is
// required" becomes "title is required".
func publicMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		service.ErrInvalidInput,
		service.ErrConflict,
		service.ErrForbidden,
		service.ErrUnauthorized,
	} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

func badRequest(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request", "error", err)
	c.JSON(http.StatusBadRequest, dto.Fail("invalid request: "+err.Error()))
}

// pathID parses a snowflake id route parameter. Malformed ids are reported
// as not found, same as ids owned by someone else.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, dto.Fail("not found"))
		return 0, false
	}
	return id, true
}

func serviceID(c *gin.Context) int64 {
	return middleware.GetAuth(c.Request.Context()).ServiceID
}

func paged(c *gin.Context, items any, total int64, page service.Page) {
	c.JSON(http.StatusOK, dto.Paged(items, total, page.Limit, page.Offset))
}
