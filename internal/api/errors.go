package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/coursetree/internal/fault"
)

// StatusFor maps a fault code onto an HTTP status.
func StatusFor(err error) int {
	switch fault.CodeOf(err) {
	case fault.CodeNotFound:
		return http.StatusNotFound
	case fault.CodeValidationFailed, fault.CodeDataIntegrity:
		return http.StatusUnprocessableEntity
	case fault.CodePersistenceConflict:
		return http.StatusConflict
	case fault.CodeTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error(), Code: string(fault.CodeOf(err))}

	var fe *fault.Error
	if errors.As(err, &fe) {
		resp.Error = fe.Message
		resp.Entity = fe.Entity
		resp.ID = fe.ID
		resp.Details = fe.Details
	}
	if resp.Code == "" {
		resp.Code = "INTERNAL"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	} else {
		h.logger.Debug("request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, resp)
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.logger.Debug("invalid request body", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Code:  "INVALID_REQUEST",
	})
}
