package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
	"github.com/polkiloo/eventmart/internal/server/http/middleware"
)

// CurrentCustomerID extracts the signed-in customer from context.
func CurrentCustomerID(c *gin.Context) string {
	val, ok := c.Get(middleware.CustomerIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}

// writeError maps err onto a status code and error body.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch domainErrors.Classify(err) {
	case domainErrors.KindValidation:
		status, code = http.StatusBadRequest, "validation_failed"
	case domainErrors.KindAuthTerminal:
		status, code = http.StatusUnauthorized, middleware.SessionExpiredCode
	case domainErrors.KindNotFound:
		status, code = http.StatusNotFound, "not_found"
	case domainErrors.KindConflict:
		status, code = http.StatusConflict, "conflict"
	case domainErrors.KindTransport:
		status, code = http.StatusServiceUnavailable, "service_unavailable"
	case domainErrors.KindRejected:
		status, code = http.StatusBadGateway, "upstream_rejected"
	}
	if errors.Is(err, domainErrors.ErrSettlementRace) {
		status, code = http.StatusAccepted, "settlement_pending"
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request", Message: message})
}
