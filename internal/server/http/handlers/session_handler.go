package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
)

// SessionHandler signs the customer in and out.
type SessionHandler struct {
	facade SessionFacade
}

// NewSessionHandler creates SessionHandler instance.
func NewSessionHandler(facade SessionFacade) *SessionHandler {
	return &SessionHandler{facade: facade}
}

// Login handles POST /api/session.
func (h *SessionHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed login payload")
		return
	}

	customerID, err := h.facade.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var statusErr *domainErrors.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusBadRequest) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid_credentials"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{CustomerID: customerID})
}

// Current handles GET /api/session.
func (h *SessionHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SessionResponse{CustomerID: CurrentCustomerID(c)})
}

// Logout handles DELETE /api/session.
func (h *SessionHandler) Logout(c *gin.Context) {
	h.facade.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}
