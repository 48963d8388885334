package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
)

// HandleRequest issues a session token on POST. Bad credentials get the same
// 400 as a malformed body. Other methods get no response.
func (h *LoginHandler) HandleRequest(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		return
	}

	userName, pass, err := readCredentials(c)
	if errors.Is(err, common.ErrMalformedBody) || (err == nil && (userName == "" || pass == "")) {
		common.Message(c, http.StatusBadRequest, msgCredentialsRequired)
		return
	}
	if err != nil {
		common.InternalError(c, h.logger, "read login body", err)
		return
	}

	tok, err := h.authorizer.Login(c.Request.Context(), userName, pass)
	if err != nil {
		common.InternalError(c, h.logger, "login", err)
		return
	}
	if tok == "" {
		h.logger.Info("login rejected", "user", userName)
		common.Message(c, http.StatusBadRequest, msgCredentialsRequired)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": tok})
}
