package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authz "github.com/Jeomhps/projet-IAC/reservations-api/internal/auth"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
)

// HandleRequest registers an account on POST. Other methods get no response.
func (h *RegisterHandler) HandleRequest(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		return
	}

	userName, pass, err := readCredentials(c)
	if errors.Is(err, common.ErrMalformedBody) || (err == nil && (userName == "" || pass == "")) {
		common.Message(c, http.StatusBadRequest, msgCredentialsRequired)
		return
	}
	if err != nil {
		common.InternalError(c, h.logger, "read register body", err)
		return
	}

	id, err := h.authorizer.RegisterUser(c.Request.Context(), models.Account{UserName: userName, Password: pass})
	var perr *authz.PolicyError
	if errors.As(err, &perr) {
		common.Message(c, http.StatusBadRequest, perr.Error())
		return
	}
	if err != nil {
		common.InternalError(c, h.logger, "register", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": id})
}

// readCredentials pulls userName and password out of the body. Missing or
// non-string values come back empty.
func readCredentials(c *gin.Context) (string, string, error) {
	in, err := common.ReadObject(c)
	if err != nil {
		return "", "", err
	}
	userName, _ := common.StringField(in, "userName")
	pass, _ := common.StringField(in, "password")
	return userName, pass, nil
}
