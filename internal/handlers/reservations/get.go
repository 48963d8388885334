package reservations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

// get returns one reservation, or every reservation for the id "all".
func (h *Handler) get(c *gin.Context) {
	id := common.PathID(c)
	switch id {
	case "":
		common.Message(c, http.StatusBadRequest, msgMissingID)
		return
	case "all":
		all, err := h.store.List(c.Request.Context())
		if err != nil {
			common.InternalError(c, h.logger, "list reservations", err)
			return
		}
		if all == nil {
			all = []models.Reservation{}
		}
		c.JSON(http.StatusOK, all)
		return
	}

	r, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(c, id)
		return
	}
	if err != nil {
		common.InternalError(c, h.logger, "get reservation", err)
		return
	}
	c.JSON(http.StatusOK, r)
}
