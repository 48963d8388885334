package reservations

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

// update applies a partial update, one store call per field in body order, and
// reports the updated fields in that order.
func (h *Handler) update(c *gin.Context) {
	id := common.PathID(c)
	if id == "" {
		common.Message(c, http.StatusBadRequest, msgMissingID)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, id)
			return
		}
		common.InternalError(c, h.logger, "get reservation", err)
		return
	}

	in, keys, err := common.ReadObjectKeys(c)
	if errors.Is(err, common.ErrMalformedBody) {
		common.Message(c, http.StatusBadRequest, msgInvalidFields)
		return
	}
	if err != nil {
		common.InternalError(c, h.logger, "read update body", err)
		return
	}

	// Whitelist of updatable fields
	if len(in) == 0 {
		common.Message(c, http.StatusBadRequest, msgInvalidFields)
		return
	}
	for _, k := range keys {
		if !models.IsReservationField(k) {
			common.Message(c, http.StatusBadRequest, msgInvalidFields)
			return
		}
		if _, ok := common.StringField(in, k); !ok {
			common.Message(c, http.StatusBadRequest, msgInvalidFields)
			return
		}
	}

	updated := make([]string, 0, len(keys))
	for _, f := range keys {
		v, _ := common.StringField(in, f)
		if err := h.store.Update(ctx, id, f, v); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				notFound(c, id)
				return
			}
			common.InternalError(c, h.logger, "update reservation", err)
			return
		}
		updated = append(updated, f)
	}
	common.Message(c, http.StatusOK, "Updated "+strings.Join(updated, ",")+" of reservation "+id)
}
