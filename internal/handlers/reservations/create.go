package reservations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
)

// create stores a new reservation. The body must carry every field of
// models.ReservationFields as a string and nothing else besides an optional id,
// which is discarded.
func (h *Handler) create(c *gin.Context) {
	in, err := common.ReadObject(c)
	if errors.Is(err, common.ErrMalformedBody) {
		common.Message(c, http.StatusBadRequest, msgIncomplete)
		return
	}
	if err != nil {
		common.InternalError(c, h.logger, "read reservation body", err)
		return
	}

	r, ok := parseReservation(in)
	if !ok {
		common.Message(c, http.StatusBadRequest, msgIncomplete)
		return
	}

	id, err := h.store.Create(c.Request.Context(), r)
	if err != nil {
		common.InternalError(c, h.logger, "create reservation", err)
		return
	}
	h.logger.Info("reservation created", "id", id, "room", r.Room)
	c.JSON(http.StatusCreated, gin.H{"reservationId": id})
}

func parseReservation(in map[string]any) (models.Reservation, bool) {
	var r models.Reservation
	for k := range in {
		if k != "id" && !models.IsReservationField(k) {
			return r, false
		}
	}
	for _, f := range models.ReservationFields {
		v, ok := common.StringField(in, f)
		if !ok {
			return r, false
		}
		_ = r.Set(f, v)
	}
	return r, true
}
