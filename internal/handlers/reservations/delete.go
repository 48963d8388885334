package reservations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
)

// delete removes a reservation. Unknown ids still succeed.
func (h *Handler) delete(c *gin.Context) {
	id := common.PathID(c)
	if id == "" {
		common.Message(c, http.StatusBadRequest, msgMissingID)
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		common.InternalError(c, h.logger, "delete reservation", err)
		return
	}
	common.Message(c, http.StatusOK, "Deleted reservation with id "+id)
}
