package outcomes

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkrelay/backend/pkg/response"
)

// Handler serves recent pipeline outcomes.
type Handler struct {
	recorder *Recorder
	logger   *zap.Logger
}

// NewHandler creates an outcomes handler.
func NewHandler(recorder *Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{recorder: recorder, logger: logger}
}

// List handles GET /outcomes?limit=N.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.recorder.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list outcomes failed", zap.Error(err))
		response.Internal(c, "failed to list outcomes")
		return
	}
	response.OK(c, out)
}
