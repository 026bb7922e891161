package v1

import (
	"net/http"

	"github.com/flexprice/invoicer/internal/logger"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	logger *logger.Logger
}

func NewHealthHandler(
	logger *logger.Logger,
) *HealthHandler {
	return &HealthHandler{
		logger: logger,
	}
}

// @Summary Health check
// @Description Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
func (h *HealthHandler) Health(c *gin.Context) {
	h.logger.Debugw("health check", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
