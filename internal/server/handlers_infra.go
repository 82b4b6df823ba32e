package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health godoc
// @Summary Health check
// @Description Check the health status of the service
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Router /health [get]
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"status":  "ok",
		"checks": map[string]any{
			"forms": map[string]any{"ok": true, "active": s.Forms.Len()},
		},
	})
}
