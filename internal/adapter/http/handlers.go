package http

import (
	"net/http"
	"time"

	"vehicle-affordability/internal/usecase/affordability"

	"github.com/labstack/echo/v4"
)

type Handler struct{ uc *affordability.Usecase }

func NewHandler(uc *affordability.Usecase) *Handler { return &Handler{uc: uc} }

// Health reports ok once a policy is loaded; evaluations cannot run before.
func (h *Handler) Health(c echo.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	pol, err := h.uc.ActivePolicy()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
			"time":   now,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"policy": pol.Name,
		"time":   now,
	})
}
