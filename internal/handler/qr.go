package handler

import (
	"net/http"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"github.com/labstack/echo/v4"
)

// StatusReader is the read-only view of the session the handlers need.
type StatusReader interface {
	GetStatus() model.StatusSnapshot
}

type QRHandler struct {
	session StatusReader
}

func NewQRHandler(session StatusReader) *QRHandler {
	return &QRHandler{session: session}
}

// GET /api/qr
// Polling is the only supported mechanism: clients call this until the
// session is ready, scanning the returned code while it is "waiting".
func (h *QRHandler) GetQRStatus(c echo.Context) error {
	snapshot := h.session.GetStatus()

	switch snapshot.State {
	case model.StateReady:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "ready",
		})

	case model.StateAwaitingAuth:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "waiting",
			"qr":     snapshot.AuthCode,
		})

	case model.StateFailed:
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"status": "loading",
			"error":  snapshot.LastError,
		})

	default:
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"status": "loading",
			"error":  "QR not yet available",
		})
	}
}
