package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/handler"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"github.com/labstack/echo/v4"
)

type fakeSession struct {
	snapshot model.StatusSnapshot
}

func (f *fakeSession) GetStatus() model.StatusSnapshot {
	return f.snapshot
}

func getQRStatus(t *testing.T, snapshot model.StatusSnapshot) (int, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := handler.NewQRHandler(&fakeSession{snapshot: snapshot})
	if err := h.GetQRStatus(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return rec.Code, body
}

func TestGetQRStatusReady(t *testing.T) {
	code, body := getQRStatus(t, model.StatusSnapshot{State: model.StateReady})

	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if body["status"] != "ready" {
		t.Errorf("expected status ready, got %v", body["status"])
	}
	if _, present := body["qr"]; present {
		t.Error("ready response must not carry a QR code")
	}
}

func TestGetQRStatusWaiting(t *testing.T) {
	code, body := getQRStatus(t, model.StatusSnapshot{
		State:    model.StateAwaitingAuth,
		AuthCode: "2@abc123",
	})

	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if body["status"] != "waiting" {
		t.Errorf("expected status waiting, got %v", body["status"])
	}
	if body["qr"] != "2@abc123" {
		t.Errorf("expected the auth code, got %v", body["qr"])
	}
}

func TestGetQRStatusLoading(t *testing.T) {
	code, body := getQRStatus(t, model.StatusSnapshot{State: model.StateInitializing})

	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if body["status"] != "loading" {
		t.Errorf("expected status loading, got %v", body["status"])
	}
}

func TestGetQRStatusFailed(t *testing.T) {
	code, body := getQRStatus(t, model.StatusSnapshot{
		State:     model.StateFailed,
		LastError: "logged out from WhatsApp",
	})

	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if body["error"] != "logged out from WhatsApp" {
		t.Errorf("expected the failure reason, got %v", body["error"])
	}
}
