package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/helper"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/service"

	"github.com/labstack/echo/v4"
)

// CampaignRunner is the dispatch pipeline as the handler sees it.
type CampaignRunner interface {
	Run(ctx context.Context, camp *model.Campaign) ([]model.SendResult, error)
}

type SendHandler struct {
	session  StatusReader
	resolver *service.MediaResolver
	runner   CampaignRunner
}

func NewSendHandler(session StatusReader, resolver *service.MediaResolver, runner CampaignRunner) *SendHandler {
	return &SendHandler{
		session:  session,
		resolver: resolver,
		runner:   runner,
	}
}

// POST /api/send (multipart)
//
// Fields: template (message with {placeholders}), mediaUrl (optional),
// file part "excel" (required recipient table), file part "mediaFile"
// (optional). Recipient-level failures still return 200; only campaign-level
// problems produce an error status.
func (h *SendHandler) SendCampaign(c echo.Context) error {
	log.Println("🔄 Campaign submission received")

	if h.session.GetStatus().State != model.StateReady {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error": "The WhatsApp session is not ready.",
		})
	}

	camp := &model.Campaign{}
	// Covers every staging failure below; Run releases again harmlessly.
	defer camp.Release()

	template := c.FormValue("template")
	if template == "" {
		// Field name used by older clients.
		template = c.FormValue("mensajePlantilla")
	}
	mediaURL := c.FormValue("mediaUrl")

	excelFile, err := c.FormFile("excel")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Missing the Excel recipient file.",
		})
	}

	mediaFile, err := c.FormFile("mediaFile")
	hasUpload := err == nil

	if hasUpload && mediaURL != "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Only one media source is allowed: a URL or an uploaded file, not both.",
		})
	}

	if err := helper.ValidateTemplate(template); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "The message template must include at least a {nombre} placeholder.",
		})
	}

	tablePath, err := h.resolver.StageFile(excelFile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to process the request.",
			"details": err.Error(),
		})
	}
	camp.RegisterTempFile(tablePath)

	rows, err := helper.ParseRecipientTable(tablePath)
	if err != nil {
		if errors.Is(err, helper.ErrNoRecipients) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "The Excel file contains no valid rows.",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to process the request.",
			"details": err.Error(),
		})
	}

	camp.Template = template
	camp.Rows = rows

	if hasUpload {
		asset, err := h.resolver.ResolveUpload(mediaFile)
		if err != nil {
			return mediaError(c, err)
		}
		camp.Media = asset
		camp.RegisterTempFile(asset.Path)
		log.Println("✓ Uploaded media staged:", asset.FileName)
	} else if mediaURL != "" {
		asset, err := h.resolver.ResolveURL(c.Request().Context(), mediaURL)
		if err != nil {
			return mediaError(c, err)
		}
		camp.Media = asset
		camp.RegisterTempFile(asset.Path)
		log.Println("✓ Media downloaded from URL:", mediaURL)
	}

	results, err := h.runner.Run(c.Request().Context(), camp)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotReady):
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"error": "The WhatsApp session is not ready.",
			})
		case errors.Is(err, service.ErrNoRecipientRows):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "The Excel file contains no valid rows.",
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error":   "Failed to process the request.",
				"details": err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// mediaError maps resolver failures. All of them reject the campaign before
// any send begins: a broken media source is operator input to fix, not
// something to silently degrade around.
func mediaError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error":   "Failed to prepare the media attachment.",
		"details": err.Error(),
	})
}
