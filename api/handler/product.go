package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/productinfo/models"
)

// ProductExtractor is the slice of scraper.Extractor the handler needs.
type ProductExtractor interface {
	Extract(ctx context.Context, rawURL string) (*models.ProductInfo, error)
}

// ProductInfo returns a handler for GET /api/amazon-info.
//
//  1. Read ?url= (emptiness is judged by the extractor).
//  2. Extract → one upstream fetch + parse.
//  3. Map the failure reason to a status and a fixed message, or return
//     {title, imageUrl}.
func ProductInfo(ex ProductExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")

		info, err := ex.Extract(c.Request.Context(), rawURL)
		if err != nil {
			respondError(c, rawURL, err)
			return
		}

		c.JSON(http.StatusOK, models.NewProductInfoResponse(info))
	}
}

// respondError logs the upstream detail and writes only the public message.
func respondError(c *gin.Context, rawURL string, err error) {
	var extractErr *models.ExtractError
	if !errors.As(err, &extractErr) {
		extractErr = models.NewExtractError(models.ReasonFetchFailed, models.MsgFetchFailed, err)
	}

	switch extractErr.Reason {
	case models.ReasonFetchFailed:
		slog.Warn("product fetch failed", "url", rawURL, "error", extractErr.Err)
	case models.ReasonProductInfoNotFound:
		slog.Info("product info not found", "url", rawURL)
	}

	c.JSON(mapReasonToStatus(extractErr.Reason), extractErr.ToResponse())
}

// mapReasonToStatus translates failure reasons to HTTP status codes.
func mapReasonToStatus(reason models.FailureReason) int {
	switch reason {
	case models.ReasonMissingURL:
		return http.StatusBadRequest // 400
	case models.ReasonProductInfoNotFound:
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}
