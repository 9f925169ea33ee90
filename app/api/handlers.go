package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akobets/signal-comb/app/chart"
	"github.com/akobets/signal-comb/app/database"
	"github.com/akobets/signal-comb/app/signal"
)

// maxPayloadSize caps webhook request bodies at 256 KB
const maxPayloadSize = 256 * 1024

func NewHandler(relay SignalRelayInterface, channels []signal.Channel,
	chartProvider chart.Provider, itemRepo database.RelayedItemRepository,
	categoryCount int) *Handler {
	return &Handler{
		relay:         relay,
		channels:      channels,
		chartProvider: chartProvider,
		itemRepo:      itemRepo,
		categoryCount: categoryCount,
	}
}

func (h *Handler) PostWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadSize))
	if err != nil {
		slog.Error("Failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, WebhookResponse{
			Success:   false,
			Error:     "unable to read request body",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	outcome, err := h.relay.HandleSignal(c.Request.Context(), body)
	if err != nil {
		var verr *signal.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, WebhookResponse{
				Success:   false,
				Error:     verr.Error(),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return
		}

		slog.Error("Signal handling failed", "error", err)
		c.JSON(http.StatusInternalServerError, WebhookResponse{
			Success:   false,
			Error:     "internal error",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	resp := WebhookResponse{
		Success:       outcome.Success,
		Channels:      outcome.Kinds,
		ChartAttached: outcome.ChartAttached,
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	// Every channel failed: the caller should know delivery never happened
	if !outcome.Success {
		resp.Error = "delivery failed on all channels"
		c.JSON(http.StatusBadGateway, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	channels := make(map[string]bool, len(h.channels))
	for _, ch := range h.channels {
		channels[ch.Notifier.Kind()] = ch.Notifier.Configured()
	}
	health["channels"] = channels

	if h.chartProvider != nil {
		health["chart_provider"] = h.chartProvider.Configured()
	}

	if count, err := h.itemRepo.Count(c.Request.Context()); err == nil {
		health["relayed_items"] = count
	}

	health["loaded_categories"] = h.categoryCount

	c.JSON(http.StatusOK, health)
}
