package handler

import (
	"log/slog"
	"net/http"

	"github.com/joshnichols-lang/crossdesk/internal/bridge"
)

// BridgeHandler serves the bridge launch descriptor. The server never opens
// the pop-up itself; it hands the client everything needed to, including the
// fixed window dimensions.
type BridgeHandler struct {
	launcher *bridge.Launcher
	logger   *slog.Logger
}

// NewBridgeHandler creates a BridgeHandler with the given launcher and logger.
func NewBridgeHandler(launcher *bridge.Launcher, logger *slog.Logger) *BridgeHandler {
	return &BridgeHandler{
		launcher: launcher,
		logger:   logger,
	}
}

// launchResponse describes the pop-up the client should open.
type launchResponse struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Launch builds the bridging aggregator URL for a destination address.
// GET /api/bridge/launch?address=0x...
func (h *BridgeHandler) Launch(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query parameter required")
		return
	}

	url, err := h.launcher.URL(address)
	if err != nil {
		h.logger.DebugContext(r.Context(), "handler: bridge url rejected",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid destination address")
		return
	}

	writeJSON(w, http.StatusOK, launchResponse{
		URL:    url,
		Name:   bridge.PopupName,
		Width:  bridge.PopupWidth,
		Height: bridge.PopupHeight,
	})
}
