package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"terminal_bridge/internal/models"
	terminalsvc "terminal_bridge/internal/modules/terminal/service"
	"terminal_bridge/pkg/logger"
)

type sendOrderRequest struct {
	Symbol      string   `json:"symbol"`
	Volume      *float64 `json:"volume"`
	Type        string   `json:"type"`
	Deviation   int      `json:"deviation"`
	Magic       int64    `json:"magic"`
	Comment     string   `json:"comment"`
	TypeFilling string   `json:"type_filling"`
	SL          float64  `json:"sl"`
	TP          float64  `json:"tp"`
}

// SendOrder исполняет рыночный ордер, опционально сразу с SL/TP.
// POST /order
func (h *Handler) SendOrder(w http.ResponseWriter, r *http.Request) {
	var req sendOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Symbol == "" || req.Volume == nil || req.Type == "" {
		writeError(w, http.StatusBadRequest, "symbol, volume and type are required")
		return
	}
	if *req.Volume <= 0 {
		writeError(w, http.StatusBadRequest, "volume must be positive")
		return
	}

	var side models.Side
	switch strings.ToUpper(req.Type) {
	case "BUY":
		side = models.SideLong
	case "SELL":
		side = models.SideShort
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid order type: %s. Must be 'BUY' or 'SELL'.", req.Type))
		return
	}

	filling := normalizeFilling(req.TypeFilling)
	if filling == "" {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid filling type: %s. Must be 'IOC', 'FOK', or 'RETURN'.", req.TypeFilling))
		return
	}

	res, err := h.term.SendOrder(r.Context(), terminalsvc.OrderRequest{
		Symbol:    req.Symbol,
		Volume:    *req.Volume,
		Side:      side,
		Deviation: req.Deviation,
		Magic:     req.Magic,
		Comment:   req.Comment,
		Filling:   filling,
		SL:        req.SL,
		TP:        req.TP,
	})
	if err != nil {
		logger.Error("send_order %s %s: %v", req.Symbol, req.Type, err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Order failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order executed successfully",
		"result":  res,
	})
}
