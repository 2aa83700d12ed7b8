package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"terminal_bridge/internal/models"
	terminalsvc "terminal_bridge/internal/modules/terminal/service"
	trailingsvc "terminal_bridge/internal/modules/trailing/service"
	"terminal_bridge/pkg/logger"

	"github.com/pkg/errors"
)

type closePositionRequest struct {
	Ticket      *int64 `json:"ticket"`
	TypeFilling string `json:"type_filling"`
}

// ClosePosition закрывает позицию и снимает её трейлинг-джоб, если был.
// POST /close_position
func (h *Handler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	var req closePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ticket == nil {
		writeError(w, http.StatusBadRequest, "ticket is required")
		return
	}

	filling := normalizeFilling(req.TypeFilling)
	if filling == "" {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid filling type: %s. Must be 'IOC', 'FOK', or 'RETURN'.", req.TypeFilling))
		return
	}

	_, found, err := h.term.Position(r.Context(), *req.Ticket)
	if err != nil {
		logger.Error("close_position: lookup %d: %v", *req.Ticket, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Position with ticket %d not found.", *req.Ticket))
		return
	}

	res, err := h.term.ClosePosition(r.Context(), *req.Ticket, filling)
	if err != nil {
		logger.Error("close_position %d: %v", *req.Ticket, err)
		writeError(w, http.StatusBadRequest, "Failed to close position")
		return
	}

	// позиции больше нет — воркеру её не вести
	if err := h.trailing.Disable(*req.Ticket); err != nil && !errors.Is(err, trailingsvc.ErrJobNotFound) {
		logger.Error("close_position %d: drop trailing job: %v", *req.Ticket, err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Position closed successfully",
		"result":  res,
	})
}

type closeAllRequest struct {
	OrderType   string `json:"order_type"`
	Symbol      string `json:"symbol"`
	Comment     string `json:"comment"`
	Magic       *int64 `json:"magic"`
	TypeFilling string `json:"type_filling"`
}

type closeAllResult struct {
	Ticket int64                   `json:"ticket"`
	Result *terminalsvc.CloseResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

// CloseAllPositions закрывает все позиции по фильтрам.
// Отказ по одной позиции не прерывает остальные.
// POST /close_all_positions
func (h *Handler) CloseAllPositions(w http.ResponseWriter, r *http.Request) {
	var req closeAllRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // пустое тело допустимо
	}

	filling := normalizeFilling(req.TypeFilling)
	if filling == "" {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid filling type: %s. Must be 'IOC', 'FOK', or 'RETURN'.", req.TypeFilling))
		return
	}

	filter := models.PositionFilter{
		Symbol:  req.Symbol,
		Comment: req.Comment,
	}
	if req.Magic != nil {
		filter.Magic = *req.Magic
		filter.MagicSet = true
	}
	switch strings.ToUpper(req.OrderType) {
	case "", "ALL":
	case "BUY":
		filter.Side = models.SideLong
	case "SELL":
		filter.Side = models.SideShort
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid order_type: %s. Must be 'BUY', 'SELL', or 'all'.", req.OrderType))
		return
	}

	positions, err := h.term.Positions(r.Context(), filter)
	if err != nil {
		logger.Error("close_all_positions: list: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(positions) == 0 {
		writeError(w, http.StatusBadRequest, "No open positions matching the criteria.")
		return
	}

	results := make([]closeAllResult, 0, len(positions))
	closed := 0
	for _, p := range positions {
		res, err := h.term.ClosePosition(r.Context(), p.Ticket, filling)
		if err != nil {
			logger.Error("close_all_positions: close %d: %v", p.Ticket, err)
			results = append(results, closeAllResult{Ticket: p.Ticket, Error: err.Error()})
			continue
		}
		closed++
		results = append(results, closeAllResult{Ticket: p.Ticket, Result: &res})

		if err := h.trailing.Disable(p.Ticket); err != nil && !errors.Is(err, trailingsvc.ErrJobNotFound) {
			logger.Error("close_all_positions: drop trailing job %d: %v", p.Ticket, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Closed %d of %d positions", closed, len(positions)),
		"results": results,
	})
}

type getPositionsRequest struct {
	Symbol  string `json:"symbol"`
	Comment string `json:"comment"`
	Magic   *int64 `json:"magic"`
}

type positionView struct {
	Ticket    int64       `json:"ticket"`
	Symbol    string      `json:"symbol"`
	Side      models.Side `json:"side"`
	Volume    float64     `json:"volume"`
	PriceOpen float64     `json:"price_open"`
	SL        float64     `json:"sl"`
	TP        float64     `json:"tp"`
	Profit    float64     `json:"profit"`
	Comment   string      `json:"comment"`
	Magic     int64       `json:"magic"`
}

// GetPositions — открытые позиции терминала по фильтрам.
// POST /get_positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	var req getPositionsRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	filter := models.PositionFilter{Symbol: req.Symbol, Comment: req.Comment}
	if req.Magic != nil {
		filter.Magic = *req.Magic
		filter.MagicSet = true
	}

	positions, err := h.term.Positions(r.Context(), filter)
	if err != nil {
		logger.Error("get_positions: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]positionView, 0, len(positions))
	for _, p := range positions {
		views = append(views, positionView{
			Ticket:    p.Ticket,
			Symbol:    p.Symbol,
			Side:      p.Side,
			Volume:    p.Volume,
			PriceOpen: p.OpenPrice,
			SL:        p.SL,
			TP:        p.TP,
			Profit:    p.Profit,
			Comment:   p.Comment,
			Magic:     p.Magic,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": views})
}

// PositionsTotal — количество открытых позиций.
// GET /positions_total
func (h *Handler) PositionsTotal(w http.ResponseWriter, r *http.Request) {
	positions, err := h.term.Positions(r.Context(), models.PositionFilter{})
	if err != nil {
		logger.Error("positions_total: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": len(positions)})
}

type modifySLTPRequest struct {
	Ticket *int64   `json:"ticket"`
	Symbol string   `json:"symbol"`
	SL     *float64 `json:"sl"`
	TP     *float64 `json:"tp"`
}

// ModifySLTP — прямая модификация SL/TP позиции, минуя трейлинг.
// POST /modify_sl_tp
func (h *Handler) ModifySLTP(w http.ResponseWriter, r *http.Request) {
	var req modifySLTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Ticket == nil || req.Symbol == "" || req.SL == nil || req.TP == nil {
		writeError(w, http.StatusBadRequest, "ticket, symbol, sl and tp are required")
		return
	}

	if err := h.term.ModifySLTP(r.Context(), *req.Ticket, req.Symbol, *req.SL, *req.TP); err != nil {
		logger.Error("modify_sl_tp %d: %v", *req.Ticket, err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to modify SL/TP: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "SL/TP modified successfully"})
}

// normalizeFilling принимает и короткую ("IOC"), и терминальную
// ("ORDER_FILLING_IOC") форму.
func normalizeFilling(raw string) string {
	raw = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ORDER_FILLING_")
	switch raw {
	case "":
		return terminalsvc.FillingIOC
	case terminalsvc.FillingIOC:
		return terminalsvc.FillingIOC
	case terminalsvc.FillingFOK:
		return terminalsvc.FillingFOK
	case terminalsvc.FillingReturn:
		return terminalsvc.FillingReturn
	}
	return ""
}
