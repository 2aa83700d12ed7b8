package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"terminal_bridge/internal/models"

	"github.com/bytedance/sonic"
)

const defaultDeviation = 20

// OrderRequest — параметры рыночного ордера.
type OrderRequest struct {
	Symbol    string
	Volume    float64
	Side      models.Side
	Deviation int // допустимое проскальзывание в пунктах, 0 = дефолт
	Magic     int64
	Comment   string
	Filling   string
	SL        float64 // 0 = без стопа
	TP        float64 // 0 = без тейка
}

// SendOrder исполняет рыночный ордер. Цену берёт мост
// (ask для buy, bid для sell), как и при закрытии.
func (c *Client) SendOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if req.Symbol == "" {
		return OrderResult{}, fmt.Errorf("SendOrder: symbol is required")
	}
	if req.Volume <= 0 {
		return OrderResult{}, fmt.Errorf("SendOrder: volume must be positive")
	}

	var side int
	switch req.Side {
	case models.SideLong:
		side = 0
	case models.SideShort:
		side = 1
	default:
		return OrderResult{}, fmt.Errorf("SendOrder: unknown side %q", req.Side)
	}

	filling := req.Filling
	if filling == "" {
		filling = FillingIOC
	}
	if !ValidFilling(filling) {
		return OrderResult{}, fmt.Errorf("SendOrder: unsupported filling %q", filling)
	}

	deviation := req.Deviation
	if deviation <= 0 {
		deviation = defaultDeviation
	}

	body := map[string]interface{}{
		"symbol":    req.Symbol,
		"volume":    req.Volume,
		"type":      side,
		"deviation": deviation,
		"magic":     req.Magic,
		"comment":   req.Comment,
		"filling":   filling,
	}
	if req.SL > 0 {
		body["sl"] = req.SL
	}
	if req.TP > 0 {
		body["tp"] = req.TP
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return OrderResult{}, fmt.Errorf("SendOrder marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/order",
		bytes.NewReader(payload),
	)
	if err != nil {
		return OrderResult{}, fmt.Errorf("SendOrder new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.auth(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return OrderResult{}, fmt.Errorf("SendOrder do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return OrderResult{}, fmt.Errorf("SendOrder http %d: %s", resp.StatusCode, string(data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return OrderResult{}, fmt.Errorf("SendOrder decode: %w; body=%s", err, string(data))
	}
	if env.Code != 0 {
		return OrderResult{}, fmt.Errorf("SendOrder rejected: code=%d msg=%s", env.Code, env.Message)
	}

	var res OrderResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &res); err != nil {
			return OrderResult{}, fmt.Errorf("SendOrder decode data: %w", err)
		}
	}
	return res, nil
}
