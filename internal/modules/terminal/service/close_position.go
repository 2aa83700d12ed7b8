package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
)

// Допустимые типы исполнения закрывающего ордера.
const (
	FillingIOC    = "IOC"
	FillingFOK    = "FOK"
	FillingReturn = "RETURN"
)

func ValidFilling(f string) bool {
	switch f {
	case FillingIOC, FillingFOK, FillingReturn:
		return true
	}
	return false
}

// ClosePosition закрывает позицию рыночным ордером противоположной стороны.
// Цену исполнения выбирает мост (bid для long, ask для short).
func (c *Client) ClosePosition(ctx context.Context, ticket int64, filling string) (CloseResult, error) {
	if filling == "" {
		filling = FillingIOC
	}
	if !ValidFilling(filling) {
		return CloseResult{}, fmt.Errorf("ClosePosition: unsupported filling %q", filling)
	}

	body := map[string]interface{}{
		"ticket":  ticket,
		"filling": filling,
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return CloseResult{}, fmt.Errorf("ClosePosition marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/close",
		bytes.NewReader(payload),
	)
	if err != nil {
		return CloseResult{}, fmt.Errorf("ClosePosition new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return CloseResult{}, fmt.Errorf("ClosePosition do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return CloseResult{}, fmt.Errorf("ClosePosition http %d: %s", resp.StatusCode, string(data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return CloseResult{}, fmt.Errorf("ClosePosition decode: %w; body=%s", err, string(data))
	}
	if env.Code != 0 {
		return CloseResult{}, fmt.Errorf("ClosePosition rejected: code=%d msg=%s", env.Code, env.Message)
	}

	var res CloseResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &res); err != nil {
			return CloseResult{}, fmt.Errorf("ClosePosition decode data: %w", err)
		}
	}
	return res, nil
}
