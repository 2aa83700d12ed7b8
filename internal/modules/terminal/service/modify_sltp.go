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

// ModifySLTP шлёт терминалу команду SLTP-модификации позиции.
// TP передаём как есть — команда не должна сбрасывать текущий тейк.
func (c *Client) ModifySLTP(ctx context.Context, ticket int64, symbol string, sl, tp float64) error {
	if sl <= 0 {
		return fmt.Errorf("ModifySLTP: sl <= 0")
	}

	body := map[string]interface{}{
		"ticket": ticket,
		"symbol": symbol,
		"sl":     sl,
		"tp":     tp,
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("ModifySLTP marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/modify_sltp",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("ModifySLTP new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ModifySLTP do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("ModifySLTP http %d: %s", resp.StatusCode, string(data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("ModifySLTP decode: %w; body=%s", err, string(data))
	}
	if env.Code != 0 {
		return fmt.Errorf("ModifySLTP rejected: code=%d msg=%s", env.Code, env.Message)
	}
	return nil
}
