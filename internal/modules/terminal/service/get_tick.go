package service

import (
	"context"
	"fmt"
	"net/url"
	"terminal_bridge/internal/models"
)

func (c *Client) Tick(ctx context.Context, symbol string) (models.Tick, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var dto tickDTO
	if err := c.getJSON(ctx, "/tick", q, &dto); err != nil {
		return models.Tick{}, fmt.Errorf("get tick %s: %w", symbol, err)
	}
	if dto.Bid <= 0 || dto.Ask <= 0 {
		return models.Tick{}, fmt.Errorf("get tick %s: empty quote bid=%.8f ask=%.8f", symbol, dto.Bid, dto.Ask)
	}

	return models.Tick{Symbol: symbol, Bid: dto.Bid, Ask: dto.Ask}, nil
}
