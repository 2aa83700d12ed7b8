package service

import (
	"context"
	"fmt"
	"net/url"
	"terminal_bridge/internal/models"
)

// InstrumentInfo возвращает размер пункта и точность котировки символа.
// Без них нельзя ни перевести дистанцию в цену, ни округлить стоп.
func (c *Client) InstrumentInfo(ctx context.Context, symbol string) (models.Instrument, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var dto symbolInfoDTO
	if err := c.getJSON(ctx, "/symbol_info", q, &dto); err != nil {
		return models.Instrument{}, fmt.Errorf("get symbol info %s: %w", symbol, err)
	}
	if dto.Point <= 0 {
		return models.Instrument{}, fmt.Errorf("symbol info %s: point <= 0 (%.10f)", symbol, dto.Point)
	}
	if dto.Digits < 0 {
		return models.Instrument{}, fmt.Errorf("symbol info %s: digits < 0 (%d)", symbol, dto.Digits)
	}

	return models.Instrument{Symbol: symbol, Point: dto.Point, Digits: dto.Digits}, nil
}
