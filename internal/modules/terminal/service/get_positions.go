package service

import (
	"context"
	"fmt"
	"net/url"
	"terminal_bridge/internal/models"
)

// Positions возвращает все открытые позиции, прошедшие фильтр.
// Фильтрация на нашей стороне: мост отдаёт полный список.
func (c *Client) Positions(ctx context.Context, filter models.PositionFilter) ([]models.Position, error) {
	var dtos []positionDTO
	if err := c.getJSON(ctx, "/positions", url.Values{}, &dtos); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	out := make([]models.Position, 0, len(dtos))
	for _, d := range dtos {
		p, err := d.toModel()
		if err != nil {
			return nil, err
		}
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
