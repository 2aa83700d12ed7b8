package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"terminal_bridge/internal/models"
)

// Position возвращает позицию по тикету. found=false — позиции нет
// (закрыта или не существовала), это не ошибка.
func (c *Client) Position(ctx context.Context, ticket int64) (models.Position, bool, error) {
	q := url.Values{}
	q.Set("ticket", strconv.FormatInt(ticket, 10))

	var dtos []positionDTO
	if err := c.getJSON(ctx, "/positions", q, &dtos); err != nil {
		return models.Position{}, false, fmt.Errorf("get position %d: %w", ticket, err)
	}
	if len(dtos) == 0 {
		return models.Position{}, false, nil
	}

	p, err := dtos[0].toModel()
	if err != nil {
		return models.Position{}, false, err
	}
	return p, true, nil
}
