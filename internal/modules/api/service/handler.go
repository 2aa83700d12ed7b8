package service

import (
	"context"

	"terminal_bridge/internal/models"
	terminalsvc "terminal_bridge/internal/modules/terminal/service"
)

// TrailingService — операции над джобами трейлинга.
type TrailingService interface {
	Enable(ctx context.Context, ticket int64, distance float64) error
	Disable(ticket int64) error
	List() []models.TrailingJob
}

// Terminal — операции терминала, нужные HTTP-слою.
type Terminal interface {
	Position(ctx context.Context, ticket int64) (models.Position, bool, error)
	Positions(ctx context.Context, filter models.PositionFilter) ([]models.Position, error)
	SendOrder(ctx context.Context, req terminalsvc.OrderRequest) (terminalsvc.OrderResult, error)
	ClosePosition(ctx context.Context, ticket int64, filling string) (terminalsvc.CloseResult, error)
	ModifySLTP(ctx context.Context, ticket int64, symbol string, sl, tp float64) error
}

type Handler struct {
	trailing TrailingService
	term     Terminal
}

func NewHandler(trailing TrailingService, term Terminal) *Handler {
	return &Handler{trailing: trailing, term: term}
}
