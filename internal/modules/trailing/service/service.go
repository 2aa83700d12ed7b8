package service

import (
	"context"

	"terminal_bridge/internal/models"
	"terminal_bridge/pkg/logger"

	"github.com/pkg/errors"
)

// Gateway — срез операций терминала, нужный трейлинг-модулю.
type Gateway interface {
	Position(ctx context.Context, ticket int64) (models.Position, bool, error)
	Tick(ctx context.Context, symbol string) (models.Tick, error)
	InstrumentInfo(ctx context.Context, symbol string) (models.Instrument, error)
	ModifySLTP(ctx context.Context, ticket int64, symbol string, sl, tp float64) error
}

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrJobNotFound      = errors.New("trailing job not found")
	ErrBadDistance      = errors.New("trailing distance must be positive")
)

// Service — операции над джобами для HTTP-слоя.
type Service struct {
	gw   Gateway
	jobs *Registry
}

func NewService(gw Gateway, jobs *Registry) *Service {
	return &Service{gw: gw, jobs: jobs}
}

// Enable ставит (или обновляет) трейлинг-стоп на позицию.
// Существование позиции проверяем сразу, чтобы не принимать протухшие
// тикеты в цикл: ошибка уходит вызывающему, джоб не создаётся.
func (s *Service) Enable(ctx context.Context, ticket int64, distance float64) error {
	if distance <= 0 {
		return ErrBadDistance
	}

	_, found, err := s.gw.Position(ctx, ticket)
	if err != nil {
		return errors.Wrapf(err, "enable trailing %d", ticket)
	}
	if !found {
		return ErrPositionNotFound
	}

	prev, updated := s.jobs.Set(ticket, distance)
	if updated {
		logger.Info("trailing job %d: distance %.2f -> %.2f", ticket, prev, distance)
	} else {
		logger.Info("trailing job %d added, distance %.2f points", ticket, distance)
	}
	return nil
}

func (s *Service) Disable(ticket int64) error {
	if !s.jobs.Remove(ticket) {
		return ErrJobNotFound
	}
	logger.Info("trailing job %d removed by request", ticket)
	return nil
}

func (s *Service) List() []models.TrailingJob {
	return s.jobs.Snapshot()
}
