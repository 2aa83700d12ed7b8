package service

import (
	"fmt"
	"terminal_bridge/internal/models"
)

// positionDTO — позиция в wire-формате моста. type: 0 = buy, 1 = sell
// (нумерация терминала).
type positionDTO struct {
	Ticket    int64   `json:"ticket"`
	Symbol    string  `json:"symbol"`
	Type      int     `json:"type"`
	Volume    float64 `json:"volume"`
	PriceOpen float64 `json:"price_open"`
	SL        float64 `json:"sl"`
	TP        float64 `json:"tp"`
	Profit    float64 `json:"profit"`
	Comment   string  `json:"comment"`
	Magic     int64   `json:"magic"`
}

func (d positionDTO) toModel() (models.Position, error) {
	var side models.Side
	switch d.Type {
	case 0:
		side = models.SideLong
	case 1:
		side = models.SideShort
	default:
		return models.Position{}, fmt.Errorf("position %d: unknown type %d", d.Ticket, d.Type)
	}

	return models.Position{
		Ticket:    d.Ticket,
		Symbol:    d.Symbol,
		Side:      side,
		Volume:    d.Volume,
		OpenPrice: d.PriceOpen,
		SL:        d.SL,
		TP:        d.TP,
		Profit:    d.Profit,
		Comment:   d.Comment,
		Magic:     d.Magic,
	}, nil
}

type tickDTO struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

type symbolInfoDTO struct {
	Symbol string  `json:"symbol"`
	Point  float64 `json:"point"`
	Digits int     `json:"digits"`
}

// CloseResult — результат закрытия позиции на терминале.
type CloseResult struct {
	Order int64   `json:"order"`
	Price float64 `json:"price"`
}

// OrderResult — результат исполнения рыночного ордера.
type OrderResult struct {
	Order  int64   `json:"order"`
	Deal   int64   `json:"deal"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}
