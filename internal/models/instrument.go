package models

// Tick — текущие bid/ask по символу.
type Tick struct {
	Symbol string
	Bid    float64
	Ask    float64
}

// PriceFor возвращает цену, от которой трейлится стоп:
// для long — ask, для short — bid (как считает терминал).
func (t Tick) PriceFor(side Side) float64 {
	if side == SideLong {
		return t.Ask
	}
	return t.Bid
}

// Instrument — метаданные инструмента, нужные для конвертации
// дистанции в пунктах в ценовую дельту и округления стопа.
type Instrument struct {
	Symbol string
	Point  float64 // размер пункта, например 0.0001
	Digits int     // точность котировки
}
