package service

import (
	"fmt"
	"math"

	"terminal_bridge/internal/models"
)

// DecisionKind — исход расчёта нового стопа.
type DecisionKind int

const (
	// DecisionNoChange — стоп уже стоит не хуже кандидата, слать нечего.
	DecisionNoChange DecisionKind = iota
	// DecisionReject — кандидат оказался по неправильную сторону рынка.
	DecisionReject
	// DecisionNewStop — стоп надо подтянуть до NewStop.
	DecisionNewStop
)

type Decision struct {
	Kind    DecisionKind
	NewStop float64
	Reason  string
}

// Доля пункта, на которую кандидат обязан улучшить текущий стоп.
// Отсекает микроскопические модификации, которые только грузят терминал.
const improveTolerance = 0.1

// ComputeNewStop — чистый расчёт трейлинг-стопа, без I/O.
//
// Для long кандидат = цена − дистанция, стоп двигается только вверх
// (max с текущим). Для short зеркально: цена + дистанция, только вниз.
// Принятый стоп округляется до digits знаков. Неизвестная сторона —
// ошибка данных, а не бизнес-отказ.
func ComputeNewStop(
	side models.Side,
	price float64,
	currentStop float64,
	distPrice float64,
	point float64,
	digits int,
) (Decision, error) {
	tolerance := point * improveTolerance

	switch side {
	case models.SideLong:
		candidate := price - distPrice
		newStop := math.Max(currentStop, candidate)

		// long: стоп обязан быть ниже рынка
		if newStop >= price {
			return Decision{
				Kind:   DecisionReject,
				Reason: fmt.Sprintf("new SL %.8f would be at or above market %.8f", newStop, price),
			}, nil
		}
		if currentStop != 0 && newStop <= currentStop+tolerance {
			return Decision{Kind: DecisionNoChange}, nil
		}
		return Decision{Kind: DecisionNewStop, NewStop: roundToDigits(newStop, digits)}, nil

	case models.SideShort:
		candidate := price + distPrice
		newStop := candidate
		if currentStop != 0 {
			newStop = math.Min(currentStop, candidate)
		}

		// short: стоп обязан быть выше рынка
		if newStop <= price {
			return Decision{
				Kind:   DecisionReject,
				Reason: fmt.Sprintf("new SL %.8f would be at or below market %.8f", newStop, price),
			}, nil
		}
		if currentStop != 0 && newStop >= currentStop-tolerance {
			return Decision{Kind: DecisionNoChange}, nil
		}
		return Decision{Kind: DecisionNewStop, NewStop: roundToDigits(newStop, digits)}, nil

	default:
		return Decision{}, fmt.Errorf("unknown position side: %q", side)
	}
}

func roundToDigits(v float64, digits int) float64 {
	if digits <= 0 {
		return math.Round(v)
	}
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
