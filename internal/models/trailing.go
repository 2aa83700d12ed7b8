package models

// TrailingJob — активное задание трейлинг-стопа.
// Ключ — тикет позиции, на тикет всегда не больше одной записи.
type TrailingJob struct {
	Ticket   int64   `json:"position_ticket"`
	Distance float64 `json:"trailing_distance"` // в пунктах инструмента
}
