package utils

import (
	"errors"
	"time"
)

var ErrEmptyDate = errors.New("data vazia")

// ParseDay lê uma data AAAA-MM-DD como meia-noite UTC.
// Datas ausentes são erro: um período de analytics sem início ou fim não tem chave.
func ParseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrEmptyDate
	}

	return time.ParseInLocation(time.DateOnly, value, time.UTC)
}
