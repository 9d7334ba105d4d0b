package utils

import (
	"math"
	"strconv"
)

// ParseMoney converte o valor monetário textual da plataforma com duas casas decimais.
// Valores vazios ou inválidos contam como zero gasto.
func ParseMoney(value string) float64 {
	if value == "" {
		return 0
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return math.Round(f*100) / 100
}
