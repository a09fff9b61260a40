package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

const saleCounterDigits = 6

// SaleNumberPrefix prefijo anual de los números de venta: "S-2025-".
func SaleNumberPrefix(year int) string {
	return fmt.Sprintf("S-%d-", year)
}

// FormatSaleNumber arma "S-<año>-<contador con 6 dígitos>".
func FormatSaleNumber(year int, counter int64) string {
	return fmt.Sprintf("%s%0*d", SaleNumberPrefix(year), saleCounterDigits, counter)
}

// SaleNumberAfter indica si a va después de b en la numeración del mismo año.
// Un contador con más dígitos (pasado 999999) es siempre mayor: se compara primero el largo.
func SaleNumberAfter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

// NextSaleNumber calcula el siguiente número a partir del mayor número existente
// del año (orden de SaleNumberAfter). last vacío inicia el año en 000001.
func NextSaleNumber(year int, last string) (string, error) {
	if last == "" {
		return FormatSaleNumber(year, 1), nil
	}
	prefix := SaleNumberPrefix(year)
	if !strings.HasPrefix(last, prefix) {
		return "", fmt.Errorf("número de venta %q no pertenece al año %d", last, year)
	}
	n, err := strconv.ParseInt(last[strings.LastIndex(last, "-")+1:], 10, 64)
	if err != nil {
		return "", fmt.Errorf("número de venta %q mal formado: %w", last, err)
	}
	return FormatSaleNumber(year, n+1), nil
}
