package ledger

import "time"

// DateOf recorta t a la fecha calendario (columnas DATE). Un t cero devuelve la fecha de fallback.
func DateOf(t *time.Time, fallback time.Time) time.Time {
	src := fallback
	if t != nil && !t.IsZero() {
		src = *t
	}
	y, m, d := src.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
