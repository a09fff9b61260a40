package entity

import "time"

// Customer representa un cliente de la molienda.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	TaxID     string // VÖEN
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
