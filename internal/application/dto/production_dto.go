package dto

import "time"

// ProductionItemRequest línea de producción.
type ProductionItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	QtyBag    int64  `json:"qty_bag" validate:"required,gt=0"`
}

// CreateProductionRequest body para POST /api/productions. Siempre se crea en DRAFT.
type CreateProductionRequest struct {
	Date           *time.Time              `json:"date"` // nil = hoy
	Shift          string                  `json:"shift" validate:"required,oneof=DAY NIGHT"`
	TotalKgControl int64                   `json:"total_kg_control" validate:"gte=0"`
	Note           string                  `json:"note"`
	Items          []ProductionItemRequest `json:"items" validate:"dive"`
}

// UpdateProductionRequest body para PUT /api/productions/:id (solo DRAFT).
// Items no nil reemplaza todas las líneas.
type UpdateProductionRequest struct {
	Date           *time.Time              `json:"date"`
	Shift          *string                 `json:"shift" validate:"omitempty,oneof=DAY NIGHT"`
	TotalKgControl *int64                  `json:"total_kg_control" validate:"omitempty,gte=0"`
	Note           *string                 `json:"note"`
	Items          []ProductionItemRequest `json:"items" validate:"omitempty,dive"`
}

// ProductionItemResponse línea con kilos derivados del peso actual de la bolsa.
type ProductionItemResponse struct {
	ProductID string `json:"product_id"`
	QtyBag    int64  `json:"qty_bag"`
	QtyKg     int64  `json:"qty_kg"`
}

// ProductionResponse salida de una producción.
type ProductionResponse struct {
	ID             string                   `json:"id"`
	Date           time.Time                `json:"date"`
	Shift          string                   `json:"shift"`
	Status         string                   `json:"status"`
	TotalKgControl int64                    `json:"total_kg_control"`
	TotalKg        int64                    `json:"total_kg"`
	Note           string                   `json:"note"`
	Items          []ProductionItemResponse `json:"items"`
}
