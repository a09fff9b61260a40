package dto

import "time"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	BagKg  int64  `json:"bag_kg" validate:"required,gt=0"`
	Active *bool  `json:"active"` // nil = activo
}

// UpdateProductRequest entrada para actualizar un producto. Cambiar BagKg no altera
// los movimientos históricos: los kilos siempre se derivan del valor actual.
type UpdateProductRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	BagKg  *int64  `json:"bag_kg" validate:"omitempty,gt=0"`
	Active *bool   `json:"active"`
}

// ProductResponse salida de un producto con su stock derivado.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BagKg     int64     `json:"bag_kg"`
	Active    bool      `json:"active"`
	StockBags int64     `json:"stock_bags"`
	StockKg   int64     `json:"stock_kg"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
