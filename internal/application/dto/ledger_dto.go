package dto

import "time"

// ConfirmationResponse resultado de confirmar una producción o una venta.
// AlreadyPosted = true cuando la confirmación fue un no-op idempotente.
type ConfirmationResponse struct {
	DocumentID    string        `json:"document_id"`
	Source        string        `json:"source"`
	Ref           string        `json:"ref"`
	Status        string        `json:"status"`
	AlreadyPosted bool          `json:"already_posted"`
	MovesPosted   int           `json:"moves_posted"`
	Sale          *SaleResponse `json:"sale,omitempty"`
}

// StockLevelResponse stock derivado de un producto.
type StockLevelResponse struct {
	ProductID string `json:"product_id"`
	Bags      int64  `json:"bags"`
	Kg        int64  `json:"kg"`
}

// StockMoveResponse asiento del libro de stock.
type StockMoveResponse struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	ProductID string    `json:"product_id"`
	QtyBag    int64     `json:"qty_bag"`
	QtyKg     int64     `json:"qty_kg"`
	RefText   string    `json:"ref_text"`
	Shift     string    `json:"shift,omitempty"`
	Note      string    `json:"note"`
}

// StockMoveListResponse lista paginada de movimientos.
type StockMoveListResponse struct {
	Items []StockMoveResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// NextSaleNumberResponse vista previa del próximo número de venta del año.
type NextSaleNumberResponse struct {
	SaleNo string `json:"sale_no"`
}
