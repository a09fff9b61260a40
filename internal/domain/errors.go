package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidState       = errors.New("el documento no admite esta operación en su estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrReferenced         = errors.New("el registro está referenciado por otros registros")
	ErrDuplicatePosting   = errors.New("el documento ya tiene movimientos de stock registrados")
	ErrSequenceContention = errors.New("no se pudo asignar el número de venta por concurrencia")
)

// InsufficientStockError rechazo de negocio: una venta pide más bolsas de las disponibles.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: %s. Disponible: %d bolsas, solicitado: %d bolsas",
		e.ProductName, e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ReferentialIntegrityError intento de borrar un registro todavía referenciado.
// Relation nombra la tabla que bloquea la operación (ej. "sale_items", "payments").
type ReferentialIntegrityError struct {
	Entity   string
	ID       string
	Relation string
}

func (e *ReferentialIntegrityError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("%s %s está referenciado", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s %s está referenciado por %s", e.Entity, e.ID, e.Relation)
}

// Is permite errors.Is(err, ErrReferenced).
func (e *ReferentialIntegrityError) Is(target error) bool {
	return target == ErrReferenced
}
