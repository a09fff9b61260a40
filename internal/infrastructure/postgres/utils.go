package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/deyirman-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// constraintRelation tabla que referencia, por nombre de constraint (ver migrations/0001_init.sql).
var constraintRelation = map[string]string{
	"fk_production_items_product": "production_items",
	"fk_sale_items_product":       "sale_items",
	"fk_stock_moves_product":      "stock_moves",
	"fk_sales_customer":           "sales",
	"fk_payments_sale":            "payments",
}

// referencedError traduce un 23503 en un DELETE a *domain.ReferentialIntegrityError.
func referencedError(err error, entityName, id string) error {
	rel := ""
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		rel = constraintRelation[pgErr.ConstraintName]
		if rel == "" {
			rel = pgErr.TableName
		}
	}
	return &domain.ReferentialIntegrityError{Entity: entityName, ID: id, Relation: rel}
}
