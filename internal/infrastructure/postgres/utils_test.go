package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert sale: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_sales_sale_no"})
	assert.True(t, isUniqueViolation(err))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("conexión cerrada")))
}

func TestReferencedError_RelacionPorConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "fk_payments_sale", TableName: "payments"}
	require.True(t, isForeignKeyViolation(pgErr))

	err := referencedError(pgErr, "sale", "s1")
	assert.ErrorIs(t, err, domain.ErrReferenced)
	var ref *domain.ReferentialIntegrityError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "payments", ref.Relation)
	assert.Equal(t, "s1", ref.ID)
}

func TestReferencedError_ConstraintDesconocidoUsaTabla(t *testing.T) {
	err := referencedError(&pgconn.PgError{Code: "23503", ConstraintName: "fk_otro", TableName: "otra_tabla"}, "product", "p1")
	var ref *domain.ReferentialIntegrityError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "otra_tabla", ref.Relation)
}

func TestMigrations_Embebidas(t *testing.T) {
	body, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	for _, name := range []string{"stock_moves", "stock_postings", "uq_sales_sale_no", "fk_sale_items_product"} {
		assert.Contains(t, string(body), name)
	}
}
