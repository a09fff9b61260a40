package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, sale_no, date, customer_id, status, payment_type, total_amount, paid_amount, debt_amount, note, created_at, updated_at`

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabecera y líneas. Un sale_no repetido (uq_sales_sale_no) devuelve domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale, items []*entity.SaleItem) error {
	query := `
		INSERT INTO sales (id, sale_no, date, customer_id, status, payment_type, total_amount, paid_amount, debt_amount, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.SaleNo, s.Date, s.CustomerID, s.Status, s.PaymentType,
		s.TotalAmount, s.PaidAmount, s.DebtAmount, s.Note, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return r.insertItems(ctx, s.ID, items)
}

func (r *SaleRepo) insertItems(ctx context.Context, saleID string, items []*entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, qty_bag, unit_price_bag)
		VALUES ($1, $2, $3, $4, $5)`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, saleID, it.ProductID, it.QtyBag, it.UnitPriceBag); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// LockNumbering candado transaccional por año: se libera solo con el commit o rollback.
func (r *SaleRepo) LockNumbering(ctx context.Context, year int) error {
	key := fmt.Sprintf("sale_no:%d", year)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock sale numbering: %w", err)
	}
	return nil
}

// LastSaleNumber mayor sale_no con el prefijo (largo y luego texto); "" si el año no tiene ventas.
func (r *SaleRepo) LastSaleNumber(ctx context.Context, prefix string) (string, error) {
	var last string
	err := r.q.QueryRow(ctx,
		`SELECT sale_no FROM sales WHERE sale_no LIKE $1 || '%' ORDER BY length(sale_no) DESC, sale_no DESC LIMIT 1`, prefix,
	).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last sale number: %w", err)
	}
	return last, nil
}

// GetByID obtiene la cabecera de una venta.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE).
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.SaleNo, &s.Date, &s.CustomerID, &s.Status, &s.PaymentType,
		&s.TotalAmount, &s.PaidAmount, &s.DebtAmount, &s.Note, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

// ListItems líneas de la venta.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, qty_bag, unit_price_bag
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.QtyBag, &it.UnitPriceBag); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateDraft actualiza los campos editables del borrador. sale_no no se toca.
func (r *SaleRepo) UpdateDraft(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET date = $2, customer_id = $3, payment_type = $4, note = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.Date, s.CustomerID, s.PaymentType, s.Note, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems reemplaza todas las líneas de la venta.
func (r *SaleRepo) ReplaceItems(ctx context.Context, saleID string, items []*entity.SaleItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return r.insertItems(ctx, saleID, items)
}

// UpdateLedgerFields estado y saldos en un solo UPDATE.
func (r *SaleRepo) UpdateLedgerFields(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET status = $2, total_amount = $3, paid_amount = $4, debt_amount = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.Status, s.TotalAmount, s.PaidAmount, s.DebtAmount, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sale ledger fields: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la venta y sus líneas (CASCADE). Con pagos, fk_payments_sale lo impide.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return referencedError(err, "sale", id)
		}
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
