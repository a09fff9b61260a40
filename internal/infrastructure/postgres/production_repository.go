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

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

const productionColumns = `id, date, shift, status, total_kg_control, note, created_at, updated_at`

// ProductionRepo implementación de ProductionRepository (usable con pool o tx).
// Create y ReplaceItems escriben varias filas: llamarlos dentro de una tx para que sean atómicos.
type ProductionRepo struct {
	q Querier
}

// NewProductionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRepository(q Querier) *ProductionRepo {
	return &ProductionRepo{q: q}
}

// Create persiste la cabecera y sus líneas.
func (r *ProductionRepo) Create(ctx context.Context, p *entity.Production, items []*entity.ProductionItem) error {
	query := `
		INSERT INTO productions (id, date, shift, status, total_kg_control, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Date, p.Shift, p.Status, p.TotalKgControl, p.Note, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production: %w", err)
	}
	return r.insertItems(ctx, p.ID, items)
}

func (r *ProductionRepo) insertItems(ctx context.Context, productionID string, items []*entity.ProductionItem) error {
	query := `
		INSERT INTO production_items (id, production_id, product_id, qty_bag)
		VALUES ($1, $2, $3, $4)`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, productionID, it.ProductID, it.QtyBag); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("insert production item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la cabecera de un lote.
func (r *ProductionRepo) GetByID(ctx context.Context, id string) (*entity.Production, error) {
	return r.getOne(ctx, `SELECT `+productionColumns+` FROM productions WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Production, error) {
	return r.getOne(ctx, `SELECT `+productionColumns+` FROM productions WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductionRepo) getOne(ctx context.Context, query, id string) (*entity.Production, error) {
	var p entity.Production
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Date, &p.Shift, &p.Status, &p.TotalKgControl, &p.Note, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production: %w", err)
	}
	return &p, nil
}

// ListItems líneas del lote.
func (r *ProductionRepo) ListItems(ctx context.Context, productionID string) ([]*entity.ProductionItem, error) {
	query := `
		SELECT id, production_id, product_id, qty_bag
		FROM production_items WHERE production_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, productionID)
	if err != nil {
		return nil, fmt.Errorf("list production items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionItem
	for rows.Next() {
		var it entity.ProductionItem
		if err := rows.Scan(&it.ID, &it.ProductionID, &it.ProductID, &it.QtyBag); err != nil {
			return nil, fmt.Errorf("scan production item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update actualiza fecha, turno, kg de control, nota y estado.
func (r *ProductionRepo) Update(ctx context.Context, p *entity.Production) error {
	query := `
		UPDATE productions SET date = $2, shift = $3, total_kg_control = $4, note = $5, status = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Date, p.Shift, p.TotalKgControl, p.Note, p.Status, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update production: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems reemplaza todas las líneas del lote.
func (r *ProductionRepo) ReplaceItems(ctx context.Context, productionID string, items []*entity.ProductionItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM production_items WHERE production_id = $1`, productionID); err != nil {
		return fmt.Errorf("delete production items: %w", err)
	}
	return r.insertItems(ctx, productionID, items)
}

// Delete elimina el lote; las líneas caen por ON DELETE CASCADE.
func (r *ProductionRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM productions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete production: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
