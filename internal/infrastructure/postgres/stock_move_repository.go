package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

const stockMoveColumns = `id, date, type, source, product_id, qty_bag, ref_text, shift, note, created_at`

// StockMoveRepo libro de stock sobre PostgreSQL (usable con pool o tx). Solo INSERT y SELECT.
type StockMoveRepo struct {
	q Querier
}

// NewStockMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMoveRepository(q Querier) *StockMoveRepo {
	return &StockMoveRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMoveRepo) Create(ctx context.Context, m *entity.StockMove) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_moves (id, date, type, source, product_id, qty_bag, ref_text, shift, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Date, m.Type, m.Source, m.ProductID, m.QtyBag, m.RefText, m.Shift, m.Note, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create stock move: %w", err)
	}
	return nil
}

// ExistsForRef indica si ya hay movimientos de ese origen con esa referencia.
func (r *StockMoveRepo) ExistsForRef(ctx context.Context, source, ref string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_moves WHERE source = $1 AND ref_text = $2)`, source, ref,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("stock move exists: %w", err)
	}
	return exists, nil
}

// MarkPosted inserta la marca de contabilización; la PK (source, ref_text) impide una segunda.
func (r *StockMoveRepo) MarkPosted(ctx context.Context, source, ref string) error {
	_, err := r.q.Exec(ctx, `INSERT INTO stock_postings (source, ref_text) VALUES ($1, $2)`, source, ref)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", domain.ErrDuplicatePosting, source, ref)
		}
		return fmt.Errorf("mark posted: %w", err)
	}
	return nil
}

// Balance Σ IN − Σ OUT en bolsas.
func (r *StockMoveRepo) Balance(ctx context.Context, productID string) (int64, error) {
	var bags int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'IN' THEN qty_bag ELSE -qty_bag END), 0)::bigint
		FROM stock_moves WHERE product_id = $1`, productID,
	).Scan(&bags)
	if err != nil {
		return 0, fmt.Errorf("stock balance: %w", err)
	}
	return bags, nil
}

// ListByProduct lista movimientos de un producto en un rango de fechas (más recientes primero).
func (r *StockMoveRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	query := `SELECT ` + stockMoveColumns + ` FROM stock_moves WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	return scanStockMoves(rows)
}

// ListByRef movimientos generados por un documento.
func (r *StockMoveRepo) ListByRef(ctx context.Context, source, ref string) ([]*entity.StockMove, error) {
	query := `SELECT ` + stockMoveColumns + ` FROM stock_moves WHERE source = $1 AND ref_text = $2 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, source, ref)
	if err != nil {
		return nil, fmt.Errorf("list by ref: %w", err)
	}
	defer rows.Close()
	return scanStockMoves(rows)
}

func scanStockMoves(rows pgx.Rows) ([]*entity.StockMove, error) {
	var list []*entity.StockMove
	for rows.Next() {
		var m entity.StockMove
		if err := rows.Scan(&m.ID, &m.Date, &m.Type, &m.Source, &m.ProductID, &m.QtyBag,
			&m.RefText, &m.Shift, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
