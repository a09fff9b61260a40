package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/ledger"
)

// ─── Products ───────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if other.Name == p.Name {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	var out *entity.Product
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.Name == name {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		for id, other := range st.products {
			if id != p.ID && other.Name == p.Name {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			p := p
			list = append(list, &p)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		for _, m := range st.moves {
			if m.ProductID == id {
				return &domain.ReferentialIntegrityError{Entity: "product", ID: id, Relation: "stock_moves"}
			}
		}
		for _, items := range st.saleItems {
			for _, it := range items {
				if it.ProductID == id {
					return &domain.ReferentialIntegrityError{Entity: "product", ID: id, Relation: "sale_items"}
				}
			}
		}
		for _, items := range st.productionItems {
			for _, it := range items {
				if it.ProductID == id {
					return &domain.ReferentialIntegrityError{Entity: "product", ID: id, Relation: "production_items"}
				}
			}
		}
		delete(st.products, id)
		return nil
	})
}

func (r *ProductRepo) LockForUpdate(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.read(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = &p
			}
		}
		return nil
	})
	return out, err
}

// ─── Customers ──────────────────────────────────────────────────────────────

// CustomerRepo implementa repository.CustomerRepository.
type CustomerRepo struct{ base }

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.read(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.customers[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	var list []*entity.Customer
	err := r.read(func(st *state) error {
		for _, c := range st.customers {
			c := c
			list = append(list, &c)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), err
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.customers[id]; !ok {
			return domain.ErrNotFound
		}
		for _, s := range st.sales {
			if s.CustomerID == id {
				return &domain.ReferentialIntegrityError{Entity: "customer", ID: id, Relation: "sales"}
			}
		}
		delete(st.customers, id)
		return nil
	})
}

// ─── Productions ────────────────────────────────────────────────────────────

// ProductionRepo implementa repository.ProductionRepository.
type ProductionRepo struct{ base }

func (r *ProductionRepo) Create(ctx context.Context, p *entity.Production, items []*entity.ProductionItem) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.productions[p.ID]; ok {
			return domain.ErrDuplicate
		}
		rows, err := productionRows(st, p.ID, items)
		if err != nil {
			return err
		}
		st.productions[p.ID] = *p
		st.productionItems[p.ID] = rows
		return nil
	})
}

func (r *ProductionRepo) GetByID(_ context.Context, id string) (*entity.Production, error) {
	var out *entity.Production
	err := r.read(func(st *state) error {
		if p, ok := st.productions[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Production, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductionRepo) ListItems(_ context.Context, productionID string) ([]*entity.ProductionItem, error) {
	var out []*entity.ProductionItem
	err := r.read(func(st *state) error {
		for _, it := range st.productionItems[productionID] {
			it := it
			out = append(out, &it)
		}
		return nil
	})
	return out, err
}

func (r *ProductionRepo) Update(ctx context.Context, p *entity.Production) error {
	return r.write(ctx, func(st *state) error {
		current, ok := st.productions[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		current.Date = p.Date
		current.Shift = p.Shift
		current.TotalKgControl = p.TotalKgControl
		current.Note = p.Note
		current.Status = p.Status
		current.UpdatedAt = p.UpdatedAt
		st.productions[p.ID] = current
		return nil
	})
}

func (r *ProductionRepo) ReplaceItems(ctx context.Context, productionID string, items []*entity.ProductionItem) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.productions[productionID]; !ok {
			return domain.ErrNotFound
		}
		rows, err := productionRows(st, productionID, items)
		if err != nil {
			return err
		}
		st.productionItems[productionID] = rows
		return nil
	})
}

func (r *ProductionRepo) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.productions[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.productions, id)
		delete(st.productionItems, id)
		return nil
	})
}

func productionRows(st *state, productionID string, items []*entity.ProductionItem) ([]entity.ProductionItem, error) {
	rows := make([]entity.ProductionItem, 0, len(items))
	for _, it := range items {
		if _, ok := st.products[it.ProductID]; !ok {
			return nil, domain.ErrNotFound
		}
		row := *it
		row.ProductionID = productionID
		rows = append(rows, row)
	}
	return rows, nil
}

// ─── Sales ──────────────────────────────────────────────────────────────────

// SaleRepo implementa repository.SaleRepository.
type SaleRepo struct{ base }

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale, items []*entity.SaleItem) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.sales {
			if other.SaleNo == s.SaleNo {
				return domain.ErrDuplicate
			}
		}
		if _, ok := st.customers[s.CustomerID]; !ok {
			return domain.ErrNotFound
		}
		rows, err := saleRows(st, s.ID, items)
		if err != nil {
			return err
		}
		st.sales[s.ID] = *s
		st.saleItems[s.ID] = rows
		return nil
	})
}

// LockNumbering no hace nada: Run ya serializa todas las transacciones.
func (r *SaleRepo) LockNumbering(_ context.Context, _ int) error {
	return nil
}

func (r *SaleRepo) LastSaleNumber(_ context.Context, prefix string) (string, error) {
	var last string
	err := r.read(func(st *state) error {
		for _, s := range st.sales {
			if strings.HasPrefix(s.SaleNo, prefix) && ledger.SaleNumberAfter(s.SaleNo, last) {
				last = s.SaleNo
			}
		}
		return nil
	})
	return last, err
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) ListItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	err := r.read(func(st *state) error {
		for _, it := range st.saleItems[saleID] {
			it := it
			out = append(out, &it)
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) UpdateDraft(ctx context.Context, s *entity.Sale) error {
	return r.write(ctx, func(st *state) error {
		current, ok := st.sales[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.customers[s.CustomerID]; !ok {
			return domain.ErrNotFound
		}
		current.Date = s.Date
		current.CustomerID = s.CustomerID
		current.PaymentType = s.PaymentType
		current.Note = s.Note
		current.UpdatedAt = s.UpdatedAt
		st.sales[s.ID] = current
		return nil
	})
}

func (r *SaleRepo) ReplaceItems(ctx context.Context, saleID string, items []*entity.SaleItem) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.sales[saleID]; !ok {
			return domain.ErrNotFound
		}
		rows, err := saleRows(st, saleID, items)
		if err != nil {
			return err
		}
		st.saleItems[saleID] = rows
		return nil
	})
}

func (r *SaleRepo) UpdateLedgerFields(ctx context.Context, s *entity.Sale) error {
	return r.write(ctx, func(st *state) error {
		current, ok := st.sales[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		current.Status = s.Status
		current.TotalAmount = s.TotalAmount
		current.PaidAmount = s.PaidAmount
		current.DebtAmount = s.DebtAmount
		current.UpdatedAt = s.UpdatedAt
		st.sales[s.ID] = current
		return nil
	})
}

func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.ErrNotFound
		}
		for _, p := range st.payments {
			if p.SaleID == id {
				return &domain.ReferentialIntegrityError{Entity: "sale", ID: id, Relation: "payments"}
			}
		}
		delete(st.sales, id)
		delete(st.saleItems, id)
		return nil
	})
}

func saleRows(st *state, saleID string, items []*entity.SaleItem) ([]entity.SaleItem, error) {
	rows := make([]entity.SaleItem, 0, len(items))
	for _, it := range items {
		if _, ok := st.products[it.ProductID]; !ok {
			return nil, domain.ErrNotFound
		}
		row := *it
		row.SaleID = saleID
		rows = append(rows, row)
	}
	return rows, nil
}

// ─── Payments ───────────────────────────────────────────────────────────────

// PaymentRepo implementa repository.PaymentRepository.
type PaymentRepo struct{ base }

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.sales[p.SaleID]; !ok {
			return domain.ErrNotFound
		}
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r *PaymentRepo) ListBySale(_ context.Context, saleID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	err := r.read(func(st *state) error {
		for _, p := range st.payments {
			if p.SaleID == saleID {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, err
}

// ─── Stock moves ────────────────────────────────────────────────────────────

// StockMoveRepo implementa repository.StockMoveRepository.
type StockMoveRepo struct{ base }

func (r *StockMoveRepo) Create(ctx context.Context, m *entity.StockMove) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.ErrNotFound
		}
		st.moves = append(st.moves, *m)
		return nil
	})
}

func (r *StockMoveRepo) ExistsForRef(_ context.Context, source, ref string) (bool, error) {
	var found bool
	err := r.read(func(st *state) error {
		for _, m := range st.moves {
			if m.Source == source && m.RefText == ref {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *StockMoveRepo) MarkPosted(ctx context.Context, source, ref string) error {
	return r.write(ctx, func(st *state) error {
		key := source + "|" + ref
		if _, ok := st.postings[key]; ok {
			return domain.ErrDuplicatePosting
		}
		st.postings[key] = struct{}{}
		return nil
	})
}

func (r *StockMoveRepo) Balance(_ context.Context, productID string) (int64, error) {
	var moves []*entity.StockMove
	err := r.read(func(st *state) error {
		for _, m := range st.moves {
			if m.ProductID == productID {
				m := m
				moves = append(moves, &m)
			}
		}
		return nil
	})
	return ledger.StockBalance(moves), err
}

func (r *StockMoveRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	var list []*entity.StockMove
	err := r.read(func(st *state) error {
		for _, m := range st.moves {
			if m.ProductID != productID {
				continue
			}
			if from != nil && m.Date.Before(*from) {
				continue
			}
			if to != nil && m.Date.After(*to) {
				continue
			}
			m := m
			list = append(list, &m)
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return page(list, limit, offset), err
}

func (r *StockMoveRepo) ListByRef(_ context.Context, source, ref string) ([]*entity.StockMove, error) {
	var out []*entity.StockMove
	err := r.read(func(st *state) error {
		for _, m := range st.moves {
			if m.Source == source && m.RefText == ref {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
