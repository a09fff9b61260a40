// Package memory implementa los puertos de persistencia en memoria, con las mismas
// reglas que el esquema de PostgreSQL (únicos, FK RESTRICT, cascadas) y transacciones
// sobre una copia privada que solo se publica al confirmar. Se usa en modo desarrollo
// (LEDGER_STORE=memory) y en tests.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

type state struct {
	products        map[string]entity.Product
	customers       map[string]entity.Customer
	productions     map[string]entity.Production
	productionItems map[string][]entity.ProductionItem
	sales           map[string]entity.Sale
	saleItems       map[string][]entity.SaleItem
	payments        []entity.Payment
	moves           []entity.StockMove
	postings        map[string]struct{}
}

func newState() *state {
	return &state{
		products:        map[string]entity.Product{},
		customers:       map[string]entity.Customer{},
		productions:     map[string]entity.Production{},
		productionItems: map[string][]entity.ProductionItem{},
		sales:           map[string]entity.Sale{},
		saleItems:       map[string][]entity.SaleItem{},
		postings:        map[string]struct{}{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.productions {
		c.productions[k] = v
	}
	for k, v := range s.productionItems {
		c.productionItems[k] = append([]entity.ProductionItem(nil), v...)
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.saleItems {
		c.saleItems[k] = append([]entity.SaleItem(nil), v...)
	}
	c.payments = append([]entity.Payment(nil), s.payments...)
	c.moves = append([]entity.StockMove(nil), s.moves...)
	for k := range s.postings {
		c.postings[k] = struct{}{}
	}
	return c
}

// Store almacenamiento en memoria.
// txMu serializa transacciones y escrituras fuera de transacción (equivale a que cada
// transacción tenga todos los bloqueos de fila); mu protege el estado confirmado.
// Una transacción trabaja sobre una copia privada que reemplaza a st al confirmar:
// los lectores fuera de transacción solo ven estado confirmado.
// Dentro de Run solo deben usarse los repositorios que recibe fn: una escritura con
// los repositorios de Repos() esperaría a que termine la propia transacción.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos repositorios fuera de transacción (equivalente al pool).
func (s *Store) Repos() repository.Set {
	return s.set(nil)
}

// TxRunner implementación de ports.TxRunner sobre el almacenamiento.
func (s *Store) TxRunner() *TxRunner {
	return &TxRunner{store: s}
}

func (s *Store) set(work *state) repository.Set {
	b := base{store: s, work: work}
	return repository.Set{
		Products:    &ProductRepo{b},
		Customers:   &CustomerRepo{b},
		Productions: &ProductionRepo{b},
		Sales:       &SaleRepo{b},
		Payments:    &PaymentRepo{b},
		StockMoves:  &StockMoveRepo{b},
	}
}

// TxRunner ejecuta fn con todas las escrituras serializadas sobre una copia del estado;
// si fn falla la copia se descarta.
type TxRunner struct {
	store *Store
}

// Run implementa ports.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Set) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.set(work)); err != nil {
		return err
	}
	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// base comparte el acceso al estado entre los repositorios.
// work != nil: repositorio de una transacción en curso, dueña exclusiva de la copia.
type base struct {
	store *Store
	work  *state
}

func (b base) read(fn func(st *state) error) error {
	if b.work != nil {
		return fn(b.work)
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	return fn(b.store.st)
}

func (b base) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.work != nil {
		return fn(b.work)
	}
	b.store.txMu.Lock()
	defer b.store.txMu.Unlock()
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.st)
}
