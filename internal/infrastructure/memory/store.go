// Package memory implementa los repositorios y el TxRunner en memoria.
// Las transacciones se serializan con un mutex y se revierten restaurando una copia del estado.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

type stockKey struct {
	productID string
	location  string
}

type state struct {
	products      map[string]*entity.Product
	stock         map[stockKey]*entity.Stock
	movements     []*entity.StockMovement
	seq           int64
	batches       map[string]*entity.Batch
	notifications []*entity.Notification
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		stock:    make(map[stockKey]*entity.Stock),
		batches:  make(map[string]*entity.Batch),
	}
}

// clone copia profunda; los movimientos y notificaciones son inmutables y se comparten.
func (s *state) clone() *state {
	c := &state{
		products:      make(map[string]*entity.Product, len(s.products)),
		stock:         make(map[stockKey]*entity.Stock, len(s.stock)),
		movements:     append([]*entity.StockMovement(nil), s.movements...),
		seq:           s.seq,
		batches:       make(map[string]*entity.Batch, len(s.batches)),
		notifications: append([]*entity.Notification(nil), s.notifications...),
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.stock {
		st := *v
		c.stock[k] = &st
	}
	for k, v := range s.batches {
		b := *v
		c.batches[k] = &b
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// SeedProduct inserta o reemplaza un producto del catálogo.
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.state.products[p.ID] = &cp
}

type seedProduct struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Active       *bool           `json:"active"`
}

// LoadProducts carga un catálogo JSON (lista de productos) con SeedProduct.
// active omitido = true.
func (s *Store) LoadProducts(r io.Reader) (int, error) {
	var list []seedProduct
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return 0, fmt.Errorf("decodificar catálogo: %w", err)
	}
	now := time.Now()
	for i, sp := range list {
		if sp.ID == "" {
			return 0, fmt.Errorf("producto %d sin id", i)
		}
		s.SeedProduct(&entity.Product{
			ID:           sp.ID,
			SKU:          sp.SKU,
			Name:         sp.Name,
			CostPrice:    sp.CostPrice,
			SalePrice:    sp.SalePrice,
			MinimumStock: sp.MinimumStock,
			Active:       sp.Active == nil || *sp.Active,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return len(list), nil
}

// Repos repositorios fuera de transacción: cada llamada toma el lock.
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

// NotificationRepository bandeja de notificaciones en memoria.
func (s *Store) NotificationRepository() *NotificationRepo {
	return &NotificationRepo{s: s}
}

func (s *Store) repos(inTx bool) repository.Repos {
	return repository.Repos{
		Movements: &MovementRepo{s: s, inTx: inTx},
		Stock:     &StockRepo{s: s, inTx: inTx},
		Products:  &ProductRepo{s: s, inTx: inTx},
		Batches:   &BatchRepo{s: s, inTx: inTx},
	}
}

// view ejecuta fn sobre el estado; fuera de tx toma el lock, dentro de tx ya lo tiene Run.
func (s *Store) view(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}

// TxRunner transacciones serializadas sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con el lock tomado; si fn falla (o entra en pánico) el estado vuelve al previo.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			r.s.state = snapshot
			panic(p)
		}
		if err != nil {
			r.s.state = snapshot
		}
	}()
	return fn(r.s.repos(true))
}
