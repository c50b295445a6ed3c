// Package memory is an in-process implementation of the repository
// interfaces. A transaction holds the store mutex for its whole duration and
// works on a copy of the state, so it is serialisable and rolls back by
// simply dropping the copy.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

type productRow struct {
	product model.Product
	seq     int64 // 登録順
}

type state struct {
	products  map[int64]productRow
	orders    map[int64]model.Order
	lineItems map[int64]model.OrderLineItem
	excluded  map[model.IdentifierKind]map[int64]struct{}
	counters  map[model.IdentifierKind]int64

	productSeq int64
	orderSeq   int64
	lineSeq    int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]productRow),
		orders:    make(map[int64]model.Order),
		lineItems: make(map[int64]model.OrderLineItem),
		excluded:  make(map[model.IdentifierKind]map[int64]struct{}),
		counters:  make(map[model.IdentifierKind]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   maps.Clone(s.products),
		orders:     maps.Clone(s.orders),
		lineItems:  maps.Clone(s.lineItems),
		excluded:   make(map[model.IdentifierKind]map[int64]struct{}, len(s.excluded)),
		counters:   maps.Clone(s.counters),
		productSeq: s.productSeq,
		orderSeq:   s.orderSeq,
		lineSeq:    s.lineSeq,
	}
	for k, ids := range s.excluded {
		c.excluded[k] = maps.Clone(ids)
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		st: newState(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithinTx は fn がエラーなら何も反映しない。
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(newTxRepos(work, s.now)); err != nil {
		return err
	}
	s.st = work
	return nil
}

type txRepos struct {
	st  *state
	now func() time.Time
}

func newTxRepos(st *state, now func() time.Time) *txRepos {
	return &txRepos{st: st, now: now}
}

func (r *txRepos) Products() repo.ProductRepository             { return &productRepository{tx: r} }
func (r *txRepos) Inventory() repo.InventoryRepository          { return &inventoryRepository{tx: r} }
func (r *txRepos) Orders() repo.OrderRepository                 { return &orderRepository{tx: r} }
func (r *txRepos) OrderLineItems() repo.OrderLineItemRepository { return &lineItemRepository{tx: r} }
func (r *txRepos) Identifiers() repo.IdentifierRepository       { return &identifierRepository{tx: r} }

func (r *txRepos) Savepoint(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sp := r.st.clone()
	if err := fn(newTxRepos(sp, r.now)); err != nil {
		return err
	}
	*r.st = *sp
	return nil
}
