package repository

import (
	"context"

	repo "bakery/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	db *gorm.DB

	products    repo.ProductRepository
	inventory   repo.InventoryRepository
	orders      repo.OrderRepository
	lineItems   repo.OrderLineItemRepository
	identifiers repo.IdentifierRepository
}

func newTxReposGorm(tx *gorm.DB) *txReposGorm {
	//repoはtxを持ったDBで作り直す
	return &txReposGorm{
		db:          tx,
		products:    NewProductGormRepository(tx),
		inventory:   NewInventoryGormRepository(tx),
		orders:      NewOrderGormRepository(tx),
		lineItems:   NewOrderLineItemGormRepository(tx),
		identifiers: NewIdentifierGormRepository(tx),
	}
}

func (r *txReposGorm) Products() repo.ProductRepository             { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository          { return r.inventory }
func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) OrderLineItems() repo.OrderLineItemRepository { return r.lineItems }
func (r *txReposGorm) Identifiers() repo.IdentifierRepository       { return r.identifiers }

// tx内で Transaction を呼ぶと gorm は SAVEPOINT を使う
func (r *txReposGorm) Savepoint(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxReposGorm(tx))
	})
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがエラーを返したら rollback、panic でも gorm が rollback する
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	var fnErr error
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(newTxReposGorm(tx))
		return fnErr
	})
	if err != nil && err != fnErr {
		//begin/commit 自体の失敗
		return mapError(err)
	}
	return err
}
