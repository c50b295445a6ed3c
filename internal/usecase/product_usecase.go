package usecase

import (
	"context"
	"fmt"
	"strings"

	"bakery/internal/domain/model"
	"bakery/internal/logging"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductUsecase struct {
	tx        repo.TransactionManager
	allocator *IdentifierAllocator
	log       *zap.Logger
}

// DI
func NewProductUsecase(tx repo.TransactionManager, allocator *IdentifierAllocator, log *zap.Logger) *ProductUsecase {
	return &ProductUsecase{
		tx:        tx,
		allocator: allocator,
		log:       logging.OrNop(log),
	}
}

type AddProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int64
}

func (u *ProductUsecase) AddProduct(ctx context.Context, in AddProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, NewError(KindValidation, "name required")
	}
	if len(name) > 255 {
		return model.Product{}, NewError(KindValidation, "name too long")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewError(KindValidation, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewError(KindValidation, "stock must be >= 0")
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := u.allocator.Allocate(ctx, r, model.IdentifierKindProduct)
		if err != nil {
			return err
		}

		p, err := r.Products().Create(ctx, model.Product{
			ID:    id,
			Name:  name,
			Price: in.Price.Round(2),
			Stock: in.Stock,
		})
		if err != nil {
			return storeError(err, "product not found")
		}
		created = p
		return nil
	})
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}

	u.log.Info("product added", zap.Int64("product_id", created.ID), zap.String("name", created.Name), zap.Int64("stock", created.Stock))
	return created, nil
}

// 参照されている商品は消さない（カスケードしない）
func (u *ProductUsecase) RemoveProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewError(KindValidation, "invalid product id")
	}

	var removed model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return storeError(err, "product not found")
		}

		refs, err := r.OrderLineItems().CountByProductID(ctx, productID)
		if err != nil {
			return storeError(err, "product not found")
		}
		if refs > 0 {
			return referencedError(fmt.Sprintf("product %q is referenced by order line items", p.Name), refs)
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			return storeError(err, "product not found")
		}

		//IDをプールへ戻す（同じtx）
		if err := u.allocator.Release(ctx, r, model.IdentifierKindProduct, productID); err != nil {
			return err
		}
		removed = p
		return nil
	})
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}

	u.log.Info("product removed", zap.Int64("product_id", removed.ID), zap.String("name", removed.Name))
	return removed, nil
}

// stock += delta。負になるなら InsufficientStock
func (u *ProductUsecase) AdjustStock(ctx context.Context, productID int64, delta int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewError(KindValidation, "invalid product id")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := adjustStock(ctx, r, productID, delta)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}
	return out, nil
}

// 行ロック → 判定 → 更新（同じtxの中で）
func adjustStock(ctx context.Context, r repo.TxRepos, productID int64, delta int64) (model.Product, error) {
	p, err := r.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}
	if p.Stock+delta < 0 {
		return model.Product{}, NewError(KindInsufficientStock, fmt.Sprintf("product %d has %d in stock", productID, p.Stock))
	}
	if delta == 0 {
		return p, nil
	}

	ok, err := r.Inventory().ApplyDeltaIfEnough(ctx, productID, delta)
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}
	if !ok {
		return model.Product{}, NewError(KindInsufficientStock, fmt.Sprintf("product %d has %d in stock", productID, p.Stock))
	}
	p.Stock += delta
	return p, nil
}

func (u *ProductUsecase) GetStock(ctx context.Context, productID int64) (int64, error) {
	if productID <= 0 {
		return 0, NewError(KindValidation, "invalid product id")
	}

	var stock int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return storeError(err, "product not found")
		}
		stock = p.Stock
		return nil
	})
	if err != nil {
		return 0, storeError(err, "product not found")
	}
	return stock, nil
}

func (u *ProductUsecase) List(ctx context.Context) ([]model.Product, error) {
	var items []model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		items, err = r.Products().List(ctx)
		return storeError(err, "product not found")
	})
	if err != nil {
		return []model.Product{}, storeError(err, "product not found")
	}
	return items, nil
}
