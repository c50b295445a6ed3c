package repository

import (
	"bakery/internal/domain/model"
	"context"
)

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 登録順（created_at, id）
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 行ロック付き（SELECT ... FOR UPDATE）
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Delete(ctx context.Context, id int64) error
}
