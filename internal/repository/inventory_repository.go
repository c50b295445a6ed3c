package repository

import "context"

type InventoryRepository interface {
	// 在庫が負にならないときだけ stock += delta（負になるなら false）
	ApplyDeltaIfEnough(ctx context.Context, productID int64, delta int64) (bool, error)
}
