package repository

import (
	"context"

	"bakery/internal/domain/model"
)

// 削除済みIDのプールと、種類ごとのカウンタ
type IdentifierRepository interface {
	// プール内の最小値をロックして返す（空なら false）
	LockSmallestExcluded(ctx context.Context, kind model.IdentifierKind) (int64, bool, error)
	DeleteExcluded(ctx context.Context, kind model.IdentifierKind, id int64) error

	// 同じIDを二重に入れても1件のまま
	InsertExcluded(ctx context.Context, kind model.IdentifierKind, id int64) error
	ClearExcluded(ctx context.Context, kind model.IdentifierKind) (int64, error)
	ListExcluded(ctx context.Context, kind model.IdentifierKind) ([]int64, error)

	// カウンタを1進めて新しい値を返す
	NextValue(ctx context.Context, kind model.IdentifierKind) (int64, error)
}
