package usecase

import (
	"context"
	"strings"

	"bakery/internal/domain/model"
	"bakery/internal/metrics"
	repo "bakery/internal/repository"
)

// IdentifierAllocator はトランザクションの中で使う採番。
// 状態は持たず、プールとカウンタはすべてDB側。
type IdentifierAllocator struct {
	metrics metrics.Recorder
}

func NewIdentifierAllocator(m metrics.Recorder) *IdentifierAllocator {
	return &IdentifierAllocator{metrics: metrics.OrNop(m)}
}

// 再利用待ちの最小IDがあればそれ、なければカウンタの次の値
func (a *IdentifierAllocator) Allocate(ctx context.Context, r repo.TxRepos, kind model.IdentifierKind) (int64, error) {
	id, found, err := r.Identifiers().LockSmallestExcluded(ctx, kind)
	if err != nil {
		return 0, storeError(err, "identifier not found")
	}
	if found {
		if err := r.Identifiers().DeleteExcluded(ctx, kind, id); err != nil {
			return 0, storeError(err, "identifier not found")
		}
		a.metrics.IdentifierAllocated(string(kind), true)
		return id, nil
	}

	id, err = r.Identifiers().NextValue(ctx, kind)
	if err != nil {
		return 0, storeError(err, "identifier counter not found")
	}
	a.metrics.IdentifierAllocated(string(kind), false)
	return id, nil
}

// 削除されたIDをプールに戻す（二重に戻しても1件）
func (a *IdentifierAllocator) Release(ctx context.Context, r repo.TxRepos, kind model.IdentifierKind, id int64) error {
	if id <= 0 {
		return NewError(KindValidation, "identifier must be positive")
	}
	if err := r.Identifiers().InsertExcluded(ctx, kind, id); err != nil {
		return storeError(err, "identifier not found")
	}
	return nil
}

// プールの参照・破棄（採番自体は IdentifierAllocator）
type IdentifierUsecase struct {
	tx repo.TransactionManager
}

func NewIdentifierUsecase(tx repo.TransactionManager) *IdentifierUsecase {
	return &IdentifierUsecase{tx: tx}
}

func ParseIdentifierKind(s string) (model.IdentifierKind, error) {
	switch k := model.IdentifierKind(strings.ToLower(strings.TrimSpace(s))); k {
	case model.IdentifierKindProduct:
		return k, nil
	}
	return "", NewError(KindValidation, "unknown identifier kind")
}

type ClearExcludedOutput struct {
	Kind    model.IdentifierKind `json:"kind"`
	Cleared int64                `json:"cleared"`
}

// プールを空にする。消したIDは二度と払い出されない（カウンタは戻さない）
func (u *IdentifierUsecase) ClearExcluded(ctx context.Context, kind model.IdentifierKind) (ClearExcludedOutput, error) {
	var out ClearExcludedOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Identifiers().ClearExcluded(ctx, kind)
		if err != nil {
			return storeError(err, "identifier not found")
		}
		out = ClearExcludedOutput{Kind: kind, Cleared: n}
		return nil
	})
	if err != nil {
		return ClearExcludedOutput{}, storeError(err, "identifier not found")
	}
	return out, nil
}

func (u *IdentifierUsecase) ListExcluded(ctx context.Context, kind model.IdentifierKind) ([]int64, error) {
	var ids []int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		ids, err = r.Identifiers().ListExcluded(ctx, kind)
		return storeError(err, "identifier not found")
	})
	if err != nil {
		return []int64{}, storeError(err, "identifier not found")
	}
	return ids, nil
}
