package repository

import (
	"context"

	"bakery/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdentifierGormRepository struct {
	db *gorm.DB
}

func NewIdentifierGormRepository(db *gorm.DB) *IdentifierGormRepository {
	return &IdentifierGormRepository{db: db}
}

// 最小のIDをロック（同時採番で同じIDを返さない）
func (r *IdentifierGormRepository) LockSmallestExcluded(ctx context.Context, kind model.IdentifierKind) (int64, bool, error) {
	var rows []model.ExcludedIdentifier
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ?", kind).
		Order("excluded_id asc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return 0, false, mapError(err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].ExcludedID, true, nil
}

func (r *IdentifierGormRepository) DeleteExcluded(ctx context.Context, kind model.IdentifierKind, id int64) error {
	err := r.db.WithContext(ctx).
		Where("kind = ? AND excluded_id = ?", kind, id).
		Delete(&model.ExcludedIdentifier{}).Error
	return mapError(err)
}

// (kind, excluded_id) のユニーク制約で二重登録しない
func (r *IdentifierGormRepository) InsertExcluded(ctx context.Context, kind model.IdentifierKind, id int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "excluded_id"}},
			DoNothing: true,
		}).
		Create(&model.ExcludedIdentifier{Kind: kind, ExcludedID: id}).Error
	return mapError(err)
}

func (r *IdentifierGormRepository) ClearExcluded(ctx context.Context, kind model.IdentifierKind) (int64, error) {
	res := r.db.WithContext(ctx).Where("kind = ?", kind).Delete(&model.ExcludedIdentifier{})
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *IdentifierGormRepository) ListExcluded(ctx context.Context, kind model.IdentifierKind) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ExcludedIdentifier{}).
		Where("kind = ?", kind).
		Order("excluded_id asc").
		Pluck("excluded_id", &ids).Error
	if err != nil {
		return []int64{}, mapError(err)
	}
	return ids, nil
}

// カウンタ行を（無ければ作って）ロックし、1進める
func (r *IdentifierGormRepository) NextValue(ctx context.Context, kind model.IdentifierKind) (int64, error) {
	db := r.db.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.IdentifierCounter{Kind: kind}).Error; err != nil {
		return 0, mapError(err)
	}

	var c model.IdentifierCounter
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ?", kind).
		Take(&c).Error; err != nil {
		return 0, mapError(err)
	}

	next := c.LastValue + 1
	res := db.Model(&model.IdentifierCounter{}).
		Where("kind = ?", kind).
		Update("last_value", next)
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return next, nil
}
