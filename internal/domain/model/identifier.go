package model

// 採番対象の種類
type IdentifierKind string

const (
	IdentifierKindProduct IdentifierKind = "product"
)

// 削除されたIDの再利用待ちプール
type ExcludedIdentifier struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind       IdentifierKind `gorm:"type:varchar(50);not null;uniqueIndex:ux_excluded_identifiers_kind_value,priority:1" json:"kind"`
	ExcludedID int64          `gorm:"not null;uniqueIndex:ux_excluded_identifiers_kind_value,priority:2" json:"excluded_id"`
}

// 種類ごとの払い出し済み最大値（減らない）
type IdentifierCounter struct {
	Kind      IdentifierKind `gorm:"type:varchar(50);primaryKey" json:"kind"`
	LastValue int64          `gorm:"not null;default:0" json:"last_value"`
}
