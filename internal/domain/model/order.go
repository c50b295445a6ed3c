package model

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// 入力名 → ステータス（大文字小文字・アクセントは無視）
var orderStatusNames = map[string]OrderStatus{
	"pending":   OrderStatusPending,
	"pendente":  OrderStatusPending,
	"completed": OrderStatusCompleted,
	"concluido": OrderStatusCompleted,
	"cancelled": OrderStatusCancelled,
	"canceled":  OrderStatusCancelled,
	"cancelado": OrderStatusCancelled,
}

// ParseOrderStatus は画面や API から来たステータス名を解釈する。
// 未知の名前はデフォルトに倒さずエラーにする。
func ParseOrderStatus(name string) (OrderStatus, error) {
	key := foldStatusName(name)
	if s, ok := orderStatusNames[key]; ok {
		return s, nil
	}
	// 保存値（PENDING など）もそのまま受け付ける
	switch s := OrderStatus(strings.ToUpper(key)); s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return s, nil
	}
	return "", ErrInvalidOrderStatus
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Pending 以外は終端
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func foldStatusName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToLower(folded)
}

type Order struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// 明細の在庫をすでに戻したか（二重戻し防止）
	StockReturned bool `gorm:"not null;default:false" json:"stock_returned"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
