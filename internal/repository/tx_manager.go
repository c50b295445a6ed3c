package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	Inventory() InventoryRepository
	Orders() OrderRepository
	OrderLineItems() OrderLineItemRepository
	Identifiers() IdentifierRepository

	// 入れ子の単位（SAVEPOINT）。fnがエラーならその中の書き込みだけ戻す
	Savepoint(ctx context.Context, fn func(r TxRepos) error) error
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
