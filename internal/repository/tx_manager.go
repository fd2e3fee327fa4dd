package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Customers() CustomerRepository
	Inventory() InventoryRepository
	Products() ProductRepository
	Notifications() NotificationRepository

	// SAVEPOINTを張ってfnを実行する。
	// fnが失敗してもそこまで戻すだけで、外側のTxは続行できる。
	Savepoint(ctx context.Context, fn func(r TxRepos) error) error
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
