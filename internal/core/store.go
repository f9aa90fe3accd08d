package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the persistence boundary. Services never hold their own state;
// everything goes through a Tx obtained from InTx (read-write, atomic) or
// View (read-only snapshot).
//
// Implementations return errors wrapping ErrNotFound and ErrDuplicateKey for
// missing rows and key collisions.
type Store interface {
	// InTx runs fn in a transaction. If fn returns an error every write made
	// through tx is discarded.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn against a consistent read-only view.
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the row-level operations of one transaction.
type Tx interface {
	// Categories
	InsertCategory(ctx context.Context, c Category) error
	UpdateCategory(ctx context.Context, c Category) error
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CountProductsInCategory(ctx context.Context, id string) (int, error)

	// Products
	InsertProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, sku string) error
	GetProduct(ctx context.Context, sku string) (*Product, error)
	// LockProducts returns the existing products among skus, locked for the
	// rest of the transaction. Locks are taken in ascending SKU order.
	LockProducts(ctx context.Context, skus []string) (map[string]*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	// ProductReferenced reports whether any sales or purchase order line uses sku.
	ProductReferenced(ctx context.Context, sku string) (bool, error)

	// Sales orders
	InsertSalesOrder(ctx context.Context, o SalesOrder) error
	// UpdateSalesOrder rewrites the header and replaces all items.
	UpdateSalesOrder(ctx context.Context, o SalesOrder) error
	DeleteSalesOrder(ctx context.Context, id string) error
	GetSalesOrder(ctx context.Context, id string) (*SalesOrder, error)
	GetSalesOrderByNumber(ctx context.Context, number string) (*SalesOrder, error)
	// LockSalesOrder reads the order and holds its row lock until the transaction ends.
	LockSalesOrder(ctx context.Context, id string) (*SalesOrder, error)
	ListSalesOrders(ctx context.Context, f OrderFilter) ([]SalesOrder, error)

	// Purchase orders
	InsertPurchaseOrder(ctx context.Context, o PurchaseOrder) error
	UpdatePurchaseOrder(ctx context.Context, o PurchaseOrder) error
	DeletePurchaseOrder(ctx context.Context, id string) error
	GetPurchaseOrder(ctx context.Context, id string) (*PurchaseOrder, error)
	GetPurchaseOrderByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	LockPurchaseOrder(ctx context.Context, id string) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, f OrderFilter) ([]PurchaseOrder, error)

	// Accounting
	InsertAccount(ctx context.Context, a Account) error
	GetAccount(ctx context.Context, code string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	AddToAccountBalance(ctx context.Context, code string, delta decimal.Decimal) error
	InsertJournalEntry(ctx context.Context, e JournalEntry) error
	GetJournalEntry(ctx context.Context, id string) (*JournalEntry, error)
	ListJournalEntries(ctx context.Context) ([]JournalEntry, error)

	// NextSequence returns the next gapless number of the named series, starting at 1.
	NextSequence(ctx context.Context, series string) (int64, error)
}

// KeyLocker serializes work on named keys across goroutines (and, for
// distributed implementations, across processes). Lock acquires every key,
// in ascending order, and returns a function releasing them.
type KeyLocker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
