package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"erp-backend/internal/core"
)

// Store implements core.Store on PostgreSQL. Write transactions use the
// default READ COMMITTED level with explicit row locks; views run in a
// read-only REPEATABLE READ transaction so each report sees one snapshot.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(tx core.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

// mapError converts driver errors into core error kinds.
func mapError(err error, kind, key string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, key, core.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s already exists: %w", kind, key, core.ErrDuplicateKey)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s %s references a missing or in-use row", core.ErrConflict, kind, key)
		}
	}
	return fmt.Errorf("%s %s: %w", kind, key, err)
}

func expectOne(tag pgconn.CommandTag, kind, key string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, key, core.ErrNotFound)
	}
	return nil
}

func nullableDate(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ── Categories ───────────────────────────────────────────────────────────────

func (t *pgTx) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return mapError(err, "category", c.ID)
	}
	return nil
}

func (t *pgTx) UpdateCategory(ctx context.Context, c core.Category) error {
	tag, err := t.tx.Exec(ctx, `UPDATE categories SET name = $2, description = $3 WHERE id = $1`, c.ID, c.Name, c.Description)
	if err != nil {
		return mapError(err, "category", c.ID)
	}
	return expectOne(tag, "category", c.ID)
}

func (t *pgTx) DeleteCategory(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "category", id)
	}
	return expectOne(tag, "category", id)
}

func (t *pgTx) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	var c core.Category
	err := t.tx.QueryRow(ctx, `SELECT id, name, description, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "category", id)
	}
	return &c, nil
}

func (t *pgTx) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *pgTx) CountProductsInCategory(ctx context.Context, id string) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n)
	return n, err
}

// ── Products ─────────────────────────────────────────────────────────────────

const productColumns = `sku, name, category_id, description, unit_price, average_cost,
	last_purchase_price, quantity, reorder_point, status, created_at, updated_at`

func scanProduct(row pgx.Row) (*core.Product, error) {
	var p core.Product
	var last decimal.NullDecimal
	var status string
	err := row.Scan(&p.SKU, &p.Name, &p.CategoryID, &p.Description, &p.UnitPrice, &p.AverageCost,
		&last, &p.Quantity, &p.ReorderPoint, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		p.LastPurchasePrice = &last.Decimal
	}
	p.Status = core.InventoryStatus(status)
	return &p, nil
}

func lastPriceArg(p core.Product) any {
	if p.LastPurchasePrice == nil {
		return nil
	}
	return *p.LastPurchasePrice
}

func (t *pgTx) InsertProduct(ctx context.Context, p core.Product) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.SKU, p.Name, p.CategoryID, p.Description, p.UnitPrice, p.AverageCost,
		lastPriceArg(p), p.Quantity, p.ReorderPoint, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapError(err, "product", p.SKU)
	}
	return nil
}

func (t *pgTx) UpdateProduct(ctx context.Context, p core.Product) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products
		SET name = $2, category_id = $3, description = $4, unit_price = $5, average_cost = $6,
		    last_purchase_price = $7, quantity = $8, reorder_point = $9, status = $10, updated_at = $11
		WHERE sku = $1
	`, p.SKU, p.Name, p.CategoryID, p.Description, p.UnitPrice, p.AverageCost,
		lastPriceArg(p), p.Quantity, p.ReorderPoint, string(p.Status), p.UpdatedAt)
	if err != nil {
		return mapError(err, "product", p.SKU)
	}
	return expectOne(tag, "product", p.SKU)
}

func (t *pgTx) DeleteProduct(ctx context.Context, sku string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku)
	if err != nil {
		return mapError(err, "product", sku)
	}
	return expectOne(tag, "product", sku)
}

func (t *pgTx) GetProduct(ctx context.Context, sku string) (*core.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
	if err != nil {
		return nil, mapError(err, "product", sku)
	}
	return p, nil
}

// LockProducts locks rows in SKU order so concurrent transactions touching
// overlapping SKUs queue instead of deadlocking.
func (t *pgTx) LockProducts(ctx context.Context, skus []string) (map[string]*core.Product, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE sku = ANY($1)
		ORDER BY sku
		FOR UPDATE
	`, skus)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*core.Product, len(skus))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[p.SKU] = p
	}
	return out, rows.Err()
}

func (t *pgTx) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (t *pgTx) ProductReferenced(ctx context.Context, sku string) (bool, error) {
	var used bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sales_order_items WHERE sku = $1)
		    OR EXISTS (SELECT 1 FROM purchase_order_items WHERE sku = $1)
	`, sku).Scan(&used)
	return used, err
}

// ── Order filters ────────────────────────────────────────────────────────────

func filterClause(f core.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.FromDate != "" {
		args = append(args, f.FromDate)
		conds = append(conds, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if f.ToDate != "" {
		args = append(args, f.ToDate)
		conds = append(conds, fmt.Sprintf("order_date <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ── Sales orders ─────────────────────────────────────────────────────────────

const salesColumns = `id, order_number, customer_name, order_date::text, status, shipping_address,
	notes, total_amount, stock_reverted, created_at, updated_at`

func scanSalesOrder(row pgx.Row) (*core.SalesOrder, error) {
	var o core.SalesOrder
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Customer, &o.OrderDate, &status, &o.ShippingAddress,
		&o.Notes, &o.TotalAmount, &o.StockReverted, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = core.SalesOrderStatus(status)
	return &o, nil
}

func (t *pgTx) insertSalesItems(ctx context.Context, o core.SalesOrder) error {
	for _, it := range o.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO sales_order_items (order_id, line_number, sku, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, o.ID, it.LineNumber, it.SKU, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal)
		if err != nil {
			return mapError(err, "sales order item", fmt.Sprintf("%s/%d", o.OrderNumber, it.LineNumber))
		}
	}
	return nil
}

// loadSalesItems attaches items to every order in one query.
func (t *pgTx) loadSalesItems(ctx context.Context, orders []*core.SalesOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*core.SalesOrder, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}
	rows, err := t.tx.Query(ctx, `
		SELECT order_id, line_number, sku, product_name, quantity, unit_price, line_total
		FROM sales_order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_number
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query sales order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it core.SalesOrderItem
		if err := rows.Scan(&orderID, &it.LineNumber, &it.SKU, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return fmt.Errorf("failed to scan sales order item: %w", err)
		}
		byID[orderID].Items = append(byID[orderID].Items, it)
	}
	return rows.Err()
}

func (t *pgTx) InsertSalesOrder(ctx context.Context, o core.SalesOrder) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sales_orders (id, order_number, customer_name, order_date, status, shipping_address,
		                          notes, total_amount, stock_reverted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, o.OrderNumber, o.Customer, o.OrderDate, string(o.Status), o.ShippingAddress,
		o.Notes, o.TotalAmount, o.StockReverted, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return mapError(err, "sales order", o.OrderNumber)
	}
	return t.insertSalesItems(ctx, o)
}

func (t *pgTx) UpdateSalesOrder(ctx context.Context, o core.SalesOrder) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE sales_orders
		SET customer_name = $2, order_date = $3, status = $4, shipping_address = $5, notes = $6,
		    total_amount = $7, stock_reverted = $8, updated_at = $9
		WHERE id = $1
	`, o.ID, o.Customer, o.OrderDate, string(o.Status), o.ShippingAddress, o.Notes,
		o.TotalAmount, o.StockReverted, o.UpdatedAt)
	if err != nil {
		return mapError(err, "sales order", o.OrderNumber)
	}
	if err := expectOne(tag, "sales order", o.ID); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM sales_order_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("failed to replace items of sales order %s: %w", o.OrderNumber, err)
	}
	return t.insertSalesItems(ctx, o)
}

func (t *pgTx) DeleteSalesOrder(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM sales_orders WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "sales order", id)
	}
	return expectOne(tag, "sales order", id)
}

func (t *pgTx) getSalesOrder(ctx context.Context, where, key string) (*core.SalesOrder, error) {
	o, err := scanSalesOrder(t.tx.QueryRow(ctx, `SELECT `+salesColumns+` FROM sales_orders WHERE `+where, key))
	if err != nil {
		return nil, mapError(err, "sales order", key)
	}
	if err := t.loadSalesItems(ctx, []*core.SalesOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (t *pgTx) GetSalesOrder(ctx context.Context, id string) (*core.SalesOrder, error) {
	return t.getSalesOrder(ctx, "id = $1", id)
}

func (t *pgTx) GetSalesOrderByNumber(ctx context.Context, number string) (*core.SalesOrder, error) {
	return t.getSalesOrder(ctx, "order_number = $1", number)
}

func (t *pgTx) LockSalesOrder(ctx context.Context, id string) (*core.SalesOrder, error) {
	return t.getSalesOrder(ctx, "id = $1 FOR UPDATE", id)
}

func (t *pgTx) ListSalesOrders(ctx context.Context, f core.OrderFilter) ([]core.SalesOrder, error) {
	where, args := filterClause(f)
	rows, err := t.tx.Query(ctx, `SELECT `+salesColumns+` FROM sales_orders`+where+` ORDER BY order_date, length(order_number), order_number`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales orders: %w", err)
	}
	var ptrs []*core.SalesOrder
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sales order: %w", err)
		}
		ptrs = append(ptrs, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := t.loadSalesItems(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]core.SalesOrder, len(ptrs))
	for i, o := range ptrs {
		out[i] = *o
	}
	return out, nil
}

// ── Purchase orders ──────────────────────────────────────────────────────────

const purchaseColumns = `id, po_number, supplier_name, order_date::text, COALESCE(expected_delivery_date::text, ''),
	status, notes, total_amount, stock_received, received_at, created_at, updated_at`

func scanPurchaseOrder(row pgx.Row) (*core.PurchaseOrder, error) {
	var o core.PurchaseOrder
	var status string
	err := row.Scan(&o.ID, &o.PONumber, &o.Supplier, &o.OrderDate, &o.ExpectedDeliveryDate,
		&status, &o.Notes, &o.TotalAmount, &o.StockReceived, &o.ReceivedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = core.PurchaseOrderStatus(status)
	return &o, nil
}

func (t *pgTx) insertPurchaseItems(ctx context.Context, o core.PurchaseOrder) error {
	for _, it := range o.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO purchase_order_items (order_id, line_number, sku, quantity, unit_cost, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, o.ID, it.LineNumber, it.SKU, it.Quantity, it.UnitCost, it.LineTotal)
		if err != nil {
			return mapError(err, "purchase order item", fmt.Sprintf("%s/%d", o.PONumber, it.LineNumber))
		}
	}
	return nil
}

func (t *pgTx) loadPurchaseItems(ctx context.Context, orders []*core.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*core.PurchaseOrder, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}
	rows, err := t.tx.Query(ctx, `
		SELECT order_id, line_number, sku, quantity, unit_cost, line_total
		FROM purchase_order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_number
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query purchase order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it core.PurchaseOrderItem
		if err := rows.Scan(&orderID, &it.LineNumber, &it.SKU, &it.Quantity, &it.UnitCost, &it.LineTotal); err != nil {
			return fmt.Errorf("failed to scan purchase order item: %w", err)
		}
		byID[orderID].Items = append(byID[orderID].Items, it)
	}
	return rows.Err()
}

func (t *pgTx) InsertPurchaseOrder(ctx context.Context, o core.PurchaseOrder) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO purchase_orders (id, po_number, supplier_name, order_date, expected_delivery_date, status,
		                             notes, total_amount, stock_received, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, o.ID, o.PONumber, o.Supplier, o.OrderDate, nullableDate(o.ExpectedDeliveryDate), string(o.Status),
		o.Notes, o.TotalAmount, o.StockReceived, o.ReceivedAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return mapError(err, "purchase order", o.PONumber)
	}
	return t.insertPurchaseItems(ctx, o)
}

func (t *pgTx) UpdatePurchaseOrder(ctx context.Context, o core.PurchaseOrder) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE purchase_orders
		SET supplier_name = $2, order_date = $3, expected_delivery_date = $4, status = $5, notes = $6,
		    total_amount = $7, stock_received = $8, received_at = $9, updated_at = $10
		WHERE id = $1
	`, o.ID, o.Supplier, o.OrderDate, nullableDate(o.ExpectedDeliveryDate), string(o.Status), o.Notes,
		o.TotalAmount, o.StockReceived, o.ReceivedAt, o.UpdatedAt)
	if err != nil {
		return mapError(err, "purchase order", o.PONumber)
	}
	if err := expectOne(tag, "purchase order", o.ID); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM purchase_order_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("failed to replace items of purchase order %s: %w", o.PONumber, err)
	}
	return t.insertPurchaseItems(ctx, o)
}

func (t *pgTx) DeletePurchaseOrder(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "purchase order", id)
	}
	return expectOne(tag, "purchase order", id)
}

func (t *pgTx) getPurchaseOrder(ctx context.Context, where, key string) (*core.PurchaseOrder, error) {
	o, err := scanPurchaseOrder(t.tx.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders WHERE `+where, key))
	if err != nil {
		return nil, mapError(err, "purchase order", key)
	}
	if err := t.loadPurchaseItems(ctx, []*core.PurchaseOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (t *pgTx) GetPurchaseOrder(ctx context.Context, id string) (*core.PurchaseOrder, error) {
	return t.getPurchaseOrder(ctx, "id = $1", id)
}

func (t *pgTx) GetPurchaseOrderByNumber(ctx context.Context, number string) (*core.PurchaseOrder, error) {
	return t.getPurchaseOrder(ctx, "po_number = $1", number)
}

func (t *pgTx) LockPurchaseOrder(ctx context.Context, id string) (*core.PurchaseOrder, error) {
	return t.getPurchaseOrder(ctx, "id = $1 FOR UPDATE", id)
}

func (t *pgTx) ListPurchaseOrders(ctx context.Context, f core.OrderFilter) ([]core.PurchaseOrder, error) {
	where, args := filterClause(f)
	rows, err := t.tx.Query(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders`+where+` ORDER BY order_date, length(po_number), po_number`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	var ptrs []*core.PurchaseOrder
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		ptrs = append(ptrs, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := t.loadPurchaseItems(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]core.PurchaseOrder, len(ptrs))
	for i, o := range ptrs {
		out[i] = *o
	}
	return out, nil
}

// ── Accounting ───────────────────────────────────────────────────────────────

func (t *pgTx) InsertAccount(ctx context.Context, a core.Account) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO accounts (code, name, type, balance, created_at) VALUES ($1, $2, $3, $4, $5)
	`, a.Code, a.Name, string(a.Type), a.Balance, a.CreatedAt)
	if err != nil {
		return mapError(err, "account", a.Code)
	}
	return nil
}

func scanAccount(row pgx.Row) (*core.Account, error) {
	var a core.Account
	var typ string
	if err := row.Scan(&a.Code, &a.Name, &typ, &a.Balance, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Type = core.AccountType(typ)
	return &a, nil
}

func (t *pgTx) GetAccount(ctx context.Context, code string) (*core.Account, error) {
	a, err := scanAccount(t.tx.QueryRow(ctx, `SELECT code, name, type, balance, created_at FROM accounts WHERE code = $1`, code))
	if err != nil {
		return nil, mapError(err, "account", code)
	}
	return a, nil
}

func (t *pgTx) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := t.tx.Query(ctx, `SELECT code, name, type, balance, created_at FROM accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (t *pgTx) AddToAccountBalance(ctx context.Context, code string, delta decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2 WHERE code = $1`, code, delta)
	if err != nil {
		return mapError(err, "account", code)
	}
	return expectOne(tag, "account", code)
}

func (t *pgTx) InsertJournalEntry(ctx context.Context, e core.JournalEntry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO journal_entries (id, entry_date, description, total_debit, total_credit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Date, e.Description, e.TotalDebit, e.TotalCredit, e.CreatedAt)
	if err != nil {
		return mapError(err, "journal entry", e.ID)
	}
	for i, l := range e.Lines {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO journal_lines (entry_id, line_number, account_code, debit, credit, memo)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, i+1, l.AccountCode, l.Debit, l.Credit, l.Memo)
		if err != nil {
			return mapError(err, "journal line", fmt.Sprintf("%s/%d", e.ID, i+1))
		}
	}
	return nil
}

func (t *pgTx) loadEntries(ctx context.Context, where string, args ...any) ([]core.JournalEntry, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, entry_date::text, description, total_debit, total_credit, created_at
		FROM journal_entries`+where+`
		ORDER BY length(id), id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	var entries []core.JournalEntry
	index := map[string]int{}
	for rows.Next() {
		var e core.JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Description, &e.TotalDebit, &e.TotalCredit, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	lineRows, err := t.tx.Query(ctx, `
		SELECT entry_id, account_code, debit, credit, memo
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_number
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var entryID string
		var l core.JournalLine
		if err := lineRows.Scan(&entryID, &l.AccountCode, &l.Debit, &l.Credit, &l.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		e := &entries[index[entryID]]
		e.Lines = append(e.Lines, l)
	}
	return entries, lineRows.Err()
}

func (t *pgTx) GetJournalEntry(ctx context.Context, id string) (*core.JournalEntry, error) {
	entries, err := t.loadEntries(ctx, " WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("journal entry %s: %w", id, core.ErrNotFound)
	}
	return &entries[0], nil
}

func (t *pgTx) ListJournalEntries(ctx context.Context) ([]core.JournalEntry, error) {
	return t.loadEntries(ctx, "")
}

// NextSequence is concurrency-safe and gapless: the counter row stays locked
// until the calling transaction ends.
func (t *pgTx) NextSequence(ctx context.Context, series string) (int64, error) {
	var n int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO document_sequences (series, last_number)
		VALUES ($1, 1)
		ON CONFLICT (series)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, series).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to generate sequence number for %s: %w", series, err)
	}
	return n, nil
}

var (
	_ core.Store = (*Store)(nil)
	_ core.Tx    = (*pgTx)(nil)
)
