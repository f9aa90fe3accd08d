// Package memstore is an in-memory core.Store. Writers are serialized by a
// single mutex and work on a copy of the state that replaces the live state
// only when the transaction function succeeds.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"erp-backend/internal/core"
)

var errReadOnly = errors.New("memstore: write attempted in a read-only view")

type state struct {
	categories        map[string]core.Category
	products          map[string]core.Product
	sales             map[string]core.SalesOrder
	salesByNumber     map[string]string
	purchases         map[string]core.PurchaseOrder
	purchasesByNumber map[string]string
	accounts          map[string]core.Account
	entries           map[string]core.JournalEntry
	sequences         map[string]int64
}

func newState() *state {
	return &state{
		categories:        map[string]core.Category{},
		products:          map[string]core.Product{},
		sales:             map[string]core.SalesOrder{},
		salesByNumber:     map[string]string{},
		purchases:         map[string]core.PurchaseOrder{},
		purchasesByNumber: map[string]string{},
		accounts:          map[string]core.Account{},
		entries:           map[string]core.JournalEntry{},
		sequences:         map[string]int64{},
	}
}

func copyMap[K comparable, V any](m map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func same[V any](v V) V { return v }

func (s *state) clone() *state {
	return &state{
		categories:        copyMap(s.categories, same[core.Category]),
		products:          copyMap(s.products, copyProduct),
		sales:             copyMap(s.sales, copySalesOrder),
		salesByNumber:     copyMap(s.salesByNumber, same[string]),
		purchases:         copyMap(s.purchases, copyPurchaseOrder),
		purchasesByNumber: copyMap(s.purchasesByNumber, same[string]),
		accounts:          copyMap(s.accounts, same[core.Account]),
		entries:           copyMap(s.entries, copyEntry),
		sequences:         copyMap(s.sequences, same[int64]),
	}
}

func copyProduct(p core.Product) core.Product {
	if p.LastPurchasePrice != nil {
		v := *p.LastPurchasePrice
		p.LastPurchasePrice = &v
	}
	return p
}

func copySalesOrder(o core.SalesOrder) core.SalesOrder {
	o.Items = append([]core.SalesOrderItem(nil), o.Items...)
	return o
}

func copyPurchaseOrder(o core.PurchaseOrder) core.PurchaseOrder {
	o.Items = append([]core.PurchaseOrderItem(nil), o.Items...)
	if o.ReceivedAt != nil {
		t := *o.ReceivedAt
		o.ReceivedAt = &t
	}
	return o
}

func copyEntry(e core.JournalEntry) core.JournalEntry {
	e.Lines = append([]core.JournalLine(nil), e.Lines...)
	return e
}

// Store implements core.Store in memory.
type Store struct {
	mu   sync.RWMutex
	data *state
}

func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&tx{st: work, writable: true}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) View(ctx context.Context, fn func(tx core.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{st: s.data})
}

type tx struct {
	st       *state
	writable bool
}

func (t *tx) check() error {
	if !t.writable {
		return errReadOnly
	}
	return nil
}

func notFound(kind, key string) error {
	return fmt.Errorf("%s %s: %w", kind, key, core.ErrNotFound)
}

func duplicate(kind, key string) error {
	return fmt.Errorf("%s %s already exists: %w", kind, key, core.ErrDuplicateKey)
}

// ── Categories ───────────────────────────────────────────────────────────────

func (t *tx) InsertCategory(_ context.Context, c core.Category) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.categories[c.ID]; ok {
		return duplicate("category", c.ID)
	}
	t.st.categories[c.ID] = c
	return nil
}

func (t *tx) UpdateCategory(_ context.Context, c core.Category) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.categories[c.ID]; !ok {
		return notFound("category", c.ID)
	}
	t.st.categories[c.ID] = c
	return nil
}

func (t *tx) DeleteCategory(_ context.Context, id string) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.categories[id]; !ok {
		return notFound("category", id)
	}
	delete(t.st.categories, id)
	return nil
}

func (t *tx) GetCategory(_ context.Context, id string) (*core.Category, error) {
	c, ok := t.st.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func (t *tx) ListCategories(_ context.Context) ([]core.Category, error) {
	out := make([]core.Category, 0, len(t.st.categories))
	for _, c := range t.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) CountProductsInCategory(_ context.Context, id string) (int, error) {
	n := 0
	for _, p := range t.st.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (t *tx) InsertProduct(_ context.Context, p core.Product) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.products[p.SKU]; ok {
		return duplicate("product", p.SKU)
	}
	t.st.products[p.SKU] = copyProduct(p)
	return nil
}

func (t *tx) UpdateProduct(_ context.Context, p core.Product) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.products[p.SKU]; !ok {
		return notFound("product", p.SKU)
	}
	t.st.products[p.SKU] = copyProduct(p)
	return nil
}

func (t *tx) DeleteProduct(_ context.Context, sku string) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.products[sku]; !ok {
		return notFound("product", sku)
	}
	delete(t.st.products, sku)
	return nil
}

func (t *tx) GetProduct(_ context.Context, sku string) (*core.Product, error) {
	p, ok := t.st.products[sku]
	if !ok {
		return nil, notFound("product", sku)
	}
	p = copyProduct(p)
	return &p, nil
}

// LockProducts needs no row locks: the writer mutex already serializes transactions.
func (t *tx) LockProducts(_ context.Context, skus []string) (map[string]*core.Product, error) {
	out := make(map[string]*core.Product, len(skus))
	for _, sku := range skus {
		if p, ok := t.st.products[sku]; ok {
			p = copyProduct(p)
			out[sku] = &p
		}
	}
	return out, nil
}

func (t *tx) ListProducts(_ context.Context) ([]core.Product, error) {
	out := make([]core.Product, 0, len(t.st.products))
	for _, p := range t.st.products {
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (t *tx) ProductReferenced(_ context.Context, sku string) (bool, error) {
	for _, o := range t.st.sales {
		for _, it := range o.Items {
			if it.SKU == sku {
				return true, nil
			}
		}
	}
	for _, o := range t.st.purchases {
		for _, it := range o.Items {
			if it.SKU == sku {
				return true, nil
			}
		}
	}
	return false, nil
}

// ── Sales orders ─────────────────────────────────────────────────────────────

func (t *tx) InsertSalesOrder(_ context.Context, o core.SalesOrder) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.sales[o.ID]; ok {
		return duplicate("sales order", o.ID)
	}
	if _, ok := t.st.salesByNumber[o.OrderNumber]; ok {
		return duplicate("sales order", o.OrderNumber)
	}
	t.st.sales[o.ID] = copySalesOrder(o)
	t.st.salesByNumber[o.OrderNumber] = o.ID
	return nil
}

func (t *tx) UpdateSalesOrder(_ context.Context, o core.SalesOrder) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.sales[o.ID]; !ok {
		return notFound("sales order", o.ID)
	}
	t.st.sales[o.ID] = copySalesOrder(o)
	return nil
}

func (t *tx) DeleteSalesOrder(_ context.Context, id string) error {
	if err := t.check(); err != nil {
		return err
	}
	o, ok := t.st.sales[id]
	if !ok {
		return notFound("sales order", id)
	}
	delete(t.st.sales, id)
	delete(t.st.salesByNumber, o.OrderNumber)
	return nil
}

func (t *tx) GetSalesOrder(_ context.Context, id string) (*core.SalesOrder, error) {
	o, ok := t.st.sales[id]
	if !ok {
		return nil, notFound("sales order", id)
	}
	o = copySalesOrder(o)
	return &o, nil
}

func (t *tx) GetSalesOrderByNumber(ctx context.Context, number string) (*core.SalesOrder, error) {
	id, ok := t.st.salesByNumber[number]
	if !ok {
		return nil, notFound("sales order", number)
	}
	return t.GetSalesOrder(ctx, id)
}

func (t *tx) LockSalesOrder(ctx context.Context, id string) (*core.SalesOrder, error) {
	return t.GetSalesOrder(ctx, id)
}

func (t *tx) ListSalesOrders(_ context.Context, f core.OrderFilter) ([]core.SalesOrder, error) {
	var out []core.SalesOrder
	for _, o := range t.st.sales {
		if f.Matches(string(o.Status), o.OrderDate) {
			out = append(out, copySalesOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate != out[j].OrderDate {
			return out[i].OrderDate < out[j].OrderDate
		}
		return core.DocumentNumberLess(out[i].OrderNumber, out[j].OrderNumber)
	})
	return out, nil
}

// ── Purchase orders ──────────────────────────────────────────────────────────

func (t *tx) InsertPurchaseOrder(_ context.Context, o core.PurchaseOrder) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.purchases[o.ID]; ok {
		return duplicate("purchase order", o.ID)
	}
	if _, ok := t.st.purchasesByNumber[o.PONumber]; ok {
		return duplicate("purchase order", o.PONumber)
	}
	t.st.purchases[o.ID] = copyPurchaseOrder(o)
	t.st.purchasesByNumber[o.PONumber] = o.ID
	return nil
}

func (t *tx) UpdatePurchaseOrder(_ context.Context, o core.PurchaseOrder) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.purchases[o.ID]; !ok {
		return notFound("purchase order", o.ID)
	}
	t.st.purchases[o.ID] = copyPurchaseOrder(o)
	return nil
}

func (t *tx) DeletePurchaseOrder(_ context.Context, id string) error {
	if err := t.check(); err != nil {
		return err
	}
	o, ok := t.st.purchases[id]
	if !ok {
		return notFound("purchase order", id)
	}
	delete(t.st.purchases, id)
	delete(t.st.purchasesByNumber, o.PONumber)
	return nil
}

func (t *tx) GetPurchaseOrder(_ context.Context, id string) (*core.PurchaseOrder, error) {
	o, ok := t.st.purchases[id]
	if !ok {
		return nil, notFound("purchase order", id)
	}
	o = copyPurchaseOrder(o)
	return &o, nil
}

func (t *tx) GetPurchaseOrderByNumber(ctx context.Context, number string) (*core.PurchaseOrder, error) {
	id, ok := t.st.purchasesByNumber[number]
	if !ok {
		return nil, notFound("purchase order", number)
	}
	return t.GetPurchaseOrder(ctx, id)
}

func (t *tx) LockPurchaseOrder(ctx context.Context, id string) (*core.PurchaseOrder, error) {
	return t.GetPurchaseOrder(ctx, id)
}

func (t *tx) ListPurchaseOrders(_ context.Context, f core.OrderFilter) ([]core.PurchaseOrder, error) {
	var out []core.PurchaseOrder
	for _, o := range t.st.purchases {
		if f.Matches(string(o.Status), o.OrderDate) {
			out = append(out, copyPurchaseOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate != out[j].OrderDate {
			return out[i].OrderDate < out[j].OrderDate
		}
		return core.DocumentNumberLess(out[i].PONumber, out[j].PONumber)
	})
	return out, nil
}

// ── Accounting ───────────────────────────────────────────────────────────────

func (t *tx) InsertAccount(_ context.Context, a core.Account) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.accounts[a.Code]; ok {
		return duplicate("account", a.Code)
	}
	t.st.accounts[a.Code] = a
	return nil
}

func (t *tx) GetAccount(_ context.Context, code string) (*core.Account, error) {
	a, ok := t.st.accounts[code]
	if !ok {
		return nil, notFound("account", code)
	}
	return &a, nil
}

func (t *tx) ListAccounts(_ context.Context) ([]core.Account, error) {
	out := make([]core.Account, 0, len(t.st.accounts))
	for _, a := range t.st.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (t *tx) AddToAccountBalance(_ context.Context, code string, delta decimal.Decimal) error {
	if err := t.check(); err != nil {
		return err
	}
	a, ok := t.st.accounts[code]
	if !ok {
		return notFound("account", code)
	}
	a.Balance = a.Balance.Add(delta)
	t.st.accounts[code] = a
	return nil
}

func (t *tx) InsertJournalEntry(_ context.Context, e core.JournalEntry) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.st.entries[e.ID]; ok {
		return duplicate("journal entry", e.ID)
	}
	t.st.entries[e.ID] = copyEntry(e)
	return nil
}

func (t *tx) GetJournalEntry(_ context.Context, id string) (*core.JournalEntry, error) {
	e, ok := t.st.entries[id]
	if !ok {
		return nil, notFound("journal entry", id)
	}
	e = copyEntry(e)
	return &e, nil
}

func (t *tx) ListJournalEntries(_ context.Context) ([]core.JournalEntry, error) {
	out := make([]core.JournalEntry, 0, len(t.st.entries))
	for _, e := range t.st.entries {
		out = append(out, copyEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return core.DocumentNumberLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (t *tx) NextSequence(_ context.Context, series string) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	t.st.sequences[series]++
	return t.st.sequences[series], nil
}

var _ core.Store = (*Store)(nil)
