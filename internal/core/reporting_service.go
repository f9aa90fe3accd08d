package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// Period is an inclusive date range. Empty bounds are open.
type Period struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Sales report groupings.
const (
	GroupByNone     = ""
	GroupByProduct  = "product"
	GroupByCustomer = "customer"
	GroupByCategory = "category"
	GroupByDay      = "day"
	GroupByMonth    = "month"
)

// topProductsLimit caps SalesReport.TopProducts.
const topProductsLimit = 5

type SalesGroup struct {
	Key         string          `json:"key"`
	Orders      int             `json:"orders"`
	Units       int             `json:"units"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ProductSales struct {
	SKU     string          `json:"sku"`
	Name    string          `json:"product_name"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesReport totals non-cancelled sales orders in a period.
type SalesReport struct {
	Period           Period          `json:"period"`
	GroupBy          string          `json:"group_by,omitempty"`
	TotalSalesAmount decimal.Decimal `json:"total_sales_amount"`
	TotalOrders      int             `json:"total_orders"`
	TotalUnits       int             `json:"total_units"`
	Groups           []SalesGroup    `json:"groups,omitempty"`
	TopProducts      []ProductSales  `json:"top_products"`
}

type InventoryItem struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"product_name"`
	CategoryID   string          `json:"category_id"`
	Quantity     int             `json:"quantity"`
	ReorderPoint int             `json:"reorder_point"`
	Status       InventoryStatus `json:"status"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	StockValue   decimal.Decimal `json:"stock_value"`
}

// InventoryReport values current stock at average cost.
// LowStockItems uses LowStockThreshold when set, otherwise product status.
type InventoryReport struct {
	AsOf                time.Time       `json:"as_of"`
	LowStockThreshold   *int            `json:"low_stock_threshold,omitempty"`
	TotalProducts       int             `json:"total_products"`
	TotalItemsInStock   int             `json:"total_items_in_stock"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	Items               []InventoryItem `json:"items"`
	LowStockItems       []InventoryItem `json:"low_stock_items"`
}

type SupplierTotal struct {
	Supplier    string          `json:"supplier_name"`
	Orders      int             `json:"orders"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PurchaseReport totals non-cancelled purchase orders in a period.
type PurchaseReport struct {
	Period              Period          `json:"period"`
	TotalPurchaseAmount decimal.Decimal `json:"total_purchase_amount"`
	TotalPurchaseOrders int             `json:"total_purchase_orders"`
	BySupplier          []SupplierTotal `json:"by_supplier,omitempty"`
}

// StatementLine represents a single journal line in an account statement.
// RunningBalance follows the account's normal-balance sign.
type StatementLine struct {
	Date           string          `json:"date"`
	EntryID        string          `json:"entry_id"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type TrialBalanceLine struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Type   AccountType     `json:"type"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

type TrialBalance struct {
	AsOfDate    string             `json:"as_of_date,omitempty"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	IsBalanced  bool               `json:"is_balanced"`
}

// AccountLine is a single account entry in an income statement or balance
// sheet, expressed in that account's normal-balance sign.
type AccountLine struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type IncomeStatement struct {
	Period        Period          `json:"period"`
	Revenue       []AccountLine   `json:"revenue"`
	Expenses      []AccountLine   `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
}

// BalanceSheet as of a date. Unclosed revenue and expense are carried as
// RetainedEarnings inside TotalEquity, so a correctly posted ledger always
// satisfies TotalAssets == TotalLiabilities + TotalEquity.
type BalanceSheet struct {
	AsOfDate         string          `json:"as_of_date,omitempty"`
	Assets           []AccountLine   `json:"assets"`
	Liabilities      []AccountLine   `json:"liabilities"`
	Equity           []AccountLine   `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	IsBalanced       bool            `json:"is_balanced"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only projections. Each report is computed
// from a single consistent view of the store.
type ReportingService interface {
	SalesReport(ctx context.Context, period Period, groupBy string) (*SalesReport, error)
	// InventoryReport lists stock; lowStockThreshold may be nil.
	InventoryReport(ctx context.Context, lowStockThreshold *int) (*InventoryReport, error)
	PurchaseReport(ctx context.Context, period Period, groupBySupplier bool) (*PurchaseReport, error)

	GetAccountStatement(ctx context.Context, accountCode string, period Period) ([]StatementLine, error)
	GetTrialBalance(ctx context.Context, asOfDate string) (*TrialBalance, error)
	GetIncomeStatement(ctx context.Context, period Period) (*IncomeStatement, error)
	GetBalanceSheet(ctx context.Context, asOfDate string) (*BalanceSheet, error)
}

type reportingService struct {
	store Store
}

func NewReportingService(store Store) ReportingService {
	return &reportingService{store: store}
}

func (p Period) validate() error {
	for _, d := range []string{p.StartDate, p.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return validationError("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	if p.StartDate != "" && p.EndDate != "" && p.StartDate > p.EndDate {
		return validationError("start_date %s is after end_date %s", p.StartDate, p.EndDate)
	}
	return nil
}

func (p Period) contains(date string) bool {
	return (p.StartDate == "" || date >= p.StartDate) && (p.EndDate == "" || date <= p.EndDate)
}

// ── Operational reports ──────────────────────────────────────────────────────

func (s *reportingService) SalesReport(ctx context.Context, period Period, groupBy string) (*SalesReport, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	groupBy = strings.ToLower(strings.TrimSpace(groupBy))
	switch groupBy {
	case GroupByNone, GroupByProduct, GroupByCustomer, GroupByCategory, GroupByDay, GroupByMonth:
	default:
		return nil, validationError("group_by must be one of product, customer, category, day, month; got %q", groupBy)
	}

	var orders []SalesOrder
	categoryOf := map[string]string{}
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		orders, err = tx.ListSalesOrders(ctx, OrderFilter{FromDate: period.StartDate, ToDate: period.EndDate})
		if err != nil {
			return err
		}
		if groupBy != GroupByCategory {
			return nil
		}
		products, err := tx.ListProducts(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			categoryOf[p.SKU] = p.CategoryID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	report := &SalesReport{Period: period, GroupBy: groupBy, TotalSalesAmount: decimal.Zero}
	groups := map[string]*SalesGroup{}
	products := map[string]*ProductSales{}

	group := func(key string) *SalesGroup {
		g, ok := groups[key]
		if !ok {
			g = &SalesGroup{Key: key, TotalAmount: decimal.Zero}
			groups[key] = g
		}
		return g
	}

	for _, o := range orders {
		if o.Status == SalesCancelled {
			continue
		}
		report.TotalOrders++
		report.TotalSalesAmount = report.TotalSalesAmount.Add(o.TotalAmount)

		// Line-level groupings count an order once per group it touches.
		touched := map[string]bool{}
		for _, it := range o.Items {
			report.TotalUnits += it.Quantity
			ps, ok := products[it.SKU]
			if !ok {
				ps = &ProductSales{SKU: it.SKU, Name: it.ProductName, Revenue: decimal.Zero}
				products[it.SKU] = ps
			}
			ps.Units += it.Quantity
			ps.Revenue = ps.Revenue.Add(it.LineTotal)

			var key string
			switch groupBy {
			case GroupByProduct:
				key = it.SKU
			case GroupByCategory:
				key = categoryOf[it.SKU]
				if key == "" {
					key = "uncategorized"
				}
			default:
				continue
			}
			g := group(key)
			g.Units += it.Quantity
			g.TotalAmount = g.TotalAmount.Add(it.LineTotal)
			if !touched[key] {
				touched[key] = true
				g.Orders++
			}
		}

		var key string
		switch groupBy {
		case GroupByCustomer:
			key = o.Customer
		case GroupByDay:
			key = o.OrderDate
		case GroupByMonth:
			key = o.OrderDate[:7]
		default:
			continue
		}
		g := group(key)
		g.Orders++
		g.TotalAmount = g.TotalAmount.Add(o.TotalAmount)
		for _, it := range o.Items {
			g.Units += it.Quantity
		}
	}

	for _, g := range groups {
		report.Groups = append(report.Groups, *g)
	}
	sort.Slice(report.Groups, func(i, j int) bool { return report.Groups[i].Key < report.Groups[j].Key })

	for _, ps := range products {
		report.TopProducts = append(report.TopProducts, *ps)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.SKU < b.SKU
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}
	return report, nil
}

func (s *reportingService) InventoryReport(ctx context.Context, lowStockThreshold *int) (*InventoryReport, error) {
	if lowStockThreshold != nil && *lowStockThreshold < 0 {
		return nil, validationError("low_stock_threshold cannot be negative")
	}
	var products []Product
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		products, err = tx.ListProducts(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	report := &InventoryReport{
		AsOf:                time.Now().UTC(),
		LowStockThreshold:   lowStockThreshold,
		TotalProducts:       len(products),
		TotalInventoryValue: decimal.Zero,
		Items:               make([]InventoryItem, 0, len(products)),
		LowStockItems:       []InventoryItem{},
	}
	for _, p := range products {
		item := InventoryItem{
			SKU:          p.SKU,
			Name:         p.Name,
			CategoryID:   p.CategoryID,
			Quantity:     p.Quantity,
			ReorderPoint: p.ReorderPoint,
			Status:       p.Status,
			AverageCost:  p.AverageCost,
			StockValue:   p.StockValue().Round(2),
		}
		report.Items = append(report.Items, item)
		report.TotalItemsInStock += p.Quantity
		report.TotalInventoryValue = report.TotalInventoryValue.Add(item.StockValue)

		low := p.Status != StatusInStock
		if lowStockThreshold != nil {
			low = p.Quantity <= *lowStockThreshold
		}
		if low {
			report.LowStockItems = append(report.LowStockItems, item)
		}
	}
	return report, nil
}

func (s *reportingService) PurchaseReport(ctx context.Context, period Period, groupBySupplier bool) (*PurchaseReport, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	var orders []PurchaseOrder
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		orders, err = tx.ListPurchaseOrders(ctx, OrderFilter{FromDate: period.StartDate, ToDate: period.EndDate})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase orders: %w", err)
	}

	report := &PurchaseReport{Period: period, TotalPurchaseAmount: decimal.Zero}
	suppliers := map[string]*SupplierTotal{}
	for _, po := range orders {
		if po.Status == PurchaseCancelled {
			continue
		}
		report.TotalPurchaseOrders++
		report.TotalPurchaseAmount = report.TotalPurchaseAmount.Add(po.TotalAmount)
		if !groupBySupplier {
			continue
		}
		st, ok := suppliers[po.Supplier]
		if !ok {
			st = &SupplierTotal{Supplier: po.Supplier, TotalAmount: decimal.Zero}
			suppliers[po.Supplier] = st
		}
		st.Orders++
		st.TotalAmount = st.TotalAmount.Add(po.TotalAmount)
	}
	for _, st := range suppliers {
		report.BySupplier = append(report.BySupplier, *st)
	}
	sort.Slice(report.BySupplier, func(i, j int) bool { return report.BySupplier[i].Supplier < report.BySupplier[j].Supplier })
	return report, nil
}

// ── Accounting reports ───────────────────────────────────────────────────────

// loadLedger reads accounts and entries from one view.
func (s *reportingService) loadLedger(ctx context.Context) ([]Account, []JournalEntry, error) {
	var accounts []Account
	var entries []JournalEntry
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		if accounts, err = tx.ListAccounts(ctx); err != nil {
			return err
		}
		entries, err = tx.ListJournalEntries(ctx)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return accounts, entries, nil
}

// netByAccount sums debit − credit per account over entries inside period.
func netByAccount(entries []JournalEntry, period Period) map[string]decimal.Decimal {
	net := map[string]decimal.Decimal{}
	for _, e := range entries {
		if !period.contains(e.Date) {
			continue
		}
		for _, l := range e.Lines {
			net[l.AccountCode] = net[l.AccountCode].Add(l.Debit).Sub(l.Credit)
		}
	}
	return net
}

// normalBalance converts a net-debit amount into the account's own sign.
func normalBalance(t AccountType, netDebit decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return netDebit
	}
	return netDebit.Neg()
}

// GetAccountStatement returns the account's journal lines in date order with
// a running balance.
func (s *reportingService) GetAccountStatement(ctx context.Context, accountCode string, period Period) ([]StatementLine, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	var account *Account
	var entries []JournalEntry
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		if account, err = tx.GetAccount(ctx, accountCode); err != nil {
			return err
		}
		entries, err = tx.ListJournalEntries(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return DocumentNumberLess(entries[i].ID, entries[j].ID)
	})

	running := decimal.Zero
	var out []StatementLine
	for _, e := range entries {
		if !period.contains(e.Date) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountCode != accountCode {
				continue
			}
			running = running.Add(account.SignedAmount(l.Debit, l.Credit))
			out = append(out, StatementLine{
				Date:           e.Date,
				EntryID:        e.ID,
				Description:    e.Description,
				Debit:          l.Debit,
				Credit:         l.Credit,
				RunningBalance: running,
			})
		}
	}
	return out, nil
}

func (s *reportingService) GetTrialBalance(ctx context.Context, asOfDate string) (*TrialBalance, error) {
	period := Period{EndDate: asOfDate}
	if err := period.validate(); err != nil {
		return nil, err
	}
	accounts, entries, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	net := netByAccount(entries, period)

	tb := &TrialBalance{AsOfDate: asOfDate, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero, Lines: []TrialBalanceLine{}}
	for _, a := range accounts {
		n := net[a.Code]
		line := TrialBalanceLine{Code: a.Code, Name: a.Name, Type: a.Type, Debit: decimal.Zero, Credit: decimal.Zero}
		if n.IsPositive() {
			line.Debit = n
		} else {
			line.Credit = n.Neg()
		}
		tb.TotalDebit = tb.TotalDebit.Add(line.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(line.Credit)
		tb.Lines = append(tb.Lines, line)
	}
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb, nil
}

func (s *reportingService) GetIncomeStatement(ctx context.Context, period Period) (*IncomeStatement, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	accounts, entries, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	net := netByAccount(entries, period)

	is := &IncomeStatement{
		Period:        period,
		Revenue:       []AccountLine{},
		Expenses:      []AccountLine{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, a := range accounts {
		bal := normalBalance(a.Type, net[a.Code])
		switch a.Type {
		case Revenue:
			is.Revenue = append(is.Revenue, AccountLine{Code: a.Code, Name: a.Name, Balance: bal})
			is.TotalRevenue = is.TotalRevenue.Add(bal)
		case Expense:
			is.Expenses = append(is.Expenses, AccountLine{Code: a.Code, Name: a.Name, Balance: bal})
			is.TotalExpenses = is.TotalExpenses.Add(bal)
		}
	}
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)
	return is, nil
}

func (s *reportingService) GetBalanceSheet(ctx context.Context, asOfDate string) (*BalanceSheet, error) {
	period := Period{EndDate: asOfDate}
	if err := period.validate(); err != nil {
		return nil, err
	}
	accounts, entries, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	net := netByAccount(entries, period)

	bs := &BalanceSheet{
		AsOfDate:         asOfDate,
		Assets:           []AccountLine{},
		Liabilities:      []AccountLine{},
		Equity:           []AccountLine{},
		RetainedEarnings: decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, a := range accounts {
		bal := normalBalance(a.Type, net[a.Code])
		line := AccountLine{Code: a.Code, Name: a.Name, Balance: bal}
		switch a.Type {
		case Asset:
			bs.Assets = append(bs.Assets, line)
			bs.TotalAssets = bs.TotalAssets.Add(bal)
		case Liability:
			bs.Liabilities = append(bs.Liabilities, line)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(bal)
		case Equity:
			bs.Equity = append(bs.Equity, line)
			bs.TotalEquity = bs.TotalEquity.Add(bal)
		case Revenue:
			bs.RetainedEarnings = bs.RetainedEarnings.Add(bal)
		case Expense:
			bs.RetainedEarnings = bs.RetainedEarnings.Sub(bal)
		}
	}
	bs.TotalEquity = bs.TotalEquity.Add(bs.RetainedEarnings)
	bs.IsBalanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity))
	return bs, nil
}
