package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"erp-backend/internal/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest runs struct tag validation and reports failures as
// core.ErrValidation listing every offending field.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), reflect.TypeOf(req).Elem().Name()+".")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", core.ErrValidation, strings.Join(parts, "; "))
}

// parseMoney parses a decimal string; empty means zero.
func parseMoney(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a decimal number, got %q", core.ErrValidation, field, s)
	}
	return d, nil
}

type appService struct {
	catalog   core.CatalogService
	orders    core.OrderService
	purchases core.PurchaseOrderService
	reports   core.ReportingService
	ledger    core.LedgerService
	log       *zap.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	catalog core.CatalogService,
	orders core.OrderService,
	purchases core.PurchaseOrderService,
	reports core.ReportingService,
	ledger core.LedgerService,
	log *zap.Logger,
) ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{
		catalog:   catalog,
		orders:    orders,
		purchases: purchases,
		reports:   reports,
		ledger:    ledger,
		log:       log,
	}
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*core.Category, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return s.catalog.CreateCategory(ctx, req.ID, req.Name, req.Description)
}

func (s *appService) ListCategories(ctx context.Context) (*CategoryListResult, error) {
	cats, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoryListResult{Categories: cats}, nil
}

func (s *appService) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	return s.catalog.GetCategory(ctx, id)
}

func (s *appService) UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (*core.Category, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return s.catalog.UpdateCategory(ctx, id, core.CategoryPatch{Name: req.Name, Description: req.Description})
}

func (s *appService) DeleteCategory(ctx context.Context, id string) error {
	return s.catalog.DeleteCategory(ctx, id)
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	price, err := parseMoney("unit_price", req.UnitPrice)
	if err != nil {
		return nil, err
	}
	cost, err := parseMoney("cost_price", req.CostPrice)
	if err != nil {
		return nil, err
	}
	return s.catalog.CreateProduct(ctx, core.ProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		UnitPrice:    price,
		AverageCost:  cost,
		Quantity:     req.Quantity,
		ReorderPoint: req.ReorderPoint,
	})
}

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, sku string) (*core.Product, error) {
	return s.catalog.GetProduct(ctx, sku)
}

func (s *appService) UpdateProduct(ctx context.Context, sku string, req UpdateProductRequest) (*core.Product, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	patch := core.ProductPatch{
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		Quantity:     req.Quantity,
		ReorderPoint: req.ReorderPoint,
	}
	if req.UnitPrice != nil {
		price, err := parseMoney("unit_price", *req.UnitPrice)
		if err != nil {
			return nil, err
		}
		patch.UnitPrice = &price
	}
	return s.catalog.UpdateProduct(ctx, sku, patch)
}

func (s *appService) DeleteProduct(ctx context.Context, sku string) error {
	return s.catalog.DeleteProduct(ctx, sku)
}

func (s *appService) AdjustStock(ctx context.Context, sku string, req StockAdjustmentRequest) (*core.StockAdjustment, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return s.catalog.AdjustStock(ctx, sku, req.Delta, req.Reason)
}

// ── Sales orders ─────────────────────────────────────────────────────────────

func salesItems(reqs []SalesItemRequest) ([]core.SalesItemInput, error) {
	items := make([]core.SalesItemInput, len(reqs))
	for i, r := range reqs {
		items[i] = core.SalesItemInput{SKU: r.SKU, Quantity: r.Quantity}
		if strings.TrimSpace(r.UnitPrice) != "" {
			price, err := parseMoney(fmt.Sprintf("items[%d].unit_price", i), r.UnitPrice)
			if err != nil {
				return nil, err
			}
			items[i].UnitPrice = &price
		}
	}
	return items, nil
}

func (s *appService) CreateSalesOrder(ctx context.Context, req CreateSalesOrderRequest) (*core.SalesOrder, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	items, err := salesItems(req.Items)
	if err != nil {
		return nil, err
	}
	return s.orders.CreateOrder(ctx, core.SalesOrderInput{
		Customer:        req.CustomerName,
		OrderDate:       req.OrderDate,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		Items:           items,
	})
}

func (s *appService) ListSalesOrders(ctx context.Context, q OrderQuery) (*SalesOrderListResult, error) {
	if err := validateRequest(&q); err != nil {
		return nil, err
	}
	filter := core.OrderFilter{FromDate: q.FromDate, ToDate: q.ToDate}
	if q.Status != "" {
		st, err := core.ParseSalesStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(st)
	}
	orders, err := s.orders.GetOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &SalesOrderListResult{Orders: orders, Count: len(orders)}, nil
}

func (s *appService) GetSalesOrder(ctx context.Context, ref string) (*core.SalesOrder, error) {
	return s.orders.GetOrder(ctx, ref)
}

func (s *appService) UpdateSalesOrderItems(ctx context.Context, ref string, req UpdateSalesItemsRequest) (*core.SalesOrder, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	items, err := salesItems(req.Items)
	if err != nil {
		return nil, err
	}
	return s.orders.UpdateOrderItems(ctx, ref, items)
}

func (s *appService) UpdateSalesOrderStatus(ctx context.Context, ref string, req StatusRequest) (*core.SalesOrder, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return s.orders.UpdateOrderStatus(ctx, ref, req.Status)
}

func (s *appService) DeleteSalesOrder(ctx context.Context, ref string) (*core.SalesOrder, error) {
	return s.orders.DeleteOrder(ctx, ref)
}

// ── Purchase orders ──────────────────────────────────────────────────────────

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*core.PurchaseOrder, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	items := make([]core.PurchaseItemInput, len(req.Items))
	for i, r := range req.Items {
		cost, err := parseMoney(fmt.Sprintf("items[%d].cost_price", i), r.CostPrice)
		if err != nil {
			return nil, err
		}
		items[i] = core.PurchaseItemInput{SKU: r.SKU, Quantity: r.Quantity, UnitCost: cost}
	}
	return s.purchases.CreatePO(ctx, core.PurchaseOrderInput{
		Supplier:             req.SupplierName,
		OrderDate:            req.OrderDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               core.PurchaseOrderStatus(req.Status),
		Notes:                req.Notes,
		Items:                items,
	})
}

func (s *appService) ListPurchaseOrders(ctx context.Context, q OrderQuery) (*PurchaseOrderListResult, error) {
	if err := validateRequest(&q); err != nil {
		return nil, err
	}
	filter := core.OrderFilter{FromDate: q.FromDate, ToDate: q.ToDate}
	if q.Status != "" {
		st, err := core.ParsePurchaseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(st)
	}
	orders, err := s.purchases.GetPOs(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{Orders: orders, Count: len(orders)}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, ref string) (*core.PurchaseOrder, error) {
	return s.purchases.GetPO(ctx, ref)
}

func (s *appService) UpdatePurchaseOrderStatus(ctx context.Context, ref string, req StatusRequest) (*core.PurchaseOrder, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return s.purchases.UpdatePOStatus(ctx, ref, req.Status)
}

func (s *appService) DeletePurchaseOrder(ctx context.Context, ref string) (*core.PurchaseDeleteResult, error) {
	return s.purchases.DeletePO(ctx, ref)
}

// ── Reports ──────────────────────────────────────────────────────────────────

func toPeriod(q PeriodQuery) (core.Period, error) {
	if err := validateRequest(&q); err != nil {
		return core.Period{}, err
	}
	return core.Period{StartDate: q.StartDate, EndDate: q.EndDate}, nil
}

func (s *appService) SalesReport(ctx context.Context, period PeriodQuery, groupBy string) (*core.SalesReport, error) {
	p, err := toPeriod(period)
	if err != nil {
		return nil, err
	}
	return s.reports.SalesReport(ctx, p, strings.ToLower(strings.TrimSpace(groupBy)))
}

func (s *appService) InventoryReport(ctx context.Context, lowStockThreshold *int) (*core.InventoryReport, error) {
	if lowStockThreshold != nil && *lowStockThreshold < 0 {
		return nil, fmt.Errorf("%w: low_stock_threshold cannot be negative", core.ErrValidation)
	}
	return s.reports.InventoryReport(ctx, lowStockThreshold)
}

func (s *appService) PurchaseReport(ctx context.Context, period PeriodQuery, groupBySupplier bool) (*core.PurchaseReport, error) {
	p, err := toPeriod(period)
	if err != nil {
		return nil, err
	}
	return s.reports.PurchaseReport(ctx, p, groupBySupplier)
}

// ── Accounting ───────────────────────────────────────────────────────────────

func (s *appService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*core.Account, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return s.ledger.CreateAccount(ctx, req.Code, req.Name, req.Type)
}

func (s *appService) ListAccounts(ctx context.Context) (*AccountListResult, error) {
	accounts, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return &AccountListResult{Accounts: accounts}, nil
}

func (s *appService) GetAccountStatement(ctx context.Context, code string, period PeriodQuery) (*AccountStatementResult, error) {
	p, err := toPeriod(period)
	if err != nil {
		return nil, err
	}
	account, err := s.ledger.GetAccount(ctx, code)
	if err != nil {
		return nil, err
	}
	lines, err := s.reports.GetAccountStatement(ctx, code, p)
	if err != nil {
		return nil, err
	}
	return &AccountStatementResult{Account: *account, Period: p, Lines: lines}, nil
}

func (s *appService) CommitJournalEntry(ctx context.Context, in core.JournalEntryInput) (*core.JournalEntry, error) {
	return s.ledger.Commit(ctx, in)
}

func (s *appService) ValidateJournalEntry(ctx context.Context, in core.JournalEntryInput) error {
	return s.ledger.Validate(ctx, in)
}

func (s *appService) ListJournalEntries(ctx context.Context) (*JournalEntryListResult, error) {
	entries, err := s.ledger.GetEntries(ctx)
	if err != nil {
		return nil, err
	}
	return &JournalEntryListResult{Entries: entries}, nil
}

func (s *appService) GetJournalEntry(ctx context.Context, id string) (*core.JournalEntry, error) {
	return s.ledger.GetEntry(ctx, id)
}

func (s *appService) GetTrialBalance(ctx context.Context, asOfDate string) (*core.TrialBalance, error) {
	return s.reports.GetTrialBalance(ctx, asOfDate)
}

func (s *appService) GetIncomeStatement(ctx context.Context, period PeriodQuery) (*core.IncomeStatement, error) {
	p, err := toPeriod(period)
	if err != nil {
		return nil, err
	}
	return s.reports.GetIncomeStatement(ctx, p)
}

// GetBalanceSheet defaults to today when asOfDate is empty.
func (s *appService) GetBalanceSheet(ctx context.Context, asOfDate string) (*core.BalanceSheet, error) {
	if asOfDate == "" {
		asOfDate = time.Now().UTC().Format("2006-01-02")
	}
	return s.reports.GetBalanceSheet(ctx, asOfDate)
}
