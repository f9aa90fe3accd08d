package app

// Money fields travel as decimal strings and are parsed after struct validation.

// CreateCategoryRequest is the input for creating a category. An empty ID is
// derived from the name.
type CreateCategoryRequest struct {
	ID          string `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty"`
}

// UpdateCategoryRequest changes the supplied fields only.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// CreateProductRequest is the input for adding a product to the catalog.
type CreateProductRequest struct {
	SKU          string `json:"sku" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=200"`
	CategoryID   string `json:"category_id" validate:"required"`
	Description  string `json:"description,omitempty"`
	UnitPrice    string `json:"unit_price" validate:"required,numeric"`
	CostPrice    string `json:"cost_price,omitempty" validate:"omitempty,numeric"`
	Quantity     int    `json:"quantity" validate:"min=0"`
	ReorderPoint int    `json:"reorder_point" validate:"min=0"`
}

// UpdateProductRequest changes the supplied fields only. The SKU cannot change.
type UpdateProductRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	CategoryID   *string `json:"category_id,omitempty" validate:"omitempty,min=1"`
	Description  *string `json:"description,omitempty"`
	UnitPrice    *string `json:"unit_price,omitempty" validate:"omitempty,numeric"`
	Quantity     *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
	ReorderPoint *int    `json:"reorder_point,omitempty" validate:"omitempty,min=0"`
}

// StockAdjustmentRequest changes a product's quantity outside order flows.
type StockAdjustmentRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

// SalesItemRequest is one line of a sales order. An empty unit price means
// the catalog price at order time.
type SalesItemRequest struct {
	SKU       string `json:"sku" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	UnitPrice string `json:"unit_price,omitempty" validate:"omitempty,numeric"`
}

// CreateSalesOrderRequest is the input for creating a sales order.
type CreateSalesOrderRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required,max=200"`
	OrderDate       string             `json:"order_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Items           []SalesItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateSalesItemsRequest replaces every line of a pending sales order.
type UpdateSalesItemsRequest struct {
	Items []SalesItemRequest `json:"items" validate:"required,min=1,dive"`
}

// StatusRequest moves an order to a new status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PurchaseItemRequest is one line of a purchase order.
type PurchaseItemRequest struct {
	SKU       string `json:"sku" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	CostPrice string `json:"cost_price" validate:"required,numeric"`
}

// CreatePurchaseOrderRequest is the input for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierName         string                `json:"supplier_name" validate:"required,max=200"`
	OrderDate            string                `json:"order_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExpectedDeliveryDate string                `json:"expected_delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status               string                `json:"status,omitempty" validate:"omitempty,oneof=Pending Ordered"`
	Notes                string                `json:"notes,omitempty"`
	Items                []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateAccountRequest adds an account to the chart of accounts.
type CreateAccountRequest struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"required,max=200"`
	Type string `json:"type" validate:"required"`
}

// OrderQuery filters order listings.
type OrderQuery struct {
	Status   string `validate:"omitempty"`
	FromDate string `validate:"omitempty,datetime=2006-01-02"`
	ToDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// PeriodQuery bounds a report. Empty dates are open.
type PeriodQuery struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}
