package core

import "strings"

// lifecycle is an ordered list of forward states followed by the terminal
// cancellation state. Forward moves may skip steps; anything non-terminal may
// be cancelled.
type lifecycle struct {
	forward   []string
	cancelled string
}

var (
	salesLifecycle = lifecycle{
		forward:   []string{string(SalesPending), string(SalesProcessing), string(SalesShipped), string(SalesDelivered)},
		cancelled: string(SalesCancelled),
	}
	purchaseLifecycle = lifecycle{
		forward:   []string{string(PurchasePending), string(PurchaseOrdered), string(PurchaseShipped), string(PurchaseReceived)},
		cancelled: string(PurchaseCancelled),
	}
)

// parse matches a status string case-insensitively against the known statuses.
func (l lifecycle) parse(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, st := range l.forward {
		if strings.EqualFold(st, s) {
			return st, true
		}
	}
	if strings.EqualFold(l.cancelled, s) {
		return l.cancelled, true
	}
	return "", false
}

func (l lifecycle) rank(s string) int {
	for i, st := range l.forward {
		if st == s {
			return i
		}
	}
	return -1
}

func (l lifecycle) terminal(s string) bool {
	return s == l.cancelled || s == l.forward[len(l.forward)-1]
}

// check validates from → to. Same-status requests are allowed and are no-ops.
func (l lifecycle) check(from, to string) error {
	if from == to {
		return nil
	}
	if l.terminal(from) {
		return &TransitionError{From: from, To: to}
	}
	if to == l.cancelled {
		return nil
	}
	if l.rank(to) <= l.rank(from) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// ParseSalesStatus returns the canonical sales status for s.
func ParseSalesStatus(s string) (SalesOrderStatus, error) {
	st, ok := salesLifecycle.parse(s)
	if !ok {
		return "", validationError("invalid sales order status %q", s)
	}
	return SalesOrderStatus(st), nil
}

// ParsePurchaseStatus returns the canonical purchase status for s.
func ParsePurchaseStatus(s string) (PurchaseOrderStatus, error) {
	st, ok := purchaseLifecycle.parse(s)
	if !ok {
		return "", validationError("invalid purchase order status %q", s)
	}
	return PurchaseOrderStatus(st), nil
}

// CanTransitionSales reports whether a sales order may move from → to.
func CanTransitionSales(from, to SalesOrderStatus) error {
	return salesLifecycle.check(string(from), string(to))
}

// CanTransitionPurchase reports whether a purchase order may move from → to.
func CanTransitionPurchase(from, to PurchaseOrderStatus) error {
	return purchaseLifecycle.check(string(from), string(to))
}
