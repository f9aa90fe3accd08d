package core

import (
	"context"
	"fmt"
)

// Number series. Each series owns a gapless counter in the store, so numbers
// are only consumed by transactions that commit.
const (
	SeriesSalesOrder    = "SO"
	SeriesPurchaseOrder = "PO"
	SeriesJournalEntry  = "JE"
)

// nextDocumentNumber draws the next number of series inside tx and formats it
// as "<series>-0001".
func nextDocumentNumber(ctx context.Context, tx Tx, series string) (string, error) {
	n, err := tx.NextSequence(ctx, series)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s number: %w", series, err)
	}
	return fmt.Sprintf("%s-%04d", series, n), nil
}

// DocumentNumberLess orders numbers of one series by sequence. The counter is
// zero-padded to four digits and widens past 9999, so a shorter number is
// always earlier.
func DocumentNumberLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
