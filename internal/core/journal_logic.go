package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalize cleans up client input before validation.
func (in *JournalEntryInput) Normalize() {
	in.Date = strings.TrimSpace(in.Date)
	in.Description = strings.TrimSpace(in.Description)

	for i := range in.Lines {
		line := &in.Lines[i]
		line.AccountCode = strings.TrimSpace(line.AccountCode)
		line.Memo = strings.TrimSpace(line.Memo)

		// Treat empty or "null" amounts as zero
		if s := strings.TrimSpace(line.Debit); s == "" || strings.EqualFold(s, "null") {
			line.Debit = "0"
		}
		if s := strings.TrimSpace(line.Credit); s == "" || strings.EqualFold(s, "null") {
			line.Credit = "0"
		}
	}
}

// Validate enforces double-entry rules and returns the parsed lines.
// Each line carries exactly one positive side in whole cents, and total
// debits must equal total credits exactly.
func (in *JournalEntryInput) Validate() ([]JournalLine, error) {
	if in.Date != "" {
		if _, err := time.Parse(dateLayout, in.Date); err != nil {
			return nil, validationError("invalid entry date %q, expected YYYY-MM-DD", in.Date)
		}
	}

	if len(in.Lines) < 2 {
		return nil, validationError("journal entry must have at least 2 lines")
	}

	lines := make([]JournalLine, 0, len(in.Lines))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, l := range in.Lines {
		if l.AccountCode == "" {
			return nil, validationError("line %d: account_code is required", i+1)
		}
		debit, err := decimal.NewFromString(strings.TrimSpace(l.Debit))
		if err != nil {
			return nil, validationError("line %d: invalid debit %q", i+1, l.Debit)
		}
		credit, err := decimal.NewFromString(strings.TrimSpace(l.Credit))
		if err != nil {
			return nil, validationError("line %d: invalid credit %q", i+1, l.Credit)
		}
		if debit.IsNegative() || credit.IsNegative() {
			return nil, validationError("line %d: amounts cannot be negative", i+1)
		}
		if debit.IsPositive() == credit.IsPositive() {
			return nil, validationError("line %d: exactly one of debit or credit must be positive", i+1)
		}
		if exceedsPlaces(debit, 2) || exceedsPlaces(credit, 2) {
			return nil, validationError("line %d: amounts cannot have more than 2 decimal places", i+1)
		}

		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
		lines = append(lines, JournalLine{AccountCode: l.AccountCode, Debit: debit, Credit: credit, Memo: l.Memo})
	}

	if !totalDebit.Equal(totalCredit) {
		return nil, validationError("debits %s do not equal credits %s", totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return lines, nil
}
