package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Asset     AccountType = "Asset"
	Liability AccountType = "Liability"
	Equity    AccountType = "Equity"
	Revenue   AccountType = "Revenue"
	Expense   AccountType = "Expense"
)

// ParseAccountType accepts any casing of the five account types.
func ParseAccountType(s string) (AccountType, bool) {
	for _, t := range []AccountType{Asset, Liability, Equity, Revenue, Expense} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// DebitNormal reports whether debits increase accounts of this type.
func (t AccountType) DebitNormal() bool {
	return t == Asset || t == Expense
}

type Account struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// SignedAmount converts a debit/credit pair into a change of this account's balance.
func (a Account) SignedAmount(debit, credit decimal.Decimal) decimal.Decimal {
	if a.Type.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

type JournalEntry struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Description string          `json:"description"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Lines       []JournalLine   `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}

type JournalLine struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo,omitempty"`
}

// JournalLineInput is one line of a journal entry as submitted by a client.
// Amounts are decimal strings; exactly one of Debit or Credit must be positive.
type JournalLineInput struct {
	AccountCode string `json:"account_code" jsonschema_description:"Code of an existing account in the chart of accounts"`
	Debit       string `json:"debit,omitempty" jsonschema_description:"Debit amount as a decimal string, empty when the line is a credit"`
	Credit      string `json:"credit,omitempty" jsonschema_description:"Credit amount as a decimal string, empty when the line is a debit"`
	Memo        string `json:"memo,omitempty"`
}

// JournalEntryInput is a journal entry before validation and numbering.
type JournalEntryInput struct {
	Date        string             `json:"date" jsonschema_description:"Entry date in YYYY-MM-DD format, defaults to today"`
	Description string             `json:"description"`
	Lines       []JournalLineInput `json:"lines" jsonschema_description:"At least two lines whose debits equal their credits"`
}
