package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LedgerService interface {
	CreateAccount(ctx context.Context, code, name, accountType string) (*Account, error)
	GetAccount(ctx context.Context, code string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)

	// Commit validates and posts an entry, updating account balances.
	Commit(ctx context.Context, in JournalEntryInput) (*JournalEntry, error)
	// Validate runs every check Commit runs without writing anything.
	Validate(ctx context.Context, in JournalEntryInput) error
	GetEntry(ctx context.Context, id string) (*JournalEntry, error)
	GetEntries(ctx context.Context) ([]JournalEntry, error)
}

type Ledger struct {
	store Store
	log   *zap.Logger
}

func NewLedger(store Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: store, log: log}
}

func (l *Ledger) CreateAccount(ctx context.Context, code, name, accountType string) (*Account, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, validationError("account code is required")
	}
	if name == "" {
		return nil, validationError("account name is required")
	}
	t, ok := ParseAccountType(accountType)
	if !ok {
		return nil, validationError("account type must be one of Asset, Liability, Equity, Revenue, Expense; got %q", accountType)
	}

	a := Account{Code: code, Name: name, Type: t, Balance: decimal.Zero, CreatedAt: time.Now().UTC()}
	err := l.store.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertAccount(ctx, a); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (l *Ledger) GetAccount(ctx context.Context, code string) (*Account, error) {
	var a *Account
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		a, err = tx.GetAccount(ctx, code)
		return err
	})
	return a, err
}

func (l *Ledger) ListAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListAccounts(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return out, nil
}

func (l *Ledger) Commit(ctx context.Context, in JournalEntryInput) (*JournalEntry, error) {
	var entry *JournalEntry
	err := l.store.InTx(ctx, func(tx Tx) error {
		var err error
		entry, err = l.execute(ctx, tx, in, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("journal entry posted",
		zap.String("entry_id", entry.ID),
		zap.String("amount", entry.TotalDebit.StringFixed(2)),
	)
	return entry, nil
}

func (l *Ledger) Validate(ctx context.Context, in JournalEntryInput) error {
	return l.store.View(ctx, func(tx Tx) error {
		_, err := l.execute(ctx, tx, in, false)
		return err
	})
}

func (l *Ledger) execute(ctx context.Context, tx Tx, in JournalEntryInput, commit bool) (*JournalEntry, error) {
	// 1. Structural validation
	in.Normalize()
	lines, err := in.Validate()
	if err != nil {
		return nil, err
	}

	// 2. Every account must exist
	accounts := make(map[string]*Account, len(lines))
	for _, line := range lines {
		if _, seen := accounts[line.AccountCode]; seen {
			continue
		}
		a, err := tx.GetAccount(ctx, line.AccountCode)
		if err != nil {
			return nil, err
		}
		accounts[line.AccountCode] = a
	}
	if !commit {
		return nil, nil
	}

	date := in.Date
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	}
	entry := JournalEntry{
		Date:        date,
		Description: in.Description,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Lines:       lines,
		CreatedAt:   time.Now().UTC(),
	}
	for _, line := range lines {
		entry.TotalDebit = entry.TotalDebit.Add(line.Debit)
		entry.TotalCredit = entry.TotalCredit.Add(line.Credit)
	}

	// 3. Number and insert the entry
	entry.ID, err = nextDocumentNumber(ctx, tx, SeriesJournalEntry)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertJournalEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert journal entry: %w", err)
	}

	// 4. Move running balances
	for _, line := range lines {
		delta := accounts[line.AccountCode].SignedAmount(line.Debit, line.Credit)
		if err := tx.AddToAccountBalance(ctx, line.AccountCode, delta); err != nil {
			return nil, fmt.Errorf("failed to update balance of account %s: %w", line.AccountCode, err)
		}
	}
	return &entry, nil
}

func (l *Ledger) GetEntry(ctx context.Context, id string) (*JournalEntry, error) {
	var e *JournalEntry
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		e, err = tx.GetJournalEntry(ctx, id)
		return err
	})
	return e, err
}

func (l *Ledger) GetEntries(ctx context.Context) ([]JournalEntry, error) {
	var out []JournalEntry
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListJournalEntries(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return out, nil
}
