package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestLedger_CreateAccount(t *testing.T) {
	f := newFixture(t)

	a, err := f.ledger.CreateAccount(f.ctx, "1010", "Cash", "asset")
	require.NoError(t, err)
	assert.Equal(t, core.Asset, a.Type)
	assert.True(t, a.Balance.IsZero())

	_, err = f.ledger.CreateAccount(f.ctx, "1010", "Cash again", "Asset")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = f.ledger.CreateAccount(f.ctx, "9000", "Mystery", "Goodwill")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.ledger.CreateAccount(f.ctx, "", "No code", "Asset")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestLedger_CommitUpdatesBalances(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	e, err := f.ledger.Commit(f.ctx, entry("2025-05-01", "Owner capital", debit("1010", "10000"), credit("3010", "10000")))
	require.NoError(t, err)
	assert.Equal(t, "JE-0001", e.ID)
	assert.True(t, dec("10000").Equal(e.TotalDebit))

	_, err = f.ledger.Commit(f.ctx, entry("2025-05-31", "Rent", debit("5050", "500"), credit("1010", "500")))
	require.NoError(t, err)

	balances := map[string]string{"1010": "9500", "3010": "10000", "5050": "500"}
	for code, want := range balances {
		a, err := f.ledger.GetAccount(f.ctx, code)
		require.NoError(t, err)
		assert.True(t, dec(want).Equal(a.Balance), "%s: want %s, got %s", code, want, a.Balance)
	}

	entries, err := f.ledger.GetEntries(f.ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	got, err := f.ledger.GetEntry(f.ctx, "JE-0002")
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Description)
	require.Len(t, got.Lines, 2)
}

func TestLedger_RejectsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	_, err := f.ledger.Commit(f.ctx, entry("2025-05-01", "Unbalanced", debit("1010", "100"), credit("4010", "90")))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.ledger.Commit(f.ctx, entry("2025-05-01", "Unknown account", debit("1010", "100"), credit("4999", "100")))
	assert.ErrorIs(t, err, core.ErrNotFound)

	cash, err := f.ledger.GetAccount(f.ctx, "1010")
	require.NoError(t, err)
	assert.True(t, cash.Balance.IsZero())

	entries, err := f.ledger.GetEntries(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	e, err := f.ledger.Commit(f.ctx, entry("2025-05-01", "Valid", debit("1010", "100"), credit("4010", "100")))
	require.NoError(t, err)
	assert.Equal(t, "JE-0001", e.ID, "rejected entries do not consume numbers")
}

func TestLedger_ValidateDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	in := entry("2025-05-01", "Dry run", debit("1010", "100"), credit("4010", "100"))
	require.NoError(t, f.ledger.Validate(f.ctx, in))

	assert.ErrorIs(t, f.ledger.Validate(f.ctx, entry("", "x", debit("1010", "1"), credit("4999", "1"))), core.ErrNotFound)

	entries, err := f.ledger.GetEntries(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_RejectsSubCentAmounts(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	_, err := f.ledger.Commit(f.ctx, entry("2025-05-01", "Fractional", debit("1010", "10.004"), credit("4010", "10.001")))
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = f.ledger.Commit(f.ctx, entry("2025-05-01", "Fractional", debit("1010", "0.004"), credit("4010", "0.001")))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.ledger.Commit(f.ctx, entry("2025-05-01", "Whole cents", debit("1010", "10.01"), credit("4010", "10.010")))
	require.NoError(t, err)

	tb, err := f.reports.GetTrialBalance(f.ctx, "")
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)
	assert.True(t, dec("10.01").Equal(tb.TotalDebit), "total debit %s", tb.TotalDebit)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
}
