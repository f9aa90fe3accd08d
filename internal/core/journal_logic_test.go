package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestJournalEntryInput_NormalizeTreatsBlankAsZero(t *testing.T) {
	in := entry("2025-05-01", "  Blank credit  ",
		core.JournalLineInput{AccountCode: " 1010 ", Debit: "200.00", Credit: ""},
		core.JournalLineInput{AccountCode: "4010", Debit: "null", Credit: "200.00"},
	)
	in.Normalize()
	assert.Equal(t, "Blank credit", in.Description)
	assert.Equal(t, "1010", in.Lines[0].AccountCode)
	assert.Equal(t, "0", in.Lines[0].Credit)
	assert.Equal(t, "0", in.Lines[1].Debit)

	lines, err := in.Validate()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, dec("200").Equal(lines[0].Debit))
	assert.True(t, lines[0].Credit.IsZero())
}

func TestJournalEntryInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		in        core.JournalEntryInput
		expectErr bool
	}{
		{"balanced", entry("2025-05-01", "ok", debit("1010", "150.00"), credit("4010", "150")), false},
		{"split credit", entry("", "ok", debit("1010", "100"), credit("4010", "60"), credit("2010", "40")), false},
		{"trailing zeros", entry("", "ok", debit("1010", "10.500"), credit("4010", "10.5")), false},
		{"sub-cent debit", entry("", "bad", debit("1010", "10.001"), credit("4010", "10.00")), true},
		{"sub-cent on both sides", entry("", "bad", debit("1010", "10.004"), credit("4010", "10.001")), true},
		{"sub-cent only", entry("", "bad", debit("1010", "0.004"), credit("4010", "0.001")), true},
		{"unbalanced", entry("", "bad", debit("1010", "5"), credit("4010", "4")), true},
		{"single line", entry("", "bad", debit("1010", "5")), true},
		{"both sides on one line", entry("", "bad",
			core.JournalLineInput{AccountCode: "1010", Debit: "5", Credit: "5"}, credit("4010", "0")), true},
		{"zero line", entry("", "bad", debit("1010", "5"), credit("4010", "5"), debit("5050", "0")), true},
		{"negative amount", entry("", "bad", debit("1010", "-5"), credit("4010", "-5")), true},
		{"not a number", entry("", "bad", debit("1010", "five"), credit("4010", "5")), true},
		{"missing account", entry("", "bad", debit("", "5"), credit("4010", "5")), true},
		{"bad date", entry("01/05/2025", "bad", debit("1010", "5"), credit("4010", "5")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Normalize()
			_, err := in.Validate()
			if tt.expectErr {
				assert.ErrorIs(t, err, core.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
