package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"erp-backend/internal/core"
)

func TestDocumentNumberLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"SO-0001", "SO-0002", true},
		{"SO-0002", "SO-0001", false},
		{"JE-9999", "JE-10000", true},
		{"JE-10000", "JE-9999", false},
		{"PO-10001", "PO-10000", false},
		{"PO-0007", "PO-0007", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+" < "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, core.DocumentNumberLess(tt.a, tt.b))
		})
	}
}
